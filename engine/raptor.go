package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"git.fiblab.net/sim/scenario/network"
	"git.fiblab.net/sim/scenario/query"
	"github.com/samber/lo"
)

// Raptor 按轮次扩展的公交路径搜索，实现query.Engine
// 对搜索窗口内每个可能的出发时刻分别搜索，再按请求的准则做支配过滤
type Raptor struct {
	maxRounds int
}

func New() *Raptor {
	return &Raptor{maxRounds: MAX_ROUNDS}
}

func (r *Raptor) Route(ctx context.Context, view network.TransitView, req *query.Request) ([]*query.Itinerary, error) {
	if len(req.Access) == 0 || len(req.Egress) == 0 {
		return nil, query.ErrNoConnection
	}
	departures := candidateDepartures(view, req)
	seen := make(map[string]struct{})
	all := make([]*query.Itinerary, 0)
	for _, departure := range departures {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := newSearch(view, req, r.maxRounds)
		for _, it := range s.run(departure) {
			key := itineraryKey(it)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, it)
		}
	}
	var result []*query.Itinerary
	if req.Profile.Kind == query.PROFILE_PARETO {
		result = keepNonDominated(all, paretoDominates(req.Profile.Relax))
	} else {
		result = keepNonDominated(all, fastestDominates)
	}
	log.Debugf("%d departures searched, %d itineraries, %d non-dominated",
		len(departures), len(all), len(result))
	if len(result) == 0 {
		return nil, query.ErrNoConnection
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].EndTime < result[j].EndTime
	})
	return result, nil
}

// 搜索窗口内能恰好赶上某班车的出发时刻
func candidateDepartures(view network.TransitView, req *query.Request) []int {
	earliest, latest := req.Profile.EarliestDeparture, req.Profile.LatestDeparture()
	set := make(map[int]struct{})
	for _, a := range req.Access {
		for _, ri := range view.RoutesByStop(a.Stop) {
			route := view.Route(ri)
			board := view.RouteSlack(ri).Board
			for p, stop := range route.Pattern.StopIndexes {
				if stop != a.Stop || p == route.Pattern.NumberOfStops()-1 {
					continue
				}
				for _, trip := range route.Timetable {
					if d := trip.Departure(p) - board - a.DurationSeconds; d >= earliest && d <= latest {
						set[d] = struct{}{}
					}
				}
			}
		}
	}
	departures := lo.Keys(set)
	sort.Ints(departures)
	return departures
}

type search struct {
	view      network.TransitView
	req       *query.Request
	maxRounds int

	rounds []roundLabels
	// 截至当前轮的最早到达时间及其所在轮次、是否为步行标号
	best      []int
	bestRound []int
	bestWalk  []bool
}

func newSearch(view network.TransitView, req *query.Request, maxRounds int) *search {
	n := view.StopCount()
	s := &search{
		view:      view,
		req:       req,
		maxRounds: maxRounds,
		best:      make([]int, n),
		bestRound: make([]int, n),
		bestWalk:  make([]bool, n),
	}
	for i := range s.best {
		s.best[i] = UNREACHED
	}
	return s
}

func (s *search) improve(stop, time, round int, walk bool) {
	s.best[stop] = time
	s.bestRound[stop] = round
	s.bestWalk[stop] = walk
}

// 以departure离开起点，返回各轮中到达时间严格改进的行程
func (s *search) run(departure int) []*query.Itinerary {
	n := s.view.StopCount()
	s.rounds = []roundLabels{newRoundLabels(n)}
	marked := make([]int, 0, len(s.req.Access))
	for _, a := range s.req.Access {
		t := departure + a.DurationSeconds
		if t < s.rounds[0].walk[a.Stop].time {
			s.rounds[0].walk[a.Stop] = label{kind: LABEL_ACCESS, time: t, accessDuration: a.DurationSeconds}
			s.improve(a.Stop, t, 0, true)
			marked = append(marked, a.Stop)
		}
	}

	result := make([]*query.Itinerary, 0)
	destBest := UNREACHED
	lastRound := s.maxRounds
	for k := 1; k <= lastRound && len(marked) > 0; k++ {
		prevBest := append([]int(nil), s.best...)
		prevRound := append([]int(nil), s.bestRound...)
		prevWalk := append([]bool(nil), s.bestWalk...)
		cur := newRoundLabels(n)
		s.rounds = append(s.rounds, cur)

		// 乘车
		reached := make([]int, 0)
		isReached := make(map[int]bool)
		for _, ri := range s.view.RouteIndexIterator(marked) {
			route := s.view.Route(ri)
			slack := s.view.RouteSlack(ri)
			trip, boardPos, fromRound, fromWalk := -1, -1, 0, false
			for p, stop := range route.Pattern.StopIndexes {
				if trip >= 0 {
					t := route.Trip(trip).Arrival(p) + slack.Alight
					if t < s.best[stop] && t < destBest {
						cur.transit[stop] = label{
							kind: LABEL_TRANSIT, time: t,
							route: ri, trip: trip, boardPos: boardPos, alightPos: p,
							fromRound: fromRound, fromWalk: fromWalk,
						}
						s.improve(stop, t, k, false)
						if !isReached[stop] {
							isReached[stop] = true
							reached = append(reached, stop)
						}
					}
				}
				if prevBest[stop] == UNREACHED || p == route.Pattern.NumberOfStops()-1 {
					continue
				}
				boardTime := prevBest[stop] + slack.Board
				if prevRound[stop] > 0 {
					boardTime += slack.Transfer
				}
				if c := route.FindTrip(p, boardTime); c >= 0 &&
					(trip < 0 || route.Trip(c).Departure(p) < route.Trip(trip).Departure(p)) {
					trip, boardPos = c, p
					fromRound, fromWalk = prevRound[stop], prevWalk[stop]
				}
			}
		}

		// 步行换乘，只从本轮乘车到达的站点出发
		next := append([]int(nil), reached...)
		for _, stop := range reached {
			from := cur.transit[stop]
			for _, tr := range s.view.TransfersFrom(stop) {
				t := from.time + tr.DurationSeconds
				if t < s.best[tr.ToStop] && t < destBest {
					cur.walk[tr.ToStop] = label{kind: LABEL_TRANSFER, time: t, fromStop: stop, walk: tr.DurationSeconds}
					s.improve(tr.ToStop, t, k, true)
					if !isReached[tr.ToStop] {
						isReached[tr.ToStop] = true
						next = append(next, tr.ToStop)
					}
				}
			}
		}

		// 终点
		found, egress, egressWalk := false, query.AccessEgress{}, false
		for _, e := range s.req.Egress {
			for _, walk := range []bool{false, true} {
				l := cur.transit[e.Stop]
				if walk {
					l = cur.walk[e.Stop]
				}
				if l.kind == LABEL_NONE {
					continue
				}
				if t := l.time + e.DurationSeconds; t < destBest {
					destBest, found, egress, egressWalk = t, true, e, walk
				}
			}
		}
		if found {
			result = append(result, s.itinerary(k, egress, egressWalk))
			if len(result) == 1 {
				lastRound = min(s.maxRounds, k+s.req.Profile.AdditionalTransfers)
			}
		}
		marked = next
	}
	return result
}

// 从终点沿标号回溯出完整行程
func (s *search) itinerary(k int, egress query.AccessEgress, walk bool) *query.Itinerary {
	stop, round := egress.Stop, k
	l := s.rounds[round].transit[stop]
	if walk {
		l = s.rounds[round].walk[stop]
	}
	legs := []query.Leg{{
		Kind: query.LEG_EGRESS, FromStop: stop, ToStop: -1,
		StartTime: l.time, EndTime: l.time + egress.DurationSeconds, Route: -1,
	}}
	for {
		l := s.rounds[round].transit[stop]
		if walk {
			l = s.rounds[round].walk[stop]
		}
		switch l.kind {
		case LABEL_TRANSIT:
			route := s.view.Route(l.route)
			trip := route.Trip(l.trip)
			boardStop := route.Pattern.StopIndexes[l.boardPos]
			legs = append(legs, query.Leg{
				Kind: query.LEG_TRANSIT, FromStop: boardStop, ToStop: stop,
				StartTime: trip.Departure(l.boardPos), EndTime: trip.Arrival(l.alightPos),
				Route: l.route, RouteName: route.ShortName, TripID: trip.TripID,
			})
			stop, round, walk = boardStop, l.fromRound, l.fromWalk
		case LABEL_TRANSFER:
			legs = append(legs, query.Leg{
				Kind: query.LEG_TRANSFER, FromStop: l.fromStop, ToStop: stop,
				StartTime: l.time - l.walk, EndTime: l.time, Route: -1,
			})
			stop, walk = l.fromStop, false
		case LABEL_ACCESS:
			// 步行到站后恰好赶上第一次乘车
			first := legs[len(legs)-1]
			end := first.StartTime - s.view.RouteSlack(first.Route).Board
			legs = append(legs, query.Leg{
				Kind: query.LEG_ACCESS, FromStop: -1, ToStop: stop,
				StartTime: end - l.accessDuration, EndTime: end, Route: -1,
			})
			return s.finish(lo.Reverse(legs))
		default:
			log.Panicf("broken label chain at stop %d round %d", stop, round)
		}
	}
}

func (s *search) finish(legs []query.Leg) *query.Itinerary {
	it := &query.Itinerary{
		StartTime: legs[0].StartTime,
		EndTime:   legs[len(legs)-1].EndTime,
		Legs:      legs,
	}
	it.Transfers = len(it.TransitLegs()) - 1
	it.GeneralizedCost = GeneralizedCost(s.view, it)
	return it
}

// 广义成本：乘车与等待时间 + 步行时间*WALK_RELUCTANCE + 上车成本 + 换乘成本
func GeneralizedCost(view network.TransitView, it *query.Itinerary) int {
	walk, board := 0, 0
	for _, leg := range it.Legs {
		if leg.Kind == query.LEG_TRANSIT {
			board += view.RouteBoardCost(leg.Route)
		} else {
			walk += leg.Duration()
		}
	}
	return it.Duration() - walk + int(float64(walk)*network.WALK_RELUCTANCE) +
		board + it.Transfers*network.TRANSFER_COST
}

func itineraryKey(it *query.Itinerary) string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%d-%d", it.StartTime, it.EndTime)
	for _, leg := range it.Legs {
		fmt.Fprintf(&sb, "|%v:%d:%d:%s", leg.Kind, leg.FromStop, leg.ToStop, leg.TripID)
	}
	return sb.String()
}
