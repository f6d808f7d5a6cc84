package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"git.fiblab.net/sim/scenario/index"
	"git.fiblab.net/sim/scenario/network"
	"github.com/samber/lo"
)

// Query 坐标到坐标的出行请求
type Query struct {
	FromLat, FromLon float64
	ToLat, ToLon     float64
	// 当日秒数
	Departure int
	// <=0 时使用Options.MaxResults
	MaxResults int
}

type Result struct {
	Itineraries []*Itinerary
	// 引擎返回、过滤之前的行程数
	RawCount    int
	AccessCount int
	EgressCount int
	Elapsed     time.Duration
}

func (r *Result) Empty() bool {
	return r == nil || len(r.Itineraries) == 0
}

// 耗时最短的行程，相同时取出发较早者
func (r *Result) Best() *Itinerary {
	if r.Empty() {
		return nil
	}
	return lo.MinBy(r.Itineraries, func(a, b *Itinerary) bool {
		if a.Duration() != b.Duration() {
			return a.Duration() < b.Duration()
		}
		return a.StartTime < b.StartTime
	})
}

// Planner 把出行请求转换为引擎输入，并整理引擎输出
// 本身无状态，网络视图在每次调用时传入
type Planner struct {
	engine Engine
	finder *AccessFinder
	opts   Options
}

func NewPlanner(engine Engine, stops *index.StopIndex, street StreetNetwork, opts Options) *Planner {
	return &Planner{
		engine: engine,
		finder: NewAccessFinder(stops, street, opts),
		opts:   opts,
	}
}

func (p *Planner) Options() Options {
	return p.opts
}

func (p *Planner) UsingStreet() bool {
	return p.finder.UsingStreet()
}

// 最早到达
func (p *Planner) Plan(ctx context.Context, view network.TransitView, q Query) (*Result, error) {
	return p.plan(ctx, view, q, FastestProfile(p.opts, q.Departure))
}

// Pareto最优
func (p *Planner) PlanMultiCriteria(ctx context.Context, view network.TransitView, q Query) (*Result, error) {
	return p.plan(ctx, view, q, ParetoProfile(p.opts, q.Departure))
}

func (p *Planner) plan(ctx context.Context, view network.TransitView, q Query, profile Profile) (*Result, error) {
	start := time.Now()
	access, err := p.finder.Find(ctx, q.FromLat, q.FromLon, p.opts.MaxAccessStops)
	if err != nil {
		return nil, fmt.Errorf("find access: %w", err)
	}
	if len(access) == 0 {
		log.Warnf("no stop near origin (%f, %f)", q.FromLat, q.FromLon)
		return &Result{Itineraries: []*Itinerary{}}, ErrNoAccessStop
	}
	egress, err := p.finder.Find(ctx, q.ToLat, q.ToLon, p.opts.MaxEgressStops)
	if err != nil {
		return nil, fmt.Errorf("find egress: %w", err)
	}
	if len(egress) == 0 {
		log.Warnf("no stop near destination (%f, %f)", q.ToLat, q.ToLon)
		return &Result{Itineraries: []*Itinerary{}, AccessCount: len(access)}, ErrNoEgressStop
	}
	log.Debugf("%v - access: %d, egress: %d", profile.Kind, len(access), len(egress))
	return p.run(ctx, view, profile, access, egress, p.maxResults(q.MaxResults), start)
}

// 站点到站点的查询，上下车步行时间为0
func (p *Planner) PlanByStopIndex(ctx context.Context, view network.TransitView, from, to, departure, maxResults int) (*Result, error) {
	for _, stop := range []int{from, to} {
		if stop < 0 || stop >= view.StopCount() {
			return nil, fmt.Errorf("stop %d: %w", stop, ErrInvalidStop)
		}
	}
	return p.run(ctx, view, FastestProfile(p.opts, departure),
		[]AccessEgress{{Stop: from}},
		[]AccessEgress{{Stop: to}},
		p.maxResults(maxResults), time.Now())
}

func (p *Planner) maxResults(n int) int {
	if n > 0 {
		return n
	}
	return p.opts.MaxResults
}

func (p *Planner) run(
	ctx context.Context, view network.TransitView, profile Profile,
	access, egress []AccessEgress, maxResults int, start time.Time,
) (*Result, error) {
	result := &Result{
		Itineraries: []*Itinerary{},
		AccessCount: len(access),
		EgressCount: len(egress),
	}
	its, err := p.engine.Route(ctx, view, &Request{Profile: profile, Access: access, Egress: egress})
	result.Elapsed = time.Since(start)
	if errors.Is(err, ErrNoConnection) {
		log.Infof("%v: no connection found (%v)", profile.Kind, result.Elapsed)
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.RawCount = len(its)
	result.Itineraries = Filter(its, profile.EarliestDeparture, maxResults)
	log.Infof("%v: %d itineraries found, %d kept (%v)",
		profile.Kind, result.RawCount, len(result.Itineraries), result.Elapsed)
	return result, nil
}

// 只保留不早于departure出发的行程，按出发时间升序，最多保留maxResults个
func Filter(its []*Itinerary, departure, maxResults int) []*Itinerary {
	kept := lo.Filter(its, func(it *Itinerary, _ int) bool {
		return it.StartTime >= departure
	})
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].StartTime < kept[j].StartTime
	})
	if maxResults >= 0 && len(kept) > maxResults {
		kept = kept[:maxResults]
	}
	return kept
}
