package network

import (
	"fmt"
	"math"
	"sort"
)

// Builder 逐步构造基础网络，Build时检查全部不变量
type Builder struct {
	stopNames []string
	stopLats  []float64
	stopLons  []float64
	routes    []*Route
	transfers []Transfer

	serviceStart, serviceEnd int
	serviceSet               bool
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddStop(name string, lat, lon float64) int {
	b.stopNames = append(b.stopNames, name)
	b.stopLats = append(b.stopLats, lat)
	b.stopLons = append(b.stopLons, lon)
	return len(b.stopNames) - 1
}

// 加入线路，模式下标按加入顺序分配
func (b *Builder) AddRoute(route *Route) int {
	route.Pattern.Index = len(b.routes)
	for _, trip := range route.Timetable {
		trip.PatternIndex = route.Pattern.Index
	}
	b.routes = append(b.routes, route)
	return route.Pattern.Index
}

// 加入双向换乘
func (b *Builder) AddTransfer(from, to, durationSeconds int) {
	b.transfers = append(b.transfers,
		Transfer{FromStop: from, ToStop: to, DurationSeconds: durationSeconds},
		Transfer{FromStop: to, ToStop: from, DurationSeconds: durationSeconds},
	)
}

func (b *Builder) AddDirectedTransfer(t Transfer) {
	b.transfers = append(b.transfers, t)
}

func (b *Builder) SetServiceTime(start, end int) {
	b.serviceStart, b.serviceEnd = start, end
	b.serviceSet = true
}

func (b *Builder) Build() (*Network, error) {
	stopCount := len(b.stopNames)
	for _, route := range b.routes {
		if err := ValidateRoute(route, stopCount); err != nil {
			return nil, err
		}
		sort.SliceStable(route.Timetable, func(i, j int) bool {
			return route.Timetable[i].SortIndex < route.Timetable[j].SortIndex
		})
	}
	transfersFrom := make([][]Transfer, stopCount)
	transfersTo := make([][]Transfer, stopCount)
	for _, t := range b.transfers {
		if t.FromStop < 0 || t.FromStop >= stopCount || t.ToStop < 0 || t.ToStop >= stopCount {
			return nil, fmt.Errorf("transfer %d->%d: %w", t.FromStop, t.ToStop, ErrStopOutOfRange)
		}
		transfersFrom[t.FromStop] = append(transfersFrom[t.FromStop], t)
		transfersTo[t.ToStop] = append(transfersTo[t.ToStop], t)
	}
	n := &Network{
		stopNames:     b.stopNames,
		stopLats:      b.stopLats,
		stopLons:      b.stopLons,
		routes:        b.routes,
		routesByStop:  BuildRoutesByStop(stopCount, b.routes),
		transfersFrom: transfersFrom,
		transfersTo:   transfersTo,
		serviceStart:  b.serviceStart,
		serviceEnd:    b.serviceEnd,
	}
	if !b.serviceSet {
		n.serviceStart, n.serviceEnd = serviceBounds(b.routes)
	}
	log.Infof("network built: %v", n)
	return n, nil
}

// 检查模式长度、站点下标与各班次的时刻单调性
func ValidateRoute(route *Route, stopCount int) error {
	if route.Pattern.NumberOfStops() < 2 {
		return fmt.Errorf("route %s: %w", route.RouteID, ErrPatternTooShort)
	}
	for _, stop := range route.Pattern.StopIndexes {
		if stop < 0 || stop >= stopCount {
			return fmt.Errorf("route %s stop %d: %w", route.RouteID, stop, ErrStopOutOfRange)
		}
	}
	for _, trip := range route.Timetable {
		if err := trip.Validate(route.Pattern.NumberOfStops()); err != nil {
			return fmt.Errorf("route %s: %w", route.RouteID, err)
		}
	}
	return nil
}

func serviceBounds(routes []*Route) (int, int) {
	start, end := math.MaxInt, math.MinInt
	for _, route := range routes {
		for _, trip := range route.Timetable {
			start = min(start, trip.Departures[0])
			end = max(end, trip.Arrivals[len(trip.Arrivals)-1])
		}
	}
	if start > end {
		return 0, 0
	}
	return start, end
}
