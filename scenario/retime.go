package scenario

import (
	"fmt"
	"math"

	"git.fiblab.net/sim/scenario/network"
	"github.com/samber/lo"
)

// Retime 按倍率调整匹配线路的发车间隔
//
//	factor > 1  减少班次：均匀抽取原班次
//	factor < 1  增加班次：按首班车的区间运行时分插值生成
//	factor = 1  原样复制
type Retime struct {
	Pattern      string
	Factor       float64
	RouteIndices []int

	originalTrips int
	newTrips      int
}

func ValidateFactor(factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}
	return nil
}

func NewRetime(src RouteSource, pattern string, factor float64, routeIndices []int) (*Retime, error) {
	if err := ValidateFactor(factor); err != nil {
		return nil, err
	}
	r := &Retime{
		Pattern:      pattern,
		Factor:       factor,
		RouteIndices: append([]int(nil), routeIndices...),
	}
	r.originalTrips = lo.SumBy(routeIndices, func(i int) int {
		return src.Route(i).TripCount()
	})
	r.newTrips = lo.SumBy(routeIndices, func(i int) int {
		return retimedTripCount(src.Route(i).TripCount(), factor)
	})
	return r, nil
}

// 单条线路调整后的班次数，与Apply的生成结果一致
func retimedTripCount(n int, factor float64) int {
	switch {
	case n == 0:
		return 0
	case factor >= 1:
		return max(1, int(math.Ceil(float64(n)/factor)))
	case n < 2:
		return n
	default:
		return int(math.Ceil(float64(n) / factor))
	}
}

func (r *Retime) clone() *Retime {
	c := *r
	c.RouteIndices = append([]int(nil), r.RouteIndices...)
	return &c
}

// 调整前的班次总数
func (r *Retime) OriginalTripCount() int {
	return r.originalTrips
}

// 调整后的班次总数，按线路分别计算 ceil(原班次数/factor)，不足2班的线路加密时不变
func (r *Retime) NewTripCount() int {
	return r.newTrips
}

func (r *Retime) Description() string {
	direction := "increase"
	if r.Factor > 1 {
		direction = "reduce"
	}
	return fmt.Sprintf("%s: headway x%.1f (%s, %d->%d trips)",
		r.Pattern, r.Factor, direction, r.originalTrips, r.newTrips)
}

// 生成原线路的替换线路：站点序列与换乘余量类别不变，使用新的模式下标
func (r *Retime) Apply(route *network.Route, patternIndex int) *network.Route {
	pattern := route.Pattern
	pattern.Index = patternIndex
	pattern.StopIndexes = append([]int(nil), route.Pattern.StopIndexes...)

	var timetable []*network.TripSchedule
	if r.Factor >= 1 {
		timetable = reduceTrips(route.Timetable, patternIndex, r.Factor)
	} else {
		timetable = interpolateTrips(route.Timetable, patternIndex, pattern.NumberOfStops(), r.Factor)
	}
	return &network.Route{
		Pattern:   pattern,
		Timetable: timetable,
		RouteID:   route.RouteID,
		ShortName: route.ShortName,
		LongName:  route.LongName,
		Type:      route.Type,
	}
}

// 按下标 round(i*factor) 均匀抽取，越界时取最后一班
func reduceTrips(trips []*network.TripSchedule, patternIndex int, factor float64) []*network.TripSchedule {
	n := len(trips)
	if n == 0 {
		return []*network.TripSchedule{}
	}
	count := retimedTripCount(n, factor)
	return lo.Times(count, func(i int) *network.TripSchedule {
		j := min(int(math.Round(float64(i)*factor)), n-1)
		return trips[j].WithPattern(patternIndex)
	})
}

// 在首末班之间等间隔插值，区间运行时分与停站时间取自第一班
// 原班次不足2班时无法插值，原样复制
func interpolateTrips(trips []*network.TripSchedule, patternIndex, stopCount int, factor float64) []*network.TripSchedule {
	n := len(trips)
	if n < 2 {
		return lo.Map(trips, func(t *network.TripSchedule, _ int) *network.TripSchedule {
			return t.WithPattern(patternIndex)
		})
	}
	count := retimedTripCount(n, factor)
	first := trips[0]
	firstDeparture := first.Departure(0)
	span := trips[n-1].Departure(0) - firstDeparture
	headway := span / (count - 1)

	travel := make([]int, stopCount-1)
	dwell := make([]int, stopCount-1)
	for s := 0; s < stopCount-1; s++ {
		travel[s] = first.Arrival(s+1) - first.Departure(s)
		dwell[s] = first.Departure(s+1) - first.Arrival(s+1)
	}

	return lo.Times(count, func(i int) *network.TripSchedule {
		start := firstDeparture + i*headway
		arrivals := make([]int, stopCount)
		departures := make([]int, stopCount)
		arrivals[0], departures[0] = start, start
		for s := 1; s < stopCount; s++ {
			arrivals[s] = departures[s-1] + travel[s-1]
			departures[s] = arrivals[s]
			if s < stopCount-1 {
				departures[s] += dwell[s-1]
			}
		}
		return &network.TripSchedule{
			SortIndex:      start,
			Arrivals:       arrivals,
			Departures:     departures,
			PatternIndex:   patternIndex,
			TripID:         fmt.Sprintf("%s%d", SCENARIO_TRIP_PREFIX, i),
			RouteShortName: first.RouteShortName,
		}
	})
}
