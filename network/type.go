package network

import (
	"fmt"

	"github.com/samber/lo"
)

type Stop struct {
	Index int
	Name  string
	Lat   float64
	Lon   float64
}

// 线路模式：同一族班次共用的有序站点序列
type TripPattern struct {
	Index       int
	StopIndexes []int
	SlackIndex  SlackClass
	DebugInfo   string
}

func (p *TripPattern) NumberOfStops() int {
	return len(p.StopIndexes)
}

// 同一模式下的一个班次，Arrivals/Departures与StopIndexes等长
type TripSchedule struct {
	SortIndex      int // 首站发车时间
	Arrivals       []int
	Departures     []int
	PatternIndex   int
	TripID         string
	RouteShortName string
}

func (t *TripSchedule) Arrival(pos int) int {
	return t.Arrivals[pos]
}

func (t *TripSchedule) Departure(pos int) int {
	return t.Departures[pos]
}

// 检查 arrival[i] <= departure[i] <= arrival[i+1]
func (t *TripSchedule) Validate(stopCount int) error {
	if len(t.Arrivals) != stopCount || len(t.Departures) != stopCount {
		return fmt.Errorf("trip %s: %w (%d/%d vs %d)",
			t.TripID, ErrScheduleLength, len(t.Arrivals), len(t.Departures), stopCount)
	}
	for i := 0; i < stopCount; i++ {
		if t.Arrivals[i] > t.Departures[i] {
			return fmt.Errorf("trip %s at position %d: %w", t.TripID, i, ErrScheduleOrder)
		}
		if i+1 < stopCount && t.Departures[i] > t.Arrivals[i+1] {
			return fmt.Errorf("trip %s at position %d: %w", t.TripID, i, ErrScheduleOrder)
		}
	}
	return nil
}

// 复制班次并挂到新的模式下
func (t *TripSchedule) WithPattern(patternIndex int) *TripSchedule {
	return &TripSchedule{
		SortIndex:      t.SortIndex,
		Arrivals:       append([]int(nil), t.Arrivals...),
		Departures:     append([]int(nil), t.Departures...),
		PatternIndex:   patternIndex,
		TripID:         t.TripID,
		RouteShortName: t.RouteShortName,
	}
}

type Route struct {
	Pattern   TripPattern
	Timetable []*TripSchedule // 按SortIndex升序
	RouteID   string
	ShortName string
	LongName  string
	Type      RouteType
}

func (r *Route) TripCount() int {
	return len(r.Timetable)
}

func (r *Route) Trip(i int) *TripSchedule {
	return r.Timetable[i]
}

// 第pos站上，不早于t发车的最早班次下标；没有则返回-1
func (r *Route) FindTrip(pos, t int) int {
	best := -1
	for i, trip := range r.Timetable {
		if d := trip.Departures[pos]; d >= t && (best < 0 || d < r.Timetable[best].Departures[pos]) {
			best = i
		}
	}
	return best
}

func (r *Route) FirstDeparture() int {
	if len(r.Timetable) == 0 {
		return 0
	}
	return lo.MinBy(r.Timetable, func(a, b *TripSchedule) bool {
		return a.Departures[0] < b.Departures[0]
	}).Departures[0]
}

func (r *Route) String() string {
	return fmt.Sprintf("Route[%s %s, pattern=%d, stops=%d, trips=%d]",
		r.RouteID, r.ShortName, r.Pattern.Index, r.Pattern.NumberOfStops(), r.TripCount())
}

// 两站之间的步行换乘边（有向）
type Transfer struct {
	FromStop        int
	ToStop          int
	DurationSeconds int
}
