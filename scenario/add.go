package scenario

import (
	"fmt"

	"git.fiblab.net/sim/scenario/network"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// AddRoute 新增一条线路，按首末班与固定间隔生成班次
type AddRoute struct {
	RouteID   string
	ShortName string
	Type      network.RouteType

	Stops     []int
	StopNames []string
	// 相邻站点运行时间（单位：分钟），缺失的区间按DEFAULT_TRAVEL_SECONDS计
	TravelMinutes []int

	// 单位：秒
	FirstDeparture int
	LastDeparture  int
	Headway        int
}

func (a *AddRoute) Validate() error {
	if len(a.Stops) < 2 {
		return fmt.Errorf("route %s: %w", a.ShortName, ErrTooFewStops)
	}
	if a.Headway <= 0 {
		return fmt.Errorf("route %s headway %d: %w", a.ShortName, a.Headway, ErrInvalidHeadway)
	}
	if a.LastDeparture < a.FirstDeparture {
		return fmt.Errorf("route %s last departure %s before first %s: %w",
			a.ShortName, network.FormatClock(a.LastDeparture), network.FormatClock(a.FirstDeparture), ErrInvalidHeadway)
	}
	for _, m := range a.TravelMinutes {
		if m < 0 {
			return fmt.Errorf("route %s: %w", a.ShortName, ErrInvalidTravel)
		}
	}
	return nil
}

func (a *AddRoute) clone() *AddRoute {
	c := *a
	c.Stops = append([]int(nil), a.Stops...)
	c.StopNames = append([]string(nil), a.StopNames...)
	c.TravelMinutes = append([]int(nil), a.TravelMinutes...)
	return &c
}

// floor((末班-首班)/间隔)+1
func (a *AddRoute) TripCount() int {
	if a.Headway <= 0 || a.LastDeparture < a.FirstDeparture {
		return 0
	}
	return (a.LastDeparture-a.FirstDeparture)/a.Headway + 1
}

func (a *AddRoute) Description() string {
	return fmt.Sprintf("new route '%s' (%d stops, %d trips)", a.ShortName, len(a.Stops), a.TripCount())
}

func (a *AddRoute) String() string {
	return fmt.Sprintf("AddRoute[%s, stops=%d, trips=%d, %s~%s, headway=%dmin]",
		a.ShortName, len(a.Stops), a.TripCount(),
		network.FormatClock(a.FirstDeparture), network.FormatClock(a.LastDeparture), a.Headway/60)
}

func (a *AddRoute) travelSeconds() []int {
	return lo.Times(len(a.Stops)-1, func(i int) int {
		if i < len(a.TravelMinutes) {
			return a.TravelMinutes[i] * 60
		}
		return DEFAULT_TRAVEL_SECONDS
	})
}

// 以给定模式下标生成线路，结果只取决于a与patternIndex
func (a *AddRoute) Generate(patternIndex int) *network.Route {
	stopCount := len(a.Stops)
	travel := a.travelSeconds()
	pattern := network.TripPattern{
		Index:       patternIndex,
		StopIndexes: append([]int(nil), a.Stops...),
		SlackIndex:  a.Type.SlackClass(),
		DebugInfo:   a.Type.String() + "_" + a.ShortName,
	}
	timetable := lo.Times(a.TripCount(), func(i int) *network.TripSchedule {
		start := a.FirstDeparture + i*a.Headway
		arrivals := make([]int, stopCount)
		departures := make([]int, stopCount)
		arrivals[0], departures[0] = start, start
		for s := 1; s < stopCount; s++ {
			arrivals[s] = departures[s-1] + travel[s-1]
			departures[s] = arrivals[s]
			if s < stopCount-1 {
				departures[s] += DEFAULT_DWELL_SECONDS
			}
		}
		return &network.TripSchedule{
			SortIndex:      start,
			Arrivals:       arrivals,
			Departures:     departures,
			PatternIndex:   patternIndex,
			TripID:         fmt.Sprintf("%s%s_%d", NEW_TRIP_PREFIX, a.RouteID, i),
			RouteShortName: a.ShortName,
		}
	})
	return &network.Route{
		Pattern:   pattern,
		Timetable: timetable,
		RouteID:   a.RouteID,
		ShortName: a.ShortName,
		LongName:  a.ShortName,
		Type:      a.Type,
	}
}

// AddRouteBuilder 逐项填写新增线路，未填写的项使用缺省值
type AddRouteBuilder struct {
	a   AddRoute
	err error
}

func NewAddRouteBuilder() *AddRouteBuilder {
	return &AddRouteBuilder{
		a: AddRoute{
			Type:           network.ROUTE_TYPE_BUS,
			FirstDeparture: DEFAULT_FIRST_DEPARTURE,
			LastDeparture:  DEFAULT_LAST_DEPARTURE,
			Headway:        DEFAULT_HEADWAY,
		},
	}
}

func (b *AddRouteBuilder) RouteID(id string) *AddRouteBuilder {
	b.a.RouteID = id
	return b
}

func (b *AddRouteBuilder) ShortName(name string) *AddRouteBuilder {
	b.a.ShortName = name
	return b
}

func (b *AddRouteBuilder) RouteType(t network.RouteType) *AddRouteBuilder {
	b.a.Type = t
	return b
}

func (b *AddRouteBuilder) AddStop(stop int, name string) *AddRouteBuilder {
	b.a.Stops = append(b.a.Stops, stop)
	b.a.StopNames = append(b.a.StopNames, name)
	return b
}

func (b *AddRouteBuilder) TravelTime(minutes int) *AddRouteBuilder {
	b.a.TravelMinutes = append(b.a.TravelMinutes, minutes)
	return b
}

func (b *AddRouteBuilder) TravelTimes(minutes []int) *AddRouteBuilder {
	b.a.TravelMinutes = append(b.a.TravelMinutes, minutes...)
	return b
}

func (b *AddRouteBuilder) Schedule(firstHour, firstMinute, lastHour, lastMinute, headwayMinutes int) *AddRouteBuilder {
	b.a.FirstDeparture = firstHour*3600 + firstMinute*60
	b.a.LastDeparture = lastHour*3600 + lastMinute*60
	b.a.Headway = headwayMinutes * 60
	return b
}

// 解析 HH:MM，格式错误在Build时返回
func (b *AddRouteBuilder) FirstDeparture(clock string) *AddRouteBuilder {
	v, err := network.ParseClock(clock)
	if err != nil {
		b.err = err
		return b
	}
	b.a.FirstDeparture = v
	return b
}

func (b *AddRouteBuilder) LastDeparture(clock string) *AddRouteBuilder {
	v, err := network.ParseClock(clock)
	if err != nil {
		b.err = err
		return b
	}
	b.a.LastDeparture = v
	return b
}

func (b *AddRouteBuilder) HeadwayMinutes(minutes int) *AddRouteBuilder {
	b.a.Headway = minutes * 60
	return b
}

func (b *AddRouteBuilder) StopCount() int {
	return len(b.a.Stops)
}

func (b *AddRouteBuilder) Build() (*AddRoute, error) {
	if b.err != nil {
		return nil, b.err
	}
	a := b.a
	if a.RouteID == "" {
		a.RouteID = "NEW_" + uuid.NewString()
	}
	if a.ShortName == "" {
		a.ShortName = a.RouteID
	}
	a.Stops = append([]int(nil), a.Stops...)
	a.StopNames = append([]string(nil), a.StopNames...)
	a.TravelMinutes = append([]int(nil), a.TravelMinutes...)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
