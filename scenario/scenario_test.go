package scenario_test

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"git.fiblab.net/sim/scenario/index"
	"git.fiblab.net/sim/scenario/network"
	"git.fiblab.net/sim/scenario/network/networktest"
	"git.fiblab.net/sim/scenario/scenario"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertConsistent(t *testing.T, n network.TransitView) {
	t.Helper()
	for stop := 0; stop < n.StopCount(); stop++ {
		for _, r := range n.RoutesByStop(stop) {
			assert.Contains(t, n.Route(r).Pattern.StopIndexes, stop)
		}
	}
	patterns := make(map[int]bool)
	for r := 0; r < n.RouteCount(); r++ {
		route := n.Route(r)
		assert.False(t, patterns[route.Pattern.Index], "duplicate pattern index %d", route.Pattern.Index)
		patterns[route.Pattern.Index] = true
		for _, stop := range route.Pattern.StopIndexes {
			assert.Contains(t, n.RoutesByStop(stop), r)
		}
		for _, trip := range route.Timetable {
			assert.Equal(t, route.Pattern.Index, trip.PatternIndex)
			assert.NoError(t, trip.Validate(route.Pattern.NumberOfStops()))
		}
	}
}

func findRoute(n network.TransitView, shortName string) *network.Route {
	for r := 0; r < n.RouteCount(); r++ {
		if n.Route(r).ShortName == shortName {
			return n.Route(r)
		}
	}
	return nil
}

func TestHeadwayReduce(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	msg, err := o.AddHeadway("2호선", 2.0)
	require.NoError(t, err)
	assert.Equal(t, "2호선: headway x2.0 (reduce, 10->5 trips)", msg)

	s := o.Apply()
	assert.Equal(t, base.RouteCount(), s.RouteCount())
	assert.Equal(t, base.TotalTripCount()-5, s.TotalTripCount())
	assert.Equal(t, 1, s.ModifiedRouteCount())

	original := base.Route(networktest.LINE_2)
	replaced := s.Route(networktest.LINE_2)
	require.Equal(t, 5, replaced.TripCount())
	assert.Equal(t, base.MaxPatternIndex()+1, replaced.Pattern.Index)
	assert.Equal(t, original.Pattern.StopIndexes, replaced.Pattern.StopIndexes)
	assert.Equal(t, original.Pattern.SlackIndex, replaced.Pattern.SlackIndex)
	assert.Equal(t, original.Trip(0).Arrival(1), replaced.Trip(0).Arrival(1))
	for i, trip := range replaced.Timetable {
		src := original.Trip(i * 2)
		assert.Equal(t, src.Arrivals, trip.Arrivals)
		assert.Equal(t, src.Departures, trip.Departures)
		assert.Equal(t, src.TripID, trip.TripID)
	}
	assertConsistent(t, s)
}

func TestHeadwayReduceRoundsAndClamps(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	// 1호선 6班，倍率1.5 -> ceil(6/1.5)=4班，取下标0,2,3,5
	_, err := o.AddHeadway("1호선", 1.5)
	require.NoError(t, err)
	route := o.Apply().Route(networktest.LINE_1)
	assert.Equal(t, []string{"1호선_0", "1호선_2", "1호선_3", "1호선_5"},
		lo.Map(route.Timetable, func(t *network.TripSchedule, _ int) string { return t.TripID }))

	o.Clear()
	// 9호선 3班，倍率2.5 -> 2班，下标0与round(2.5)=3越界取最后一班
	_, err = o.AddHeadway("9호선", 2.5)
	require.NoError(t, err)
	route = o.Apply().Route(networktest.LINE_9)
	assert.Equal(t, []string{"9호선_0", "9호선_2"},
		lo.Map(route.Timetable, func(t *network.TripSchedule, _ int) string { return t.TripID }))
}

func TestHeadwayIdentity(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	_, err := o.AddHeadway("지하철_", 1.0)
	require.NoError(t, err)
	s := o.Apply()
	for _, r := range []int{networktest.LINE_1, networktest.LINE_2, networktest.LINE_9} {
		original, copied := base.Route(r), s.Route(r)
		require.Equal(t, original.TripCount(), copied.TripCount())
		assert.NotEqual(t, original.Pattern.Index, copied.Pattern.Index)
		for i := range original.Timetable {
			assert.Equal(t, original.Trip(i).Arrivals, copied.Trip(i).Arrivals)
			assert.Equal(t, original.Trip(i).Departures, copied.Trip(i).Departures)
		}
	}
	assertConsistent(t, s)
}

func TestHeadwayInterpolate(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	msg, err := o.AddHeadway("2호선", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "2호선: headway x0.5 (increase, 10->20 trips)", msg)

	original := base.Route(networktest.LINE_2)
	route := o.Apply().Route(networktest.LINE_2)
	require.Equal(t, 20, route.TripCount())

	span := original.Trip(9).Departure(0) - original.Trip(0).Departure(0)
	headway := span / 19
	first := original.Trip(0)
	for i, trip := range route.Timetable {
		assert.Equal(t, first.Departure(0)+i*headway, trip.Departure(0))
		assert.Equal(t, trip.Departure(0), trip.SortIndex)
		assert.Equal(t, "SCENARIO_"+strconv.Itoa(i), trip.TripID)
		assert.Equal(t, "2호선", trip.RouteShortName)
		// 运行时分与第一班相同
		for s := range trip.Arrivals {
			assert.Equal(t, first.Arrival(s)-first.Departure(0), trip.Arrival(s)-trip.Departure(0))
			assert.Equal(t, first.Departure(s)-first.Departure(0), trip.Departure(s)-trip.Departure(0))
		}
	}
	assertConsistent(t, o.Apply())
}

func TestHeadwayInterpolateSingleTrip(t *testing.T) {
	b := network.NewBuilder()
	b.AddStop("A", 37.5, 127.0)
	b.AddStop("B", 37.5, 127.01)
	b.AddRoute(networktest.NewRoute("S", "셔틀", network.ROUTE_TYPE_BUS, []int{0, 1},
		networktest.Trips("셔틀", 2, networktest.HM(8, 0), 600, 1, 300, 0)))
	base := lo.Must(b.Build())

	o := scenario.NewOverlay(base)
	_, err := o.AddHeadway("셔틀", 0.5)
	require.NoError(t, err)
	route := o.Apply().Route(0)
	require.Equal(t, 1, route.TripCount())
	assert.Equal(t, base.Route(0).Trip(0).Arrivals, route.Trip(0).Arrivals)
	assert.Equal(t, "셔틀_0", route.Trip(0).TripID)
	assert.Equal(t, 1, route.Pattern.Index)
}

func TestHeadwayInvalidFactor(t *testing.T) {
	o := scenario.NewOverlay(networktest.Seoul())
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := o.AddHeadway("2호선", f)
		assert.ErrorIs(t, err, scenario.ErrInvalidFactor)
	}
	assert.Zero(t, o.Len())
}

func TestNoMatchIsNotStored(t *testing.T) {
	o := scenario.NewOverlay(networktest.Seoul())
	_, err := o.AddHeadway("7호선", 2)
	assert.ErrorIs(t, err, scenario.ErrNoMatch)
	_, err = o.AddDisable("ROUTE:nope")
	assert.ErrorIs(t, err, scenario.ErrNoMatch)
	assert.Zero(t, o.Len())
	assert.Equal(t, "no modifications", o.Summary())
}

func TestDisable(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	msg, err := o.AddDisable("9호선")
	require.NoError(t, err)
	assert.Equal(t, "9호선 disabled (1 routes, 3 trips)", msg)

	s := o.Apply()
	assert.Equal(t, base.RouteCount()-1, s.RouteCount())
	assert.Equal(t, base.TotalTripCount()-3, s.TotalTripCount())
	assert.Nil(t, findRoute(s, "9호선"))
	assert.Equal(t, []int{networktest.LINE_2}, s.RoutesByStop(networktest.GANGNAM))
	assert.Equal(t, 1, s.DisabledRouteCount())
	assertConsistent(t, s)

	o.Clear()
	s = o.Apply()
	assert.Equal(t, base.RouteCount(), s.RouteCount())
	assert.Equal(t, base.TotalTripCount(), s.TotalTripCount())
	assertConsistent(t, s)
}

func TestDisableWinsOverRetime(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	_, err := o.AddHeadway("402", 2)
	require.NoError(t, err)
	_, err = o.AddDisable("버스_N")
	require.NoError(t, err)

	s := o.Apply()
	assert.Equal(t, base.RouteCount()-1, s.RouteCount())
	assert.Nil(t, findRoute(s, "N402"))
	assert.Equal(t, 4, findRoute(s, "402").TripCount())
	assert.Equal(t, 1, s.ModifiedRouteCount())
	assertConsistent(t, s)
}

func TestLaterRetimeWins(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	_, err := o.AddHeadway("2호선", 2)
	require.NoError(t, err)
	_, err = o.AddHeadway("2호선", 0.5)
	require.NoError(t, err)

	route := o.Apply().Route(networktest.LINE_2)
	assert.Equal(t, 20, route.TripCount())
	assert.Equal(t, base.MaxPatternIndex()+2, route.Pattern.Index)
	assertConsistent(t, o.Apply())
}

func TestApplyMemoized(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	_, err := o.AddHeadway("1호선", 2)
	require.NoError(t, err)

	first := o.Apply()
	assert.Same(t, first, o.Apply())

	// 任何修改操作都使缓存失效，重新生成的内容一致
	_, err = o.AddDisable("9호선")
	require.NoError(t, err)
	_, err = o.RemoveModification(1)
	require.NoError(t, err)
	second := o.Apply()
	assert.NotSame(t, first, second)
	require.Equal(t, first.RouteCount(), second.RouteCount())
	for r := 0; r < first.RouteCount(); r++ {
		a, b := first.Route(r), second.Route(r)
		assert.Equal(t, a.Pattern, b.Pattern)
		assert.Equal(t, a.RouteID, b.RouteID)
		require.Equal(t, a.TripCount(), b.TripCount())
		for i := range a.Timetable {
			assert.Equal(t, *a.Trip(i), *b.Trip(i))
		}
	}
	for stop := 0; stop < first.StopCount(); stop++ {
		assert.Equal(t, first.RoutesByStop(stop), second.RoutesByStop(stop))
	}
}

func TestBaseNeverMutated(t *testing.T) {
	base := networktest.Seoul()
	snapshot := base.Snapshot()
	o := scenario.NewOverlay(base)
	lo.Must(o.AddHeadway("2호선", 0.5))
	lo.Must(o.AddHeadway("1호선", 3))
	lo.Must(o.AddDisable("402"))
	add, err := scenario.NewAddRouteBuilder().
		ShortName("신분당").
		RouteType(network.ROUTE_TYPE_SUBWAY).
		AddStop(networktest.GANGNAM, "강남").
		AddStop(networktest.SEOLLEUNG, "선릉").
		Build()
	require.NoError(t, err)
	lo.Must(o.AddRoute(add))
	o.Apply()

	assert.Equal(t, snapshot, base.Snapshot())
	for r, route := range base.Routes() {
		assert.Equal(t, r, route.Pattern.Index)
		for _, trip := range route.Timetable {
			assert.Equal(t, r, trip.PatternIndex)
		}
	}
	assert.Equal(t, []int{networktest.LINE_1, networktest.LINE_2}, base.RoutesByStop(networktest.CITY_HALL))
}

func TestAddRouteGenerate(t *testing.T) {
	add, err := scenario.NewAddRouteBuilder().
		RouteID("X1").
		ShortName("X1").
		AddStop(networktest.SEOUL_STATION, "서울역").
		AddStop(networktest.GANGNAM, "강남").
		AddStop(networktest.SEOLLEUNG, "선릉").
		TravelTime(20).
		Schedule(6, 0, 7, 0, 15).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 5, add.TripCount())
	assert.Equal(t, "new route 'X1' (3 stops, 5 trips)", add.Description())

	route := add.Generate(42)
	assert.Equal(t, 42, route.Pattern.Index)
	assert.Equal(t, "BUS_X1", route.Pattern.DebugInfo)
	assert.Equal(t, network.SLACK_BUS, route.Pattern.SlackIndex)
	require.Equal(t, 5, route.TripCount())

	trip := route.Trip(1)
	start := networktest.HM(6, 15)
	assert.Equal(t, "NEW_X1_1", trip.TripID)
	assert.Equal(t, start, trip.SortIndex)
	assert.Equal(t, []int{start, start + 1200, start + 1200 + 30 + 300}, trip.Arrivals)
	assert.Equal(t, []int{start, start + 1200 + 30, start + 1200 + 30 + 300}, trip.Departures)
	assert.Equal(t, networktest.HM(7, 0), route.Trip(4).Departure(0))
	for _, trip := range route.Timetable {
		assert.Equal(t, 42, trip.PatternIndex)
		assert.NoError(t, trip.Validate(3))
	}
}

func TestAddRouteSlackFromType(t *testing.T) {
	rail := lo.Must(scenario.NewAddRouteBuilder().RouteType(network.ROUTE_TYPE_SUBWAY).
		AddStop(0, "a").AddStop(1, "b").Build())
	assert.Equal(t, network.SLACK_RAIL, rail.Generate(0).Pattern.SlackIndex)
	other := lo.Must(scenario.NewAddRouteBuilder().RouteType(1700).
		AddStop(0, "a").AddStop(1, "b").Build())
	assert.Equal(t, network.SLACK_BUS, other.Generate(0).Pattern.SlackIndex)
	assert.True(t, strings.HasPrefix(other.Generate(0).Pattern.DebugInfo, "OTHER_"))
}

func TestAddRouteBuilderDefaults(t *testing.T) {
	add, err := scenario.NewAddRouteBuilder().AddStop(0, "a").AddStop(1, "b").Build()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(add.RouteID, "NEW_"))
	_, err = uuid.Parse(strings.TrimPrefix(add.RouteID, "NEW_"))
	assert.NoError(t, err)
	assert.Equal(t, add.RouteID, add.ShortName)
	assert.Equal(t, network.ROUTE_TYPE_BUS, add.Type)
	assert.Equal(t, networktest.HM(6, 0), add.FirstDeparture)
	assert.Equal(t, networktest.HM(23, 0), add.LastDeparture)
	assert.Equal(t, 600, add.Headway)
	// (23:00-06:00)/10분 + 1
	assert.Equal(t, 103, add.TripCount())
}

func TestAddRouteBuilderErrors(t *testing.T) {
	_, err := scenario.NewAddRouteBuilder().AddStop(0, "a").Build()
	assert.ErrorIs(t, err, scenario.ErrTooFewStops)

	_, err = scenario.NewAddRouteBuilder().AddStop(0, "a").AddStop(1, "b").FirstDeparture("6시").Build()
	assert.ErrorIs(t, err, network.ErrInvalidClock)

	_, err = scenario.NewAddRouteBuilder().AddStop(0, "a").AddStop(1, "b").HeadwayMinutes(0).Build()
	assert.ErrorIs(t, err, scenario.ErrInvalidHeadway)

	_, err = scenario.NewAddRouteBuilder().AddStop(0, "a").AddStop(1, "b").
		FirstDeparture("10:00").LastDeparture("09:00").Build()
	assert.ErrorIs(t, err, scenario.ErrInvalidHeadway)

	_, err = scenario.NewAddRouteBuilder().AddStop(0, "a").AddStop(1, "b").TravelTime(-3).Build()
	assert.ErrorIs(t, err, scenario.ErrInvalidTravel)

	add := lo.Must(scenario.NewAddRouteBuilder().AddStop(0, "a").AddStop(99, "z").Build())
	o := scenario.NewOverlay(networktest.Seoul())
	_, err = o.AddRoute(add)
	assert.ErrorIs(t, err, scenario.ErrIndexOutOfRange)
	assert.Zero(t, o.Len())
}

func TestPatternIndexAssignment(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	lo.Must(o.AddDisable("1호선"))
	lo.Must(o.AddHeadway("버스_402", 2))
	add := lo.Must(scenario.NewAddRouteBuilder().ShortName("G1").
		AddStop(networktest.GANGNAM, "강남").AddStop(networktest.YEOUIDO, "여의도").
		Schedule(8, 0, 9, 0, 30).Build())
	lo.Must(o.AddRoute(add))

	s := o.Apply()
	assert.Equal(t, base.RouteCount(), s.RouteCount())
	assert.Equal(t, 1, s.DisabledRouteCount())
	assert.Equal(t, 2, s.ModifiedRouteCount())
	assert.Equal(t, 1, s.AddedRouteCount())
	// 402与N402依次得到5、6，新增线路得到7
	assert.Equal(t, []int{1, 2, 5, 6, 7},
		lo.Map(s.Routes(), func(r *network.Route, _ int) int { return r.Pattern.Index }))
	last := s.RouteCount() - 1
	assert.Equal(t, "G1", s.Route(last).ShortName)
	assert.Contains(t, s.RoutesByStop(networktest.GANGNAM), last)
	assert.Contains(t, s.RoutesByStop(networktest.YEOUIDO), last)
	assertConsistent(t, s)
	assert.Equal(t,
		"Scenario[stops=9, routes=5 (base 5, disabled 1, modified 2, added 1), trips=21]",
		s.String())
}

func TestRemoveAndSummary(t *testing.T) {
	o := scenario.NewOverlay(networktest.Seoul())
	lo.Must(o.AddDisable("9호선"))
	lo.Must(o.AddHeadway("2호선", 2))
	lo.Must(o.AddDisable("N402"))
	assert.Equal(t, 3, o.Len())
	assert.Equal(t, 1+1+1, o.AffectedRouteCount())

	removed, err := o.RemoveModification(1)
	require.NoError(t, err)
	assert.Equal(t, scenario.KIND_HEADWAY, removed.Kind())
	assert.Equal(t, 5, removed.Retime().NewTripCount())

	mods := o.Modifications()
	require.Len(t, mods, 2)
	assert.Equal(t, "9호선", mods[0].Disable().Pattern)
	assert.Equal(t, "N402", mods[1].Disable().Pattern)
	assert.Equal(t, 2, mods[1].AffectedTripCount())

	assert.Equal(t,
		"=== current scenario ===\n"+
			"1. [DISABLE_ROUTE] 9호선 disabled (1 routes, 3 trips)\n"+
			"2. [DISABLE_ROUTE] N402 disabled (1 routes, 2 trips)\n",
		o.Summary())

	_, err = o.RemoveModification(2)
	assert.ErrorIs(t, err, scenario.ErrIndexOutOfRange)
	_, err = o.RemoveModification(-1)
	assert.ErrorIs(t, err, scenario.ErrIndexOutOfRange)
}

func TestAddModification(t *testing.T) {
	base := networktest.Seoul()
	o := scenario.NewOverlay(base)
	r, err := scenario.NewRetime(base, "manual", 2, []int{networktest.LINE_9})
	require.NoError(t, err)
	_, err = o.AddModification(scenario.HeadwayModification(r))
	require.NoError(t, err)

	bad, err := scenario.NewRetime(base, "manual", 2, []int{})
	require.NoError(t, err)
	_, err = o.AddModification(scenario.HeadwayModification(bad))
	assert.ErrorIs(t, err, scenario.ErrNoMatch)

	_, err = o.AddModification(scenario.DisableModification(&scenario.Disable{Pattern: "x", RouteIndices: []int{17}}))
	assert.ErrorIs(t, err, scenario.ErrIndexOutOfRange)
	_, err = o.AddModification(scenario.Modification{})
	assert.ErrorIs(t, err, scenario.ErrEmptyModification)
	assert.Equal(t, 1, o.Len())
	assert.Equal(t, 2, o.Apply().Route(networktest.LINE_9).TripCount())
}

func TestOverlaySearchHelpers(t *testing.T) {
	o := scenario.NewOverlay(networktest.Seoul())
	assert.Equal(t, 3, o.SearchRoutes("2").RouteCount())
	assert.Equal(t, networktest.GANGNAM, o.SearchStops("강남", 5)[0].StopIndex)
	nearby := o.SearchStopsNearby(37.4979, 127.0276, 1000, 5)
	assert.Equal(t, []int{networktest.GANGNAM, networktest.YEOKSAM},
		lo.Map(nearby, func(s index.StopInfo, _ int) int { return s.StopIndex }))
}

func TestModificationsAreCopied(t *testing.T) {
	o := scenario.NewOverlay(networktest.Seoul())
	add, err := scenario.NewAddRouteBuilder().
		ShortName("G1").
		AddStop(networktest.SEOUL_STATION, "서울역").
		AddStop(networktest.GANGNAM, "강남").
		TravelTime(8).
		Schedule(6, 0, 7, 0, 10).
		Build()
	require.NoError(t, err)
	lo.Must(o.AddRoute(add))
	lo.Must(o.AddHeadway("2호선", 2))
	disable := &scenario.Disable{Pattern: "9호선", RouteIndices: []int{networktest.LINE_9}}
	lo.Must(o.AddModification(scenario.DisableModification(disable)))
	// 6+5+8+2+7
	require.Equal(t, 28, o.Apply().TotalTripCount())

	// 加入之后再改动调用方持有的对象与访问器返回的对象
	add.Headway = 3600
	add.Stops[1] = networktest.YEOUIDO
	disable.RouteIndices[0] = networktest.LINE_1
	mods := o.Modifications()
	mods[0].Add().Headway = 60
	mods[1].Retime().RouteIndices[0] = 999
	mods[2].Disable().RouteIndices[0] = networktest.BUS_402

	// 加入并删除一个无关修改，迫使重新生成
	lo.Must(o.AddDisable("N402"))
	_, err = o.RemoveModification(3)
	require.NoError(t, err)

	s := o.Apply()
	assert.Equal(t, 28, s.TotalTripCount())
	assert.NotNil(t, findRoute(s, "1호선"))
	assert.NotNil(t, findRoute(s, "402"))
	assert.Nil(t, findRoute(s, "9호선"))
	assert.Equal(t, 5, findRoute(s, "2호선").TripCount())
	g1 := findRoute(s, "G1")
	require.NotNil(t, g1)
	assert.Equal(t, 7, g1.TripCount())
	assert.Equal(t, []int{networktest.SEOUL_STATION, networktest.GANGNAM}, g1.Pattern.StopIndexes)
	assertConsistent(t, s)
}

func TestEmptyPayloadRejected(t *testing.T) {
	o := scenario.NewOverlay(networktest.Seoul())
	_, err := o.AddModification(scenario.HeadwayModification(nil))
	assert.ErrorIs(t, err, scenario.ErrEmptyModification)
	_, err = o.AddModification(scenario.DisableModification(nil))
	assert.ErrorIs(t, err, scenario.ErrEmptyModification)
	_, err = o.AddRoute(nil)
	assert.ErrorIs(t, err, scenario.ErrEmptyModification)
	assert.Zero(t, o.Len())
}

func TestRetimeTripCountPerRoute(t *testing.T) {
	b := network.NewBuilder()
	b.AddStop("A", 37.5, 127.0)
	b.AddStop("B", 37.5, 127.01)
	b.AddRoute(networktest.NewRoute("S1", "셔틀", network.ROUTE_TYPE_BUS, []int{0, 1},
		networktest.Trips("셔틀", 2, networktest.HM(8, 0), 600, 1, 300, 0)))
	b.AddRoute(networktest.NewRoute("S2", "셔틀2", network.ROUTE_TYPE_BUS, []int{0, 1},
		networktest.Trips("셔틀2", 2, networktest.HM(8, 0), 600, 3, 300, 0)))
	base := lo.Must(b.Build())

	cases := []struct {
		factor float64
		want   int
	}{
		// 单班线路无法插值保持1班，3班线路 ceil(3/0.5)=6
		{0.5, 1 + 6},
		// ceil(1/2.5)=1，ceil(3/2.5)=2
		{2.5, 1 + 2},
		{1, 1 + 3},
	}
	for _, c := range cases {
		o := scenario.NewOverlay(base)
		msg, err := o.AddHeadway("셔틀", c.factor)
		require.NoError(t, err)
		r := o.Modifications()[0].Retime()
		assert.Equal(t, 4, r.OriginalTripCount())
		assert.Equal(t, c.want, r.NewTripCount(), c.factor)
		assert.Equal(t, c.want, o.Apply().TotalTripCount(), c.factor)
		assert.Contains(t, msg, "4->"+strconv.Itoa(c.want)+" trips")
	}
}
