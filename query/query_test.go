package query_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"git.fiblab.net/sim/scenario/index"
	"git.fiblab.net/sim/scenario/network"
	"git.fiblab.net/sim/scenario/network/networktest"
	"git.fiblab.net/sim/scenario/query"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu       sync.Mutex
	requests []*query.Request
	result   func(view network.TransitView) ([]*query.Itinerary, error)
}

func (e *fakeEngine) Route(_ context.Context, view network.TransitView, req *query.Request) ([]*query.Itinerary, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()
	return e.result(view)
}

func itinerary(start, end, transfers int, routes ...string) *query.Itinerary {
	it := &query.Itinerary{StartTime: start, EndTime: end, Transfers: transfers}
	for _, r := range routes {
		it.Legs = append(it.Legs, query.Leg{Kind: query.LEG_TRANSIT, Route: 0, RouteName: r})
	}
	return it
}

func fixed(its ...*query.Itinerary) func(network.TransitView) ([]*query.Itinerary, error) {
	return func(network.TransitView) ([]*query.Itinerary, error) {
		return its, nil
	}
}

type fakeStreet struct {
	stops []query.StopDistance
}

func (s *fakeStreet) StopsWithin(_ context.Context, _, _, maxMeters float64) ([]query.StopDistance, error) {
	return lo.Filter(s.stops, func(d query.StopDistance, _ int) bool { return d.Meters <= maxMeters }), nil
}

var (
	seoul = networktest.Seoul()
	// 시청 附近 -> 강남 附近
	cityHallToGangnam = query.Query{
		FromLat: 37.5657, FromLon: 126.9769,
		ToLat: 37.4979, ToLon: 127.0276,
		Departure: networktest.HM(8, 0),
	}
)

func TestAccessFinderStraightLine(t *testing.T) {
	f := query.NewAccessFinder(index.NewStopIndex(seoul), nil, query.DefaultOptions())
	access, err := f.Find(context.Background(), 37.5657, 126.9769, 30)
	require.NoError(t, err)
	assert.Equal(t, []int{networktest.CITY_HALL, networktest.CITY_HALL_PLAZA, networktest.JONGGAK},
		lo.Map(access, func(a query.AccessEgress, _ int) int { return a.Stop }))
	assert.Zero(t, access[0].DurationSeconds)
	for _, a := range access {
		assert.LessOrEqual(t, a.DistanceMeters, query.DEFAULT_MAX_WALK_METERS)
		assert.InDelta(t, a.DistanceMeters/query.DEFAULT_WALK_SPEED, a.DurationSeconds, 0.5)
	}

	access, err = f.Find(context.Background(), 37.5657, 126.9769, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{networktest.CITY_HALL, networktest.CITY_HALL_PLAZA},
		lo.Map(access, func(a query.AccessEgress, _ int) int { return a.Stop }))
}

func TestAccessFinderStreetSortsBeforeTruncating(t *testing.T) {
	street := &fakeStreet{stops: []query.StopDistance{
		{Stop: 4, Meters: 700},
		{Stop: 2, Meters: 120},
		{Stop: 7, Meters: 900},
		{Stop: 1, Meters: 300},
	}}
	opts := query.DefaultOptions()
	f := query.NewAccessFinder(index.NewStopIndex(seoul), street, opts)
	assert.True(t, f.UsingStreet())
	access, err := f.Find(context.Background(), 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []query.AccessEgress{
		{Stop: 2, DurationSeconds: 100, DistanceMeters: 120},
		{Stop: 1, DurationSeconds: 250, DistanceMeters: 300},
	}, access)
}

func TestPlanBuildsProfiles(t *testing.T) {
	engine := &fakeEngine{result: fixed()}
	opts := query.DefaultOptions()
	opts.RelaxRatio, opts.RelaxSlack, opts.MCAdditionalTransfers = 1.1, 300, 2
	p := query.NewPlanner(engine, index.NewStopIndex(seoul), nil, opts)

	_, err := p.Plan(context.Background(), seoul, cityHallToGangnam)
	require.NoError(t, err)
	_, err = p.PlanMultiCriteria(context.Background(), seoul, cityHallToGangnam)
	require.NoError(t, err)
	require.Len(t, engine.requests, 2)

	fastest := engine.requests[0].Profile
	assert.Equal(t, query.PROFILE_FASTEST, fastest.Kind)
	assert.Equal(t, networktest.HM(8, 0), fastest.EarliestDeparture)
	assert.Equal(t, 1800, fastest.SearchWindowSeconds)
	assert.Equal(t, 3, fastest.AdditionalTransfers)
	assert.True(t, fastest.Relax.IsNone())

	pareto := engine.requests[1].Profile
	assert.Equal(t, query.PROFILE_PARETO, pareto.Kind)
	assert.Equal(t, 1800, pareto.SearchWindowSeconds)
	assert.Equal(t, 2, pareto.AdditionalTransfers)
	assert.Equal(t, query.RelaxFunction{Ratio: 1.1, Slack: 300}, pareto.Relax)
	assert.Equal(t, 1400, pareto.Relax.Relax(1000))

	// 역삼 距离约830米，超出步行范围
	egress := engine.requests[0].Egress
	assert.Equal(t, []int{networktest.GANGNAM},
		lo.Map(egress, func(a query.AccessEgress, _ int) int { return a.Stop }))
}

func TestDefaultRelaxIsExact(t *testing.T) {
	profile := query.ParetoProfile(query.DefaultOptions(), 0)
	assert.True(t, profile.Relax.IsNone())
	assert.Equal(t, 1234, profile.Relax.Relax(1234))
	assert.Equal(t, 1800, profile.LatestDeparture())
}

func TestNoReachableStopSkipsEngine(t *testing.T) {
	engine := &fakeEngine{result: fixed(itinerary(0, 1, 0))}
	p := query.NewPlanner(engine, index.NewStopIndex(seoul), nil, query.DefaultOptions())

	q := cityHallToGangnam
	q.FromLat, q.FromLon = 35.1796, 129.0756
	result, err := p.Plan(context.Background(), seoul, q)
	assert.ErrorIs(t, err, query.ErrNoAccessStop)
	assert.True(t, result.Empty())

	q = cityHallToGangnam
	q.ToLat, q.ToLon = 35.1796, 129.0756
	result, err = p.PlanMultiCriteria(context.Background(), seoul, q)
	assert.ErrorIs(t, err, query.ErrNoEgressStop)
	assert.True(t, result.Empty())
	assert.Empty(t, engine.requests)
}

func TestPostFilter(t *testing.T) {
	engine := &fakeEngine{result: fixed(
		itinerary(networktest.HM(8, 20), networktest.HM(8, 50), 0, "2호선"),
		itinerary(networktest.HM(7, 55), networktest.HM(8, 30), 0, "2호선"),
		itinerary(networktest.HM(8, 0), networktest.HM(8, 40), 1, "1호선", "2호선"),
		itinerary(networktest.HM(8, 10), networktest.HM(8, 35), 0, "2호선"),
	)}
	p := query.NewPlanner(engine, index.NewStopIndex(seoul), nil, query.DefaultOptions())
	q := cityHallToGangnam
	q.MaxResults = 2
	result, err := p.PlanMultiCriteria(context.Background(), seoul, q)
	require.NoError(t, err)
	assert.Equal(t, 4, result.RawCount)
	assert.Equal(t, []int{networktest.HM(8, 0), networktest.HM(8, 10)},
		lo.Map(result.Itineraries, func(it *query.Itinerary, _ int) int { return it.StartTime }))
	assert.Equal(t, networktest.HM(8, 10), result.Best().StartTime)
	assert.Equal(t, "08:00 depart, 40 min, 1 transfers: 1호선 -> 2호선", result.Itineraries[0].String())

	assert.Empty(t, query.Filter(nil, 0, 5))
}

func TestEngineErrors(t *testing.T) {
	engine := &fakeEngine{result: func(network.TransitView) ([]*query.Itinerary, error) {
		return nil, query.ErrNoConnection
	}}
	p := query.NewPlanner(engine, index.NewStopIndex(seoul), nil, query.DefaultOptions())
	result, err := p.Plan(context.Background(), seoul, cityHallToGangnam)
	require.NoError(t, err)
	assert.True(t, result.Empty())

	boom := errors.New("engine crashed")
	engine.result = func(network.TransitView) ([]*query.Itinerary, error) {
		return nil, boom
	}
	_, err = p.Plan(context.Background(), seoul, cityHallToGangnam)
	assert.ErrorIs(t, err, boom)
}

func TestPlanByStopIndex(t *testing.T) {
	engine := &fakeEngine{result: fixed()}
	p := query.NewPlanner(engine, index.NewStopIndex(seoul), nil, query.DefaultOptions())
	_, err := p.PlanByStopIndex(context.Background(), seoul, networktest.CITY_HALL, networktest.GANGNAM, networktest.HM(8, 0), 0)
	require.NoError(t, err)
	req := engine.requests[0]
	assert.Equal(t, []query.AccessEgress{{Stop: networktest.CITY_HALL}}, req.Access)
	assert.Equal(t, []query.AccessEgress{{Stop: networktest.GANGNAM}}, req.Egress)
	assert.Equal(t, query.PROFILE_FASTEST, req.Profile.Kind)

	_, err = p.PlanByStopIndex(context.Background(), seoul, -1, networktest.GANGNAM, 0, 0)
	assert.ErrorIs(t, err, query.ErrInvalidStop)
	_, err = p.PlanByStopIndex(context.Background(), seoul, 0, 99, 0, 0)
	assert.ErrorIs(t, err, query.ErrInvalidStop)
}

func TestCompare(t *testing.T) {
	scenario := seoul.WithRoutes(seoul.Routes()[:2])
	engine := &fakeEngine{result: func(view network.TransitView) ([]*query.Itinerary, error) {
		if view == network.TransitView(seoul) {
			return []*query.Itinerary{
				itinerary(networktest.HM(8, 0), networktest.HM(8, 30), 0, "2호선"),
				itinerary(networktest.HM(8, 10), networktest.HM(8, 50), 1, "1호선", "2호선"),
			}, nil
		}
		return []*query.Itinerary{
			itinerary(networktest.HM(8, 5), networktest.HM(8, 50), 1, "1호선", "2호선"),
		}, nil
	}}
	p := query.NewPlanner(engine, index.NewStopIndex(seoul), nil, query.DefaultOptions())
	c, err := p.Compare(context.Background(), seoul, scenario, cityHallToGangnam)
	require.NoError(t, err)

	d, ok := c.DurationDelta()
	assert.True(t, ok)
	assert.Equal(t, 15, d)
	d, ok = c.TransferDelta()
	assert.True(t, ok)
	assert.Equal(t, 1, d)
	assert.Equal(t, -1, c.CountDelta())
	assert.Equal(t, []string{"30", "45", "+15"},
		[]string{c.Rows()[0].Base, c.Rows()[0].Scenario, c.Rows()[0].Delta})
	assert.Contains(t, c.String(), "itineraries")
}

func TestCompareNotAvailable(t *testing.T) {
	scenario := seoul.WithRoutes(nil)
	engine := &fakeEngine{result: func(view network.TransitView) ([]*query.Itinerary, error) {
		if view.RouteCount() == 0 {
			return nil, query.ErrNoConnection
		}
		return []*query.Itinerary{itinerary(networktest.HM(8, 0), networktest.HM(8, 30), 0, "2호선")}, nil
	}}
	p := query.NewPlanner(engine, index.NewStopIndex(seoul), nil, query.DefaultOptions())
	c, err := p.Compare(context.Background(), seoul, scenario, cityHallToGangnam)
	require.NoError(t, err)

	_, ok := c.DurationDelta()
	assert.False(t, ok)
	rows := c.Rows()
	assert.Equal(t, query.NOT_AVAILABLE, rows[0].Scenario)
	assert.Equal(t, query.NOT_AVAILABLE, rows[0].Delta)
	assert.Equal(t, query.NOT_AVAILABLE, rows[1].Delta)
	assert.Equal(t, "-1", rows[2].Delta)
}

func TestExportCSV(t *testing.T) {
	its := []*query.Itinerary{
		itinerary(networktest.HM(8, 0), networktest.HM(8, 40), 1, "1호선", "2호선"),
	}
	buf := bytes.Buffer{}
	require.NoError(t, query.WriteItinerariesCSV(&buf, query.ItineraryRows("base", its)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "label,rank,departure,arrival,duration_min,transfers,generalized_cost,routes", lines[0])
	assert.Equal(t, "base,1,08:00,08:40,40,1,0,1호선 > 2호선", lines[1])

	buf.Reset()
	c := &query.Comparison{
		Base:     &query.Result{Itineraries: its},
		Scenario: &query.Result{Itineraries: []*query.Itinerary{}},
	}
	require.NoError(t, query.WriteComparisonCSV(&buf, c))
	assert.Equal(t,
		"metric,base,scenario,delta\nduration_min,40,N/A,N/A\ntransfers,1,N/A,N/A\nitineraries,1,0,-1\n",
		buf.String())
}
