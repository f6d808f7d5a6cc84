package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/scenario/network"
	"git.fiblab.net/sim/scenario/query"
	"git.fiblab.net/sim/scenario/scenario"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

const DEFAULT_STOP_RESULTS = 10

// ScenarioServer 对外提供场景编辑与查询
// 修改操作持写锁；查询持读锁，查询期间场景网络不变
type ScenarioServer struct {
	overlay *scenario.Overlay
	planner *query.Planner

	mu *xsync.RBMutex
}

func NewScenarioServer(overlay *scenario.Overlay, planner *query.Planner) *ScenarioServer {
	overlay.Apply()
	return &ScenarioServer{
		overlay: overlay,
		planner: planner,
		mu:      xsync.NewRBMutex(),
	}
}

// 错误码：输入非法为InvalidArgument，下标越界或无匹配为NotFound
func toConnectError(err error) error {
	switch {
	case errors.Is(err, scenario.ErrIndexOutOfRange),
		errors.Is(err, scenario.ErrNoMatch):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, scenario.ErrInvalidFactor),
		errors.Is(err, scenario.ErrTooFewStops),
		errors.Is(err, scenario.ErrInvalidHeadway),
		errors.Is(err, scenario.ErrInvalidTravel),
		errors.Is(err, scenario.ErrEmptyModification),
		errors.Is(err, network.ErrInvalidClock),
		errors.Is(err, query.ErrInvalidStop):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// 在写锁内修改场景，并立即重新生成场景网络，读锁内的Apply只读取缓存结果
func (s *ScenarioServer) modify(f func() (string, error)) (*connect.Response[ModificationsResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, err := f()
	if err != nil {
		return nil, toConnectError(err)
	}
	s.overlay.Apply()
	res := s.modifications()
	res.Message = msg
	return connect.NewResponse(res), nil
}

func (s *ScenarioServer) modifications() *ModificationsResponse {
	return &ModificationsResponse{
		Modifications: lo.Map(s.overlay.Modifications(), func(m scenario.Modification, _ int) ModificationInfo {
			return ModificationInfo{
				Kind:           m.Kind().String(),
				Description:    m.Description(),
				AffectedRoutes: m.AffectedRouteCount(),
				AffectedTrips:  m.AffectedTripCount(),
			}
		}),
		Scenario: s.overlay.Apply().String(),
	}
}

func (s *ScenarioServer) AddHeadway(
	ctx context.Context,
	req *connect.Request[AddHeadwayRequest],
) (*connect.Response[ModificationsResponse], error) {
	in := req.Msg
	return s.modify(func() (string, error) {
		return s.overlay.AddHeadway(in.Pattern, in.Factor)
	})
}

func (s *ScenarioServer) AddDisable(
	ctx context.Context,
	req *connect.Request[AddDisableRequest],
) (*connect.Response[ModificationsResponse], error) {
	in := req.Msg
	return s.modify(func() (string, error) {
		return s.overlay.AddDisable(in.Pattern)
	})
}

func (s *ScenarioServer) AddRoute(
	ctx context.Context,
	req *connect.Request[AddRouteRequest],
) (*connect.Response[ModificationsResponse], error) {
	add, err := newAddRoute(s.overlay.Base(), req.Msg)
	if err != nil {
		return nil, err
	}
	return s.modify(func() (string, error) {
		return s.overlay.AddRoute(add)
	})
}

// 由请求构造新增线路，站点名取自基础网络
func newAddRoute(base *network.Network, in *AddRouteRequest) (*scenario.AddRoute, error) {
	b := scenario.NewAddRouteBuilder().
		RouteID(in.RouteID).
		ShortName(in.ShortName).
		TravelTimes(in.TravelMinutes)
	if in.Type != nil {
		b.RouteType(network.RouteType(*in.Type))
	}
	if in.FirstDeparture != "" {
		b.FirstDeparture(in.FirstDeparture)
	}
	if in.LastDeparture != "" {
		b.LastDeparture(in.LastDeparture)
	}
	if in.HeadwayMinutes != 0 {
		b.HeadwayMinutes(in.HeadwayMinutes)
	}
	for _, stop := range in.Stops {
		if !base.HasStop(stop) {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("stop %d: %w", stop, scenario.ErrIndexOutOfRange))
		}
		b.AddStop(stop, base.StopName(stop))
	}
	add, err := b.Build()
	if err != nil {
		return nil, toConnectError(err)
	}
	return add, nil
}

func (s *ScenarioServer) RemoveModification(
	ctx context.Context,
	req *connect.Request[RemoveModificationRequest],
) (*connect.Response[ModificationsResponse], error) {
	return s.modify(func() (string, error) {
		m, err := s.overlay.RemoveModification(req.Msg.Index)
		if err != nil {
			return "", err
		}
		return "removed: " + m.Description(), nil
	})
}

func (s *ScenarioServer) ClearModifications(
	ctx context.Context,
	req *connect.Request[ClearModificationsRequest],
) (*connect.Response[ModificationsResponse], error) {
	return s.modify(func() (string, error) {
		s.overlay.Clear()
		return "cleared", nil
	})
}

func (s *ScenarioServer) ListModifications(
	ctx context.Context,
	req *connect.Request[ListModificationsRequest],
) (*connect.Response[ModificationsResponse], error) {
	token := s.mu.RLock()
	defer s.mu.RUnlock(token)
	res := s.modifications()
	res.Message = s.overlay.Summary()
	return connect.NewResponse(res), nil
}

func toQuery(fromLat, fromLon, toLat, toLon float64, departure string, maxResults int) (query.Query, error) {
	dep, err := network.ParseClock(departure)
	if err != nil {
		return query.Query{}, err
	}
	return query.Query{
		FromLat: fromLat, FromLon: fromLon,
		ToLat: toLat, ToLon: toLon,
		Departure:  dep,
		MaxResults: maxResults,
	}, nil
}

func (s *ScenarioServer) itineraryInfos(view network.TransitView, its []*query.Itinerary) []ItineraryInfo {
	stopName := func(stop int) string {
		if stop < 0 {
			return ""
		}
		return view.StopName(stop)
	}
	return lo.Map(its, func(it *query.Itinerary, _ int) ItineraryInfo {
		return ItineraryInfo{
			Departure:       network.FormatClock(it.StartTime),
			Arrival:         network.FormatClock(it.EndTime),
			DurationMinutes: it.Duration() / 60,
			Transfers:       it.Transfers,
			GeneralizedCost: it.GeneralizedCost,
			Routes:          it.RouteNames(),
			Legs: lo.Map(it.Legs, func(l query.Leg, _ int) LegInfo {
				return LegInfo{
					Kind:      l.Kind.String(),
					From:      stopName(l.FromStop),
					To:        stopName(l.ToStop),
					Departure: network.FormatClockSeconds(l.StartTime),
					Arrival:   network.FormatClockSeconds(l.EndTime),
					Route:     l.RouteName,
					TripID:    l.TripID,
				}
			}),
		}
	})
}

func (s *ScenarioServer) Plan(
	ctx context.Context,
	req *connect.Request[PlanRequest],
) (*connect.Response[PlanResponse], error) {
	in := req.Msg
	q, err := toQuery(in.FromLat, in.FromLon, in.ToLat, in.ToLon, in.Departure, in.MaxResults)
	if err != nil {
		return nil, toConnectError(err)
	}
	token := s.mu.RLock()
	defer s.mu.RUnlock(token)
	var view network.TransitView = s.overlay.Base()
	if in.Scenario {
		view = s.overlay.Apply()
	}
	plan := s.planner.Plan
	if in.MultiCriteria {
		plan = s.planner.PlanMultiCriteria
	}
	result, err := plan(ctx, view, q)
	if errors.Is(err, query.ErrNoAccessStop) || errors.Is(err, query.ErrNoEgressStop) {
		// 无法找到可达站点，返回空响应
		return connect.NewResponse(&PlanResponse{Message: err.Error(), Itineraries: []ItineraryInfo{}}), nil
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PlanResponse{
		Itineraries: s.itineraryInfos(view, result.Itineraries),
		ElapsedMs:   result.Elapsed.Milliseconds(),
	}), nil
}

func (s *ScenarioServer) Compare(
	ctx context.Context,
	req *connect.Request[CompareRequest],
) (*connect.Response[CompareResponse], error) {
	in := req.Msg
	q, err := toQuery(in.FromLat, in.FromLon, in.ToLat, in.ToLon, in.Departure, 0)
	if err != nil {
		return nil, toConnectError(err)
	}
	token := s.mu.RLock()
	defer s.mu.RUnlock(token)
	start := time.Now()
	view := s.overlay.Apply()
	c, err := s.planner.Compare(ctx, s.overlay.Base(), view, q)
	if err != nil {
		if errors.Is(err, query.ErrNoAccessStop) || errors.Is(err, query.ErrNoEgressStop) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		}
		return nil, toConnectError(err)
	}
	log.Debugf("compare finished in %v", time.Since(start))
	return connect.NewResponse(&CompareResponse{
		Rows:     c.Rows(),
		Base:     s.itineraryInfos(s.overlay.Base(), c.Base.Itineraries),
		Scenario: s.itineraryInfos(view, c.Scenario.Itineraries),
	}), nil
}

func (s *ScenarioServer) SearchRoutes(
	ctx context.Context,
	req *connect.Request[SearchRoutesRequest],
) (*connect.Response[SearchRoutesResponse], error) {
	match := s.overlay.SearchRoutes(req.Msg.Pattern)
	base := s.overlay.Base()
	return connect.NewResponse(&SearchRoutesResponse{
		Summary: match.String(),
		Routes: lo.Map(match.RouteIndices, func(i int, _ int) RouteInfo {
			r := base.Route(i)
			return RouteInfo{
				Index:     i,
				RouteID:   r.RouteID,
				ShortName: r.ShortName,
				Type:      r.Type.String(),
				Stops:     r.Pattern.NumberOfStops(),
				Trips:     r.TripCount(),
			}
		}),
	}), nil
}

func (s *ScenarioServer) SearchStops(
	ctx context.Context,
	req *connect.Request[SearchStopsRequest],
) (*connect.Response[SearchStopsResponse], error) {
	in := req.Msg
	maxResults := in.MaxResults
	if maxResults <= 0 {
		maxResults = DEFAULT_STOP_RESULTS
	}
	if in.Keyword != "" {
		return connect.NewResponse(&SearchStopsResponse{Stops: s.overlay.SearchStops(in.Keyword, maxResults)}), nil
	}
	radius := in.Radius
	if radius <= 0 {
		radius = s.planner.Options().MaxWalkMeters
	}
	return connect.NewResponse(&SearchStopsResponse{
		Stops: s.overlay.SearchStopsNearby(in.Lat, in.Lon, radius, maxResults),
	}), nil
}
