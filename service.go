package main

import (
	"encoding/json"
	"net/http"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/scenario/index"
	"git.fiblab.net/sim/scenario/query"
)

const (
	ScenarioServiceName = "scenario.v1.ScenarioService"

	AddHeadwayProcedure         = "/scenario.v1.ScenarioService/AddHeadway"
	AddDisableProcedure         = "/scenario.v1.ScenarioService/AddDisable"
	AddRouteProcedure           = "/scenario.v1.ScenarioService/AddRoute"
	RemoveModificationProcedure = "/scenario.v1.ScenarioService/RemoveModification"
	ClearModificationsProcedure = "/scenario.v1.ScenarioService/ClearModifications"
	ListModificationsProcedure  = "/scenario.v1.ScenarioService/ListModifications"
	PlanProcedure               = "/scenario.v1.ScenarioService/Plan"
	CompareProcedure            = "/scenario.v1.ScenarioService/Compare"
	SearchRoutesProcedure       = "/scenario.v1.ScenarioService/SearchRoutes"
	SearchStopsProcedure        = "/scenario.v1.ScenarioService/SearchStops"
)

// 消息为普通Go结构体，以JSON编码传输
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type AddHeadwayRequest struct {
	Pattern string  `json:"pattern"`
	Factor  float64 `json:"factor"`
}

type AddDisableRequest struct {
	Pattern string `json:"pattern"`
}

type AddRouteRequest struct {
	RouteID        string `json:"routeId"`
	ShortName      string `json:"shortName"`
	// 缺省为公交（3）；0为有轨电车
	Type           *int32 `json:"type,omitempty"`
	Stops          []int  `json:"stops"`
	TravelMinutes  []int  `json:"travelMinutes"`
	FirstDeparture string `json:"firstDeparture"` // HH:MM
	LastDeparture  string `json:"lastDeparture"`  // HH:MM
	HeadwayMinutes int    `json:"headwayMinutes"`
}

type RemoveModificationRequest struct {
	// 从0开始
	Index int `json:"index"`
}

type ClearModificationsRequest struct{}

type ListModificationsRequest struct{}

type ModificationInfo struct {
	Kind           string `json:"kind"`
	Description    string `json:"description"`
	AffectedRoutes int    `json:"affectedRoutes"`
	AffectedTrips  int    `json:"affectedTrips"`
}

type ModificationsResponse struct {
	Message       string             `json:"message,omitempty"`
	Modifications []ModificationInfo `json:"modifications"`
	Scenario      string             `json:"scenario"`
}

type PlanRequest struct {
	FromLat       float64 `json:"fromLat"`
	FromLon       float64 `json:"fromLon"`
	ToLat         float64 `json:"toLat"`
	ToLon         float64 `json:"toLon"`
	Departure     string  `json:"departure"` // HH:MM
	MaxResults    int     `json:"maxResults"`
	Scenario      bool    `json:"scenario"`
	MultiCriteria bool    `json:"multiCriteria"`
}

type LegInfo struct {
	Kind      string `json:"kind"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Route     string `json:"route,omitempty"`
	TripID    string `json:"tripId,omitempty"`
}

type ItineraryInfo struct {
	Departure       string    `json:"departure"`
	Arrival         string    `json:"arrival"`
	DurationMinutes int       `json:"durationMinutes"`
	Transfers       int       `json:"transfers"`
	GeneralizedCost int       `json:"generalizedCost"`
	Routes          []string  `json:"routes"`
	Legs            []LegInfo `json:"legs"`
}

type PlanResponse struct {
	Message     string          `json:"message,omitempty"`
	Itineraries []ItineraryInfo `json:"itineraries"`
	ElapsedMs   int64           `json:"elapsedMs"`
}

type CompareRequest struct {
	FromLat   float64 `json:"fromLat"`
	FromLon   float64 `json:"fromLon"`
	ToLat     float64 `json:"toLat"`
	ToLon     float64 `json:"toLon"`
	Departure string  `json:"departure"`
}

type CompareResponse struct {
	Rows     []*query.ComparisonRow `json:"rows"`
	Base     []ItineraryInfo        `json:"base"`
	Scenario []ItineraryInfo        `json:"scenario"`
}

type SearchRoutesRequest struct {
	Pattern string `json:"pattern"`
}

type RouteInfo struct {
	Index     int    `json:"index"`
	RouteID   string `json:"routeId"`
	ShortName string `json:"shortName"`
	Type      string `json:"type"`
	Stops     int    `json:"stops"`
	Trips     int    `json:"trips"`
}

type SearchRoutesResponse struct {
	Summary string      `json:"summary"`
	Routes  []RouteInfo `json:"routes"`
}

// Keyword非空时按名称搜索，否则按坐标半径搜索
type SearchStopsRequest struct {
	Keyword    string  `json:"keyword"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Radius     float64 `json:"radius"`
	MaxResults int     `json:"maxResults"`
}

type SearchStopsResponse struct {
	Stops []index.StopInfo `json:"stops"`
}

// 注册所有一元过程，返回服务路径前缀与处理器
func NewScenarioServiceHandler(s *ScenarioServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AddHeadwayProcedure, connect.NewUnaryHandler(AddHeadwayProcedure, s.AddHeadway, opts...))
	mux.Handle(AddDisableProcedure, connect.NewUnaryHandler(AddDisableProcedure, s.AddDisable, opts...))
	mux.Handle(AddRouteProcedure, connect.NewUnaryHandler(AddRouteProcedure, s.AddRoute, opts...))
	mux.Handle(RemoveModificationProcedure, connect.NewUnaryHandler(RemoveModificationProcedure, s.RemoveModification, opts...))
	mux.Handle(ClearModificationsProcedure, connect.NewUnaryHandler(ClearModificationsProcedure, s.ClearModifications, opts...))
	mux.Handle(ListModificationsProcedure, connect.NewUnaryHandler(ListModificationsProcedure, s.ListModifications, opts...))
	mux.Handle(PlanProcedure, connect.NewUnaryHandler(PlanProcedure, s.Plan, opts...))
	mux.Handle(CompareProcedure, connect.NewUnaryHandler(CompareProcedure, s.Compare, opts...))
	mux.Handle(SearchRoutesProcedure, connect.NewUnaryHandler(SearchRoutesProcedure, s.SearchRoutes, opts...))
	mux.Handle(SearchStopsProcedure, connect.NewUnaryHandler(SearchStopsProcedure, s.SearchStops, opts...))
	return "/" + ScenarioServiceName + "/", mux
}
