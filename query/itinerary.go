package query

import (
	"context"
	"fmt"
	"strings"

	"git.fiblab.net/sim/scenario/network"
	"github.com/samber/lo"
)

type LegKind int

const (
	LEG_ACCESS LegKind = iota
	LEG_TRANSIT
	LEG_TRANSFER
	LEG_EGRESS
)

func (k LegKind) String() string {
	switch k {
	case LEG_ACCESS:
		return "ACCESS"
	case LEG_TRANSIT:
		return "TRANSIT"
	case LEG_TRANSFER:
		return "TRANSFER"
	default:
		return "EGRESS"
	}
}

// Leg 行程中的一段
// LEG_ACCESS 的FromStop为-1，LEG_EGRESS 的ToStop为-1；非LEG_TRANSIT 的Route为-1
type Leg struct {
	Kind      LegKind
	FromStop  int
	ToStop    int
	StartTime int
	EndTime   int
	Route     int
	RouteName string
	TripID    string
}

func (l Leg) Duration() int {
	return l.EndTime - l.StartTime
}

// Itinerary 引擎返回的一条完整行程
type Itinerary struct {
	StartTime       int
	EndTime         int
	Transfers       int
	GeneralizedCost int
	Legs            []Leg
}

func (it *Itinerary) Duration() int {
	return it.EndTime - it.StartTime
}

func (it *Itinerary) TransitLegs() []Leg {
	return lo.Filter(it.Legs, func(l Leg, _ int) bool { return l.Kind == LEG_TRANSIT })
}

func (it *Itinerary) RouteNames() []string {
	return lo.Map(it.TransitLegs(), func(l Leg, _ int) string { return l.RouteName })
}

func (it *Itinerary) String() string {
	return fmt.Sprintf("%s depart, %d min, %d transfers: %s",
		network.FormatClock(it.StartTime), it.Duration()/60, it.Transfers,
		strings.Join(it.RouteNames(), " -> "))
}

// Request 路径搜索请求
type Request struct {
	Profile Profile
	Access  []AccessEgress
	Egress  []AccessEgress
}

// Engine 外部路径搜索引擎
// 没有找到连接时返回ErrNoConnection（或空结果）；其他错误原样向上传递
type Engine interface {
	Route(ctx context.Context, view network.TransitView, req *Request) ([]*Itinerary, error)
}
