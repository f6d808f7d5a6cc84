package network

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// TransitView 路径搜索引擎所需的只读视图，基础网络与场景网络都实现此接口
type TransitView interface {
	StopCount() int
	StopName(stop int) string
	StopLat(stop int) float64
	StopLon(stop int) float64

	RouteCount() int
	Route(route int) *Route
	RoutesByStop(stop int) []int
	// 经过给定站点集合的所有线路下标（升序去重）
	RouteIndexIterator(stops []int) []int

	TransfersFrom(stop int) []Transfer
	TransfersTo(stop int) []Transfer

	RouteSlack(route int) Slack
	RouteBoardCost(route int) int

	ServiceStartTime() int
	ServiceEndTime() int
}

// Network 不可变的公共交通网络
type Network struct {
	stopNames []string
	stopLats  []float64
	stopLons  []float64

	routes       []*Route
	routesByStop [][]int

	transfersFrom [][]Transfer
	transfersTo   [][]Transfer

	serviceStart int
	serviceEnd   int
}

// 与n共享站点与换乘数据，仅替换线路数组并重建站点->线路索引
func (n *Network) WithRoutes(routes []*Route) *Network {
	return &Network{
		stopNames:     n.stopNames,
		stopLats:      n.stopLats,
		stopLons:      n.stopLons,
		routes:        routes,
		routesByStop:  BuildRoutesByStop(len(n.stopNames), routes),
		transfersFrom: n.transfersFrom,
		transfersTo:   n.transfersTo,
		serviceStart:  n.serviceStart,
		serviceEnd:    n.serviceEnd,
	}
}

// 扫描每条线路的站点序列一次，得到站点->线路下标
func BuildRoutesByStop(stopCount int, routes []*Route) [][]int {
	routesByStop := make([][]int, stopCount)
	for routeIndex, route := range routes {
		for _, stop := range route.Pattern.StopIndexes {
			if stop < 0 || stop >= stopCount {
				log.Panicf("route %s references stop %d out of range [0,%d)", route.RouteID, stop, stopCount)
			}
			// 环线同一站出现多次时只记录一次
			if l := routesByStop[stop]; len(l) > 0 && l[len(l)-1] == routeIndex {
				continue
			}
			routesByStop[stop] = append(routesByStop[stop], routeIndex)
		}
	}
	return routesByStop
}

// getter

func (n *Network) StopCount() int {
	return len(n.stopNames)
}

func (n *Network) StopName(stop int) string {
	return n.stopNames[stop]
}

func (n *Network) StopLat(stop int) float64 {
	return n.stopLats[stop]
}

func (n *Network) StopLon(stop int) float64 {
	return n.stopLons[stop]
}

func (n *Network) Stop(stop int) Stop {
	return Stop{Index: stop, Name: n.stopNames[stop], Lat: n.stopLats[stop], Lon: n.stopLons[stop]}
}

func (n *Network) HasStop(stop int) bool {
	return stop >= 0 && stop < len(n.stopNames)
}

func (n *Network) RouteCount() int {
	return len(n.routes)
}

func (n *Network) Route(route int) *Route {
	if route < 0 || route >= len(n.routes) {
		return nil
	}
	return n.routes[route]
}

func (n *Network) Routes() []*Route {
	return n.routes
}

func (n *Network) RoutesByStop(stop int) []int {
	if stop < 0 || stop >= len(n.routesByStop) {
		return nil
	}
	return n.routesByStop[stop]
}

func (n *Network) RouteIndexIterator(stops []int) []int {
	active := make(map[int]struct{})
	for _, stop := range stops {
		for _, r := range n.RoutesByStop(stop) {
			active[r] = struct{}{}
		}
	}
	routes := lo.Keys(active)
	sort.Ints(routes)
	return routes
}

func (n *Network) TransfersFrom(stop int) []Transfer {
	if stop < 0 || stop >= len(n.transfersFrom) {
		return nil
	}
	return n.transfersFrom[stop]
}

func (n *Network) TransfersTo(stop int) []Transfer {
	if stop < 0 || stop >= len(n.transfersTo) {
		return nil
	}
	return n.transfersTo[stop]
}

func (n *Network) RouteSlack(route int) Slack {
	return n.routes[route].Pattern.SlackIndex.Slack()
}

func (n *Network) RouteBoardCost(route int) int {
	return n.routes[route].Pattern.SlackIndex.BoardCost()
}

func (n *Network) ServiceStartTime() int {
	return n.serviceStart
}

func (n *Network) ServiceEndTime() int {
	return n.serviceEnd
}

func (n *Network) PatternCount() int {
	return len(n.routes)
}

func (n *Network) TotalTripCount() int {
	return lo.SumBy(n.routes, func(r *Route) int { return r.TripCount() })
}

// 最大的模式下标，新模式从其后顺延分配
func (n *Network) MaxPatternIndex() int {
	if len(n.routes) == 0 {
		return -1
	}
	return lo.MaxBy(n.routes, func(a, b *Route) bool {
		return a.Pattern.Index > b.Pattern.Index
	}).Pattern.Index
}

func (n *Network) String() string {
	return fmt.Sprintf("Network[stops=%d, routes=%d, trips=%d]",
		n.StopCount(), n.RouteCount(), n.TotalTripCount())
}
