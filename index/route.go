package index

import (
	"fmt"
	"strings"

	"git.fiblab.net/sim/scenario/network"
	"github.com/samber/lo"
)

const (
	// 按routeId精确匹配
	PREFIX_ROUTE_ID = "ROUTE:"
	// 只在公交中匹配
	PREFIX_BUS = "버스_"
	// 只在地铁中匹配
	PREFIX_SUBWAY = "지하철_"
)

// 只需要线路访问能力
type RouteSource interface {
	RouteCount() int
	Route(route int) *network.Route
}

// RouteMatch 线路模式串的匹配结果
type RouteMatch struct {
	Pattern      string
	RouteIndices []int
	totalTrips   int
	firstName    string
}

// 将模式串解析为线路下标，无匹配时返回空列表
//
//	ROUTE:<id>      routeId精确匹配
//	버스_<keyword>   公交类型（3或700-799）中按简称包含匹配
//	지하철_<keyword> 地铁类型（1或400-499）中按简称包含匹配
//	<keyword>       所有线路按简称包含匹配（不区分大小写）
func SearchRoutes(src RouteSource, pattern string) []int {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return []int{}
	}
	var match func(r *network.Route) bool
	switch {
	case strings.HasPrefix(pattern, PREFIX_ROUTE_ID):
		id := strings.TrimPrefix(pattern, PREFIX_ROUTE_ID)
		match = func(r *network.Route) bool { return r.RouteID == id }
	case strings.HasPrefix(pattern, PREFIX_BUS):
		keyword := strings.ToLower(strings.TrimPrefix(pattern, PREFIX_BUS))
		match = func(r *network.Route) bool {
			return r.Type.IsBus() && strings.Contains(strings.ToLower(r.ShortName), keyword)
		}
	case strings.HasPrefix(pattern, PREFIX_SUBWAY):
		keyword := strings.ToLower(strings.TrimPrefix(pattern, PREFIX_SUBWAY))
		match = func(r *network.Route) bool {
			return r.Type.IsSubway() && strings.Contains(strings.ToLower(r.ShortName), keyword)
		}
	default:
		keyword := strings.ToLower(pattern)
		match = func(r *network.Route) bool {
			return strings.Contains(strings.ToLower(r.ShortName), keyword)
		}
	}
	result := []int{}
	for i := 0; i < src.RouteCount(); i++ {
		if match(src.Route(i)) {
			result = append(result, i)
		}
	}
	log.Debugf("route pattern %q matched %d routes", pattern, len(result))
	return result
}

func MatchRoutes(src RouteSource, pattern string) *RouteMatch {
	indices := SearchRoutes(src, pattern)
	m := &RouteMatch{
		Pattern:      pattern,
		RouteIndices: indices,
		totalTrips: lo.SumBy(indices, func(i int) int {
			return src.Route(i).TripCount()
		}),
	}
	if len(indices) > 0 {
		m.firstName = src.Route(indices[0]).ShortName
	}
	return m
}

func (m *RouteMatch) RouteCount() int {
	return len(m.RouteIndices)
}

func (m *RouteMatch) TotalTrips() int {
	return m.totalTrips
}

// 第一条匹配线路的简称，用于预览
func (m *RouteMatch) FirstRouteName() string {
	return m.firstName
}

func (m *RouteMatch) IsEmpty() bool {
	return len(m.RouteIndices) == 0
}

func (m *RouteMatch) String() string {
	if m.IsEmpty() {
		return fmt.Sprintf("'%s': no matching route", m.Pattern)
	}
	return fmt.Sprintf("'%s': %d routes, %d trips (e.g. %s)",
		m.Pattern, m.RouteCount(), m.TotalTrips(), m.FirstRouteName())
}
