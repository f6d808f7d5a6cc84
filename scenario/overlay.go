package scenario

import (
	"fmt"
	"strings"

	"git.fiblab.net/sim/scenario/index"
	"git.fiblab.net/sim/scenario/network"
	"github.com/samber/lo"
)

// Overlay 在不修改基础网络的前提下按顺序叠加修改
// 非并发安全：调用方需保证Apply期间没有其他修改操作
type Overlay struct {
	base  *network.Network
	stops *index.StopIndex

	modifications []Modification

	// 为nil表示需要重新生成
	applied *Materialized
}

func NewOverlay(base *network.Network) *Overlay {
	return &Overlay{
		base:          base,
		stops:         index.NewStopIndex(base),
		modifications: make([]Modification, 0),
	}
}

func (o *Overlay) Base() *network.Network {
	return o.base
}

func (o *Overlay) invalidate() {
	o.applied = nil
}

// 调整匹配线路的发车间隔
// 模式串无匹配时返回ErrNoMatch，修改不会加入
func (o *Overlay) AddHeadway(pattern string, factor float64) (string, error) {
	if err := ValidateFactor(factor); err != nil {
		return "", err
	}
	routes := index.SearchRoutes(o.base, pattern)
	if len(routes) == 0 {
		return "", fmt.Errorf("%w: '%s'", ErrNoMatch, pattern)
	}
	r, err := NewRetime(o.base, pattern, factor, routes)
	if err != nil {
		return "", err
	}
	return o.push(HeadwayModification(r)), nil
}

// 停运匹配线路
func (o *Overlay) AddDisable(pattern string) (string, error) {
	routes := index.SearchRoutes(o.base, pattern)
	if len(routes) == 0 {
		return "", fmt.Errorf("%w: '%s'", ErrNoMatch, pattern)
	}
	return o.push(DisableModification(NewDisable(o.base, pattern, routes))), nil
}

func (o *Overlay) AddRoute(a *AddRoute) (string, error) {
	if a == nil {
		return "", ErrEmptyModification
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	for _, stop := range a.Stops {
		if !o.base.HasStop(stop) {
			return "", fmt.Errorf("route %s stop %d: %w", a.ShortName, stop, ErrIndexOutOfRange)
		}
	}
	return o.push(AddRouteModification(a)), nil
}

// 加入任意已构造的修改，引用的线路与站点下标需在基础网络范围内
func (o *Overlay) AddModification(m Modification) (string, error) {
	if m.empty() {
		return "", ErrEmptyModification
	}
	switch m.Kind() {
	case KIND_HEADWAY:
		if err := o.checkRoutes(m.retime.RouteIndices); err != nil {
			return "", err
		}
		return o.push(m), nil
	case KIND_DISABLE_ROUTE:
		if err := o.checkRoutes(m.disable.RouteIndices); err != nil {
			return "", err
		}
		return o.push(m), nil
	case KIND_ADD_ROUTE:
		return o.AddRoute(m.add)
	default:
		return "", ErrEmptyModification
	}
}

func (o *Overlay) checkRoutes(routes []int) error {
	if len(routes) == 0 {
		return ErrNoMatch
	}
	for _, r := range routes {
		if r < 0 || r >= o.base.RouteCount() {
			return fmt.Errorf("route %d: %w", r, ErrIndexOutOfRange)
		}
	}
	return nil
}

// 保存修改的深拷贝，调用方之后对原对象的改动不影响场景
func (o *Overlay) push(m Modification) string {
	m = m.clone()
	o.modifications = append(o.modifications, m)
	o.invalidate()
	log.Infof("modification added: %v", m)
	return m.Description()
}

// 按下标（从0开始）删除修改，其余修改保持原有顺序
func (o *Overlay) RemoveModification(i int) (Modification, error) {
	if i < 0 || i >= len(o.modifications) {
		return Modification{}, fmt.Errorf("modification %d of %d: %w", i, len(o.modifications), ErrIndexOutOfRange)
	}
	m := o.modifications[i]
	o.modifications = append(o.modifications[:i:i], o.modifications[i+1:]...)
	o.invalidate()
	log.Infof("modification removed: %v", m)
	return m, nil
}

func (o *Overlay) Clear() {
	o.modifications = o.modifications[:0:0]
	o.invalidate()
	log.Info("modifications cleared")
}

func (o *Overlay) Modifications() []Modification {
	return append([]Modification(nil), o.modifications...)
}

func (o *Overlay) Len() int {
	return len(o.modifications)
}

// 生成叠加后的网络，修改列表未变化时直接返回上次结果
//
// 模式下标从基础网络最大下标之后顺延分配：
// 每条被调整班次的线路和每条新增线路各占一个新下标，停运线路不占下标
func (o *Overlay) Apply() *Materialized {
	if o.applied != nil {
		return o.applied
	}
	disabled := make(map[int]struct{})
	replaced := make(map[int]*network.Route)
	added := make([]*network.Route, 0)
	next := o.base.MaxPatternIndex() + 1

	for _, m := range o.modifications {
		switch m.Kind() {
		case KIND_DISABLE_ROUTE:
			for _, r := range m.disable.RouteIndices {
				disabled[r] = struct{}{}
			}
		case KIND_HEADWAY:
			for _, r := range m.retime.RouteIndices {
				replaced[r] = m.retime.Apply(o.base.Route(r), next)
				next++
			}
		case KIND_ADD_ROUTE:
			added = append(added, m.add.Generate(next))
			next++
		}
	}

	routes := make([]*network.Route, 0, o.base.RouteCount()+len(added))
	modified := 0
	for i, route := range o.base.Routes() {
		if _, ok := disabled[i]; ok {
			continue
		}
		if r, ok := replaced[i]; ok {
			routes = append(routes, r)
			modified++
			continue
		}
		routes = append(routes, route)
	}
	routes = append(routes, added...)
	checkPatternIndices(routes, o.base.StopCount())

	o.applied = &Materialized{
		Network:  o.base.WithRoutes(routes),
		base:     o.base,
		disabled: len(disabled),
		modified: modified,
		added:    len(added),
	}
	log.Debugf("scenario applied with %d modifications: %v", len(o.modifications), o.applied)
	return o.applied
}

// 模式下标冲突或站点越界说明生成逻辑有误
func checkPatternIndices(routes []*network.Route, stopCount int) {
	seen := make(map[int]string, len(routes))
	for _, route := range routes {
		if prev, ok := seen[route.Pattern.Index]; ok {
			log.Panicf("pattern index %d used by both %s and %s", route.Pattern.Index, prev, route.RouteID)
		}
		seen[route.Pattern.Index] = route.RouteID
		if err := network.ValidateRoute(route, stopCount); err != nil {
			log.Panicf("invalid materialized route: %v", err)
		}
	}
}

func (o *Overlay) Summary() string {
	if len(o.modifications) == 0 {
		return "no modifications"
	}
	sb := strings.Builder{}
	sb.WriteString("=== current scenario ===\n")
	for i, m := range o.modifications {
		fmt.Fprintf(&sb, "%d. [%v] %s\n", i+1, m.Kind(), m.Description())
	}
	return sb.String()
}

func (o *Overlay) String() string {
	return fmt.Sprintf("Overlay[modifications=%d, base=%v]", len(o.modifications), o.base)
}

// 查询辅助

func (o *Overlay) SearchRoutes(pattern string) *index.RouteMatch {
	return index.MatchRoutes(o.base, pattern)
}

func (o *Overlay) SearchStops(keyword string, maxResults int) []index.StopInfo {
	return o.stops.Search(keyword, maxResults)
}

func (o *Overlay) SearchStopsNearby(lat, lon, radius float64, maxResults int) []index.StopInfo {
	return o.stops.Nearby(lat, lon, radius, maxResults)
}

func (o *Overlay) Stops() *index.StopIndex {
	return o.stops
}

// 所有修改影响的线路数之和
func (o *Overlay) AffectedRouteCount() int {
	return lo.SumBy(o.modifications, func(m Modification) int { return m.AffectedRouteCount() })
}
