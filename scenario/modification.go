package scenario

import (
	"fmt"

	"git.fiblab.net/sim/scenario/network"
)

type Kind int

const (
	KIND_NONE Kind = iota
	KIND_HEADWAY
	KIND_DISABLE_ROUTE
	KIND_ADD_ROUTE
)

func (k Kind) String() string {
	switch k {
	case KIND_HEADWAY:
		return "HEADWAY"
	case KIND_DISABLE_ROUTE:
		return "DISABLE_ROUTE"
	case KIND_ADD_ROUTE:
		return "ADD_ROUTE"
	default:
		return "NONE"
	}
}

// 对基础网络的只读线路访问
type RouteSource interface {
	RouteCount() int
	Route(route int) *network.Route
}

// Modification 对网络的一次声明式修改
// 按Kind区分三种变体，恰有一个变体字段非空；构造后不可变
type Modification struct {
	kind    Kind
	retime  *Retime
	disable *Disable
	add     *AddRoute
}

func HeadwayModification(r *Retime) Modification {
	return Modification{kind: KIND_HEADWAY, retime: r}
}

func DisableModification(d *Disable) Modification {
	return Modification{kind: KIND_DISABLE_ROUTE, disable: d}
}

func AddRouteModification(a *AddRoute) Modification {
	return Modification{kind: KIND_ADD_ROUTE, add: a}
}

func (m Modification) Kind() Kind {
	return m.kind
}

// 以下三个访问器返回副本，修改副本不影响已加入场景的修改

// 仅当Kind为KIND_HEADWAY时非空
func (m Modification) Retime() *Retime {
	if m.retime == nil {
		return nil
	}
	return m.retime.clone()
}

// 仅当Kind为KIND_DISABLE_ROUTE时非空
func (m Modification) Disable() *Disable {
	if m.disable == nil {
		return nil
	}
	return m.disable.clone()
}

// 仅当Kind为KIND_ADD_ROUTE时非空
func (m Modification) Add() *AddRoute {
	if m.add == nil {
		return nil
	}
	return m.add.clone()
}

// 变体字段为空的修改视为空修改
func (m Modification) empty() bool {
	switch m.kind {
	case KIND_HEADWAY:
		return m.retime == nil
	case KIND_DISABLE_ROUTE:
		return m.disable == nil
	case KIND_ADD_ROUTE:
		return m.add == nil
	default:
		return true
	}
}

// 深拷贝变体内容，场景只持有自己的副本
func (m Modification) clone() Modification {
	return Modification{
		kind:    m.kind,
		retime:  m.Retime(),
		disable: m.Disable(),
		add:     m.Add(),
	}
}

func (m Modification) Description() string {
	switch m.kind {
	case KIND_HEADWAY:
		return m.retime.Description()
	case KIND_DISABLE_ROUTE:
		return m.disable.Description()
	case KIND_ADD_ROUTE:
		return m.add.Description()
	default:
		return ""
	}
}

func (m Modification) AffectedRouteCount() int {
	switch m.kind {
	case KIND_HEADWAY:
		return len(m.retime.RouteIndices)
	case KIND_DISABLE_ROUTE:
		return len(m.disable.RouteIndices)
	case KIND_ADD_ROUTE:
		return 1
	default:
		return 0
	}
}

func (m Modification) AffectedTripCount() int {
	switch m.kind {
	case KIND_HEADWAY:
		return m.retime.originalTrips
	case KIND_DISABLE_ROUTE:
		return m.disable.tripCount
	case KIND_ADD_ROUTE:
		return m.add.TripCount()
	default:
		return 0
	}
}

func (m Modification) String() string {
	return fmt.Sprintf("[%v] %s", m.kind, m.Description())
}

// Disable 停运匹配到的基础线路，不生成新线路
type Disable struct {
	Pattern      string
	RouteIndices []int
	tripCount    int
}

func NewDisable(src RouteSource, pattern string, routeIndices []int) *Disable {
	d := &Disable{
		Pattern:      pattern,
		RouteIndices: append([]int(nil), routeIndices...),
	}
	for _, i := range routeIndices {
		d.tripCount += src.Route(i).TripCount()
	}
	return d
}

func (d *Disable) clone() *Disable {
	c := *d
	c.RouteIndices = append([]int(nil), d.RouteIndices...)
	return &c
}

func (d *Disable) Description() string {
	return fmt.Sprintf("%s disabled (%d routes, %d trips)", d.Pattern, len(d.RouteIndices), d.tripCount)
}
