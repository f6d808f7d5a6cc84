package scenario

import (
	"fmt"

	"git.fiblab.net/sim/scenario/network"
)

// Materialized 叠加全部修改后的网络
// 站点与换乘与基础网络共享，线路数组与站点->线路索引重新生成
type Materialized struct {
	*network.Network
	base *network.Network

	disabled int
	modified int
	added    int
}

func (m *Materialized) Base() *network.Network {
	return m.base
}

func (m *Materialized) DisabledRouteCount() int {
	return m.disabled
}

func (m *Materialized) ModifiedRouteCount() int {
	return m.modified
}

func (m *Materialized) AddedRouteCount() int {
	return m.added
}

func (m *Materialized) String() string {
	return fmt.Sprintf("Scenario[stops=%d, routes=%d (base %d, disabled %d, modified %d, added %d), trips=%d]",
		m.StopCount(), m.RouteCount(), m.base.RouteCount(),
		m.disabled, m.modified, m.added, m.TotalTripCount())
}
