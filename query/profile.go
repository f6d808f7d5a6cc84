package query

import "fmt"

type ProfileKind int

const (
	// 单一准则：最早到达
	PROFILE_FASTEST ProfileKind = iota
	// 多准则：时间、换乘次数、广义成本的Pareto最优
	PROFILE_PARETO
)

func (k ProfileKind) String() string {
	if k == PROFILE_PARETO {
		return "PARETO"
	}
	return "FASTEST"
}

// RelaxFunction 支配判断时对成本的放宽 v' = v*Ratio + Slack
type RelaxFunction struct {
	Ratio float64
	Slack int
}

var NO_RELAX = RelaxFunction{Ratio: 1, Slack: 0}

func (r RelaxFunction) Relax(cost int) int {
	return int(float64(cost)*r.Ratio) + r.Slack
}

func (r RelaxFunction) IsNone() bool {
	return r.Ratio == 1 && r.Slack == 0
}

func (r RelaxFunction) String() string {
	return fmt.Sprintf("v*%.2f+%d", r.Ratio, r.Slack)
}

// Profile 交给路径搜索引擎的请求参数
type Profile struct {
	Kind                ProfileKind
	EarliestDeparture   int
	SearchWindowSeconds int
	AdditionalTransfers int
	// 仅PROFILE_PARETO使用
	Relax RelaxFunction
}

func FastestProfile(opts Options, departure int) Profile {
	return Profile{
		Kind:                PROFILE_FASTEST,
		EarliestDeparture:   departure,
		SearchWindowSeconds: opts.SearchWindowSeconds,
		AdditionalTransfers: opts.AdditionalTransfers,
		Relax:               NO_RELAX,
	}
}

func ParetoProfile(opts Options, departure int) Profile {
	return Profile{
		Kind:                PROFILE_PARETO,
		EarliestDeparture:   departure,
		SearchWindowSeconds: opts.SearchWindowSeconds,
		AdditionalTransfers: opts.MCAdditionalTransfers,
		Relax:               RelaxFunction{Ratio: opts.RelaxRatio, Slack: opts.RelaxSlack},
	}
}

// 搜索窗口内最晚的出发时刻
func (p Profile) LatestDeparture() int {
	return p.EarliestDeparture + p.SearchWindowSeconds
}
