package network

import "errors"

// GTFS route_type（基础类型与扩展类型区间）
type RouteType int32

const (
	ROUTE_TYPE_TRAM   RouteType = 0
	ROUTE_TYPE_SUBWAY RouteType = 1
	ROUTE_TYPE_RAIL   RouteType = 2
	ROUTE_TYPE_BUS    RouteType = 3
)

// 最小换乘时间模型的分类
type SlackClass int

const (
	SLACK_RAIL SlackClass = 0
	SLACK_BUS  SlackClass = 1
)

const (
	// 步行成本相对乘车的放大系数
	WALK_RELUCTANCE = 2.0
	// 换乘的额外成本（单位：秒）
	TRANSFER_COST = 300
)

var (
	slacks = map[SlackClass]Slack{
		SLACK_RAIL: {Board: 0, Alight: 0, Transfer: 120},
		SLACK_BUS:  {Board: 0, Alight: 0, Transfer: 60},
	}
	boardCosts = map[SlackClass]int{
		SLACK_RAIL: 60,
		SLACK_BUS:  120,
	}
)

var (
	ErrStopOutOfRange  = errors.New("stop index out of range")
	ErrPatternTooShort = errors.New("route pattern needs at least 2 stops")
	ErrScheduleLength  = errors.New("trip schedule length does not match pattern")
	ErrScheduleOrder   = errors.New("trip schedule times are not monotonic")
	ErrUnknownClass    = errors.New("unknown document class")
)

// Slack 上下车及换乘的最小余量（单位：秒）
type Slack struct {
	Board    int
	Alight   int
	Transfer int
}

func (c SlackClass) Slack() Slack {
	if s, ok := slacks[c]; ok {
		return s
	}
	return slacks[SLACK_BUS]
}

func (c SlackClass) BoardCost() int {
	if v, ok := boardCosts[c]; ok {
		return v
	}
	return boardCosts[SLACK_BUS]
}

func (c SlackClass) String() string {
	if c == SLACK_RAIL {
		return "rail"
	}
	return "bus"
}

func (t RouteType) IsSubway() bool {
	return t == ROUTE_TYPE_SUBWAY || (t >= 400 && t < 500)
}

func (t RouteType) IsRail() bool {
	return t == ROUTE_TYPE_RAIL || (t >= 100 && t < 200)
}

func (t RouteType) IsBus() bool {
	return t == ROUTE_TYPE_BUS || (t >= 700 && t < 800)
}

func (t RouteType) IsTram() bool {
	return t == ROUTE_TYPE_TRAM || (t >= 900 && t < 1000)
}

// 轨道类（有轨电车、地铁、铁路）使用SLACK_RAIL，其余使用SLACK_BUS
func (t RouteType) SlackClass() SlackClass {
	if t.IsTram() || t.IsSubway() || t.IsRail() {
		return SLACK_RAIL
	}
	return SLACK_BUS
}

func (t RouteType) String() string {
	switch t {
	case ROUTE_TYPE_TRAM:
		return "TRAM"
	case ROUTE_TYPE_SUBWAY:
		return "SUBWAY"
	case ROUTE_TYPE_RAIL:
		return "RAIL"
	case ROUTE_TYPE_BUS:
		return "BUS"
	default:
		return "OTHER"
	}
}
