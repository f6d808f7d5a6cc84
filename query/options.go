package query

import "errors"

const (
	DEFAULT_MAX_WALK_METERS         = 800.0
	DEFAULT_WALK_SPEED              = 1.2 // m/s
	DEFAULT_MAX_ACCESS_STOPS        = 30
	DEFAULT_MAX_EGRESS_STOPS        = 30
	DEFAULT_SEARCH_WINDOW_SECONDS   = 1800
	DEFAULT_ADDITIONAL_TRANSFERS    = 3
	DEFAULT_MC_ADDITIONAL_TRANSFERS = 3
	DEFAULT_RELAX_RATIO             = 1.0
	DEFAULT_RELAX_SLACK             = 0
	DEFAULT_MAX_RESULTS             = 5
)

var (
	ErrNoAccessStop = errors.New("no reachable stop near origin")
	ErrNoEgressStop = errors.New("no reachable stop near destination")
	// 路径搜索引擎未找到任何连接
	ErrNoConnection = errors.New("no connection found")
	ErrInvalidStop  = errors.New("stop index out of range")
)

// Options 查询编排参数
type Options struct {
	MaxWalkMeters         float64
	WalkSpeed             float64
	MaxAccessStops        int
	MaxEgressStops        int
	SearchWindowSeconds   int
	AdditionalTransfers   int
	MCAdditionalTransfers int
	RelaxRatio            float64
	RelaxSlack            int
	MaxResults            int
}

func DefaultOptions() Options {
	return Options{
		MaxWalkMeters:         DEFAULT_MAX_WALK_METERS,
		WalkSpeed:             DEFAULT_WALK_SPEED,
		MaxAccessStops:        DEFAULT_MAX_ACCESS_STOPS,
		MaxEgressStops:        DEFAULT_MAX_EGRESS_STOPS,
		SearchWindowSeconds:   DEFAULT_SEARCH_WINDOW_SECONDS,
		AdditionalTransfers:   DEFAULT_ADDITIONAL_TRANSFERS,
		MCAdditionalTransfers: DEFAULT_MC_ADDITIONAL_TRANSFERS,
		RelaxRatio:            DEFAULT_RELAX_RATIO,
		RelaxSlack:            DEFAULT_RELAX_SLACK,
		MaxResults:            DEFAULT_MAX_RESULTS,
	}
}
