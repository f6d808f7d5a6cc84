package scenario

import "errors"

const (
	// 新增线路相邻站点缺省运行时间（单位：秒）
	DEFAULT_TRAVEL_SECONDS = 300
	// 新增线路中间站停站时间（单位：秒）
	DEFAULT_DWELL_SECONDS = 30

	// 新增线路缺省首末班与发车间隔
	DEFAULT_FIRST_DEPARTURE = 6 * 3600
	DEFAULT_LAST_DEPARTURE  = 23 * 3600
	DEFAULT_HEADWAY         = 10 * 60

	// 插值生成的班次编号前缀
	SCENARIO_TRIP_PREFIX = "SCENARIO_"
	// 新增线路班次编号前缀
	NEW_TRIP_PREFIX = "NEW_"
)

var (
	ErrNoMatch           = errors.New("no route matches pattern")
	ErrInvalidFactor     = errors.New("headway factor must be a positive number")
	ErrTooFewStops       = errors.New("a route needs at least 2 stops")
	ErrInvalidHeadway    = errors.New("invalid headway or departure window")
	ErrInvalidTravel     = errors.New("travel time must not be negative")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrEmptyModification = errors.New("empty modification")
)
