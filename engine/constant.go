package engine

import "math"

const (
	// 轮数上限（一轮对应一次乘车）
	MAX_ROUNDS = 10
	// 未到达
	UNREACHED = math.MaxInt32
)

type labelKind int

const (
	LABEL_NONE labelKind = iota
	LABEL_ACCESS
	LABEL_TRANSIT
	LABEL_TRANSFER
)
