package algo

import "errors"

var (
	// 错误：节点下标越界
	ErrNodeOutOfRange = errors.New("node index out of range")
	// 错误：边权为负
	ErrNegativeLength = errors.New("edge length should not be negative")
	// 错误：边不存在
	ErrNoEdge = errors.New("edge not exists")
)
