package algo_test

import (
	"container/heap"
	"testing"

	"git.fiblab.net/sim/scenario/query/street/algo"
	"github.com/stretchr/testify/assert"
)

func TestPriorityQueue(t *testing.T) {
	// 步行距离（米）作为优先级
	distances := map[int]float64{7: 412.5, 3: 88.1, 9: 1203.0, 5: 88.2, 1: 640.0}
	pq := make(algo.PriorityQueue, 0)
	for node, d := range distances {
		heap.Push(&pq, &algo.Item{Value: node, Priority: d})
	}
	assert.Equal(t, len(distances), pq.Len())

	order := make([]int, 0)
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*algo.Item)
		assert.Equal(t, -1, item.Index)
		assert.Equal(t, distances[item.Value], item.Priority)
		order = append(order, item.Value)
	}
	assert.Equal(t, []int{3, 5, 7, 1, 9}, order)
}

func TestPriorityQueueChangePriority(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	heap.Push(&pq, &algo.Item{Value: 4, Priority: 4})
	heap.Push(&pq, &algo.Item{Value: 2, Priority: 2})
	heap.Push(&pq, &algo.Item{Value: 1, Priority: 1})
	heap.Push(&pq, &algo.Item{Value: 3, Priority: 3})

	// 将Value==3的优先级改为0
	for _, item := range pq {
		if item.Value == 3 {
			item.Priority = 0
			heap.Fix(&pq, item.Index)
		}
	}

	values := make([]int, 0)
	for pq.Len() > 0 {
		values = append(values, heap.Pop(&pq).(*algo.Item).Value)
	}
	assert.Equal(t, []int{3, 1, 2, 4}, values)
}
