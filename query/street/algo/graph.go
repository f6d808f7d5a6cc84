package algo

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "algo")

type node[T any] struct {
	p    orb.Point
	attr T
}

type edge[T any] struct {
	v    float64
	attr T
}

// SearchGraph 带点属性与边属性的有向图
type SearchGraph[NT any, ET any] struct {
	// 邻接表，in node -> out node -> edge
	// 建图完成后拓扑不变，但边权可被修改（如临时封闭道路），因此需要读写锁
	edges []map[int]edge[ET]
	nodes []node[NT]
	// A Star距离预估函数
	h IHeuristics

	mu *xsync.RBMutex
}

type IHeuristics interface {
	HeuristicEuclidean(orb.Point, orb.Point) float64
}

func NewSearchGraph[NT any, ET any](h IHeuristics) *SearchGraph[NT, ET] {
	return &SearchGraph[NT, ET]{
		edges: make([]map[int]edge[ET], 0),
		nodes: make([]node[NT], 0),
		h:     h,
		mu:    xsync.NewRBMutex(),
	}
}

func (g *SearchGraph[NT, ET]) InitNode(p orb.Point, attr NT) int {
	g.nodes = append(g.nodes, node[NT]{p: p, attr: attr})
	g.edges = append(g.edges, make(map[int]edge[ET]))
	return len(g.nodes) - 1
}

func (g *SearchGraph[NT, ET]) InitEdge(from, to int, length float64, attr ET) {
	if from >= len(g.edges) || to >= len(g.edges) {
		log.Panicf("edge %d -> %d: node not exists (%d nodes)", from, to, len(g.edges))
	}
	if length < 0 {
		log.Panicf("edge %d -> %d: negative length %f", from, to, length)
	}
	g.edges[from][to] = edge[ET]{v: length, attr: attr}
}

func (g *SearchGraph[NT, ET]) NodeCount() int {
	return len(g.nodes)
}

func (g *SearchGraph[NT, ET]) EdgeCount() int {
	return lo.SumBy(g.edges, func(m map[int]edge[ET]) int { return len(m) })
}

func (g *SearchGraph[NT, ET]) NodePoint(n int) orb.Point {
	return g.nodes[n].p
}

func (g *SearchGraph[NT, ET]) NodeAttr(n int) NT {
	return g.nodes[n].attr
}

func (g *SearchGraph[NT, ET]) GetEdgeLength(from, to int) (float64, bool) {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	e, ok := g.edges[from][to]
	return e.v, ok
}

func (g *SearchGraph[NT, ET]) SetEdgeLength(from, to int, length float64) error {
	if from < 0 || from >= len(g.edges) {
		return fmt.Errorf("node %d: %w", from, ErrNodeOutOfRange)
	}
	if length < 0 {
		return ErrNegativeLength
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.edges[from][to]
	if !ok {
		return fmt.Errorf("%d -> %d: %w", from, to, ErrNoEdge)
	}
	e.v = length
	g.edges[from][to] = e
	return nil
}

type PathItem[NT any, ET any] struct {
	NodeAttr NT
	EdgeAttr ET
}

func (g *SearchGraph[NT, ET]) reconstructPath(cameFrom map[int]int, curNode int) []PathItem[NT, ET] {
	pathBeforeReversed := []PathItem[NT, ET]{{NodeAttr: g.nodes[curNode].attr}}
	for {
		from, ok := cameFrom[curNode]
		if !ok {
			break
		}
		attr := g.edges[from][curNode].attr
		curNode = from
		pathBeforeReversed = append(pathBeforeReversed, PathItem[NT, ET]{
			NodeAttr: g.nodes[curNode].attr,
			EdgeAttr: attr,
		})
	}
	return lo.Reverse(pathBeforeReversed)
}

// A Star算法求最短路，不可达时返回nil与+Inf
// 路径中第i项的EdgeAttr为第i个点到第i+1个点的边
func (g *SearchGraph[NT, ET]) ShortestPath(start, end int) ([]PathItem[NT, ET], float64) {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	if start == end {
		return []PathItem[NT, ET]{{NodeAttr: g.nodes[start].attr}}, 0
	}
	openSet := make(PriorityQueue, 1)
	openSetMap := make(map[int]*Item, 1) // openSet value -> openSet item
	closed := make(map[int]bool)
	cameFrom := make(map[int]int, 0)
	gScore := map[int]float64{start: 0}
	openSet[0] = &Item{Value: start, Priority: g.h.HeuristicEuclidean(g.nodes[start].p, g.nodes[end].p), Index: 0}
	openSetMap[start] = openSet[0]
	heap.Init(&openSet)
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item).Value
		delete(openSetMap, cur)
		if cur == end {
			return g.reconstructPath(cameFrom, cur), gScore[cur]
		}
		closed[cur] = true
		for neighbor, e := range g.edges[cur] {
			if closed[neighbor] {
				continue
			}
			tentative := gScore[cur] + e.v
			if s, ok := gScore[neighbor]; ok && tentative >= s {
				continue
			}
			cameFrom[neighbor] = cur
			gScore[neighbor] = tentative
			fScore := tentative + g.h.HeuristicEuclidean(g.nodes[neighbor].p, g.nodes[end].p)
			if item, ok := openSetMap[neighbor]; ok {
				// 已在堆中的节点，修改其优先级
				item.Priority = fScore
				heap.Fix(&openSet, item.Index)
			} else {
				item := &Item{Value: neighbor, Priority: fScore}
				heap.Push(&openSet, item)
				openSetMap[neighbor] = item
			}
		}
	}
	return nil, math.Inf(0)
}

// Dijkstra算法求start出发limit以内可达的所有点及其距离（含start本身）
func (g *SearchGraph[NT, ET]) Within(start int, limit float64) map[int]float64 {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	if limit < 0 {
		return map[int]float64{}
	}
	dist := map[int]float64{start: 0}
	openSet := PriorityQueue{{Value: start, Priority: 0, Index: 0}}
	openSetMap := map[int]*Item{start: openSet[0]}
	done := make(map[int]bool)
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item)
		delete(openSetMap, cur.Value)
		done[cur.Value] = true
		for neighbor, e := range g.edges[cur.Value] {
			if done[neighbor] {
				continue
			}
			d := cur.Priority + e.v
			if d > limit {
				continue
			}
			if old, ok := dist[neighbor]; ok && d >= old {
				continue
			}
			dist[neighbor] = d
			if item, ok := openSetMap[neighbor]; ok {
				item.Priority = d
				heap.Fix(&openSet, item.Index)
			} else {
				item := &Item{Value: neighbor, Priority: d}
				heap.Push(&openSet, item)
				openSetMap[neighbor] = item
			}
		}
	}
	return dist
}
