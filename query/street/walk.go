package street

import (
	"context"
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/sim/scenario/index"
	"git.fiblab.net/sim/scenario/query"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/tidwall/rtree"
)

const (
	// 坐标吸附到最近道路节点的最大距离（单位：米）
	MAX_SNAP_METERS = 500.0
)

type snappedStop struct {
	stop   int
	meters float64
}

// WalkNetwork 沿步行道路计算坐标到站点的距离，实现query.StreetNetwork
// 距离 = 起点吸附距离 + 道路最短路 + 站点吸附距离
type WalkNetwork struct {
	graph *Graph
	tree  rtree.RTreeG[int]
	// 道路节点 -> 吸附到该节点的站点
	nodeStops map[int][]snappedStop
	snapped   int
}

func NewWalkNetwork(graph *Graph, stops index.StopSource) *WalkNetwork {
	w := &WalkNetwork{
		graph:     graph,
		nodeStops: make(map[int][]snappedStop),
	}
	for n := 0; n < graph.NodeCount(); n++ {
		p := [2]float64(graph.NodePoint(n))
		w.tree.Insert(p, p, n)
	}
	for stop := 0; stop < stops.StopCount(); stop++ {
		n, d, ok := w.snap(stops.StopLat(stop), stops.StopLon(stop))
		if !ok {
			log.Debugf("stop %d %s is too far from any street", stop, stops.StopName(stop))
			continue
		}
		w.nodeStops[n] = append(w.nodeStops[n], snappedStop{stop: stop, meters: d})
		w.snapped++
	}
	log.Infof("%d of %d stops snapped to the walk graph", w.snapped, stops.StopCount())
	return w
}

// 最近的道路节点
func (w *WalkNetwork) snap(lat, lon float64) (int, float64, bool) {
	p := orb.Point{lon, lat}
	best, bestDist := -1, math.Inf(1)
	for _, box := range index.BoundingBoxes(lat, lon, MAX_SNAP_METERS) {
		w.tree.Search(box.Min, box.Max, func(_, _ [2]float64, n int) bool {
			d := geo.DistanceHaversine(p, w.graph.NodePoint(n))
			if d < bestDist || (d == bestDist && n < best) {
				best, bestDist = n, d
			}
			return true
		})
	}
	if best < 0 || bestDist > MAX_SNAP_METERS {
		return -1, 0, false
	}
	return best, bestDist, true
}

func (w *WalkNetwork) StopsWithin(ctx context.Context, lat, lon, maxMeters float64) ([]query.StopDistance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := make([]query.StopDistance, 0)
	start, snapMeters, ok := w.snap(lat, lon)
	if !ok {
		log.Debugf("(%f, %f) is too far from any street", lat, lon)
		return result, nil
	}
	for n, d := range w.graph.Within(start, maxMeters-snapMeters) {
		for _, s := range w.nodeStops[n] {
			if total := snapMeters + d + s.meters; total <= maxMeters {
				result = append(result, query.StopDistance{Stop: s.stop, Meters: total})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Meters != result[j].Meters {
			return result[i].Meters < result[j].Meters
		}
		return result[i].Stop < result[j].Stop
	})
	return result, nil
}

// 两坐标间的步行距离，任一端无法吸附或不连通时返回false
func (w *WalkNetwork) Distance(fromLat, fromLon, toLat, toLon float64) (float64, bool) {
	from, d1, ok := w.snap(fromLat, fromLon)
	if !ok {
		return 0, false
	}
	to, d2, ok := w.snap(toLat, toLon)
	if !ok {
		return 0, false
	}
	path, cost := w.graph.ShortestPath(from, to)
	if path == nil {
		return 0, false
	}
	return d1 + cost + d2, true
}

func (w *WalkNetwork) String() string {
	return fmt.Sprintf("WalkNetwork[nodes=%d, edges=%d, stops=%d]",
		w.graph.NodeCount(), w.graph.EdgeCount(), w.snapped)
}
