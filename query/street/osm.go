package street

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"git.fiblab.net/sim/scenario/query/street/algo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// Graph 步行道路图，点属性为OSM节点ID，边属性为所在OSM way ID
type Graph = algo.SearchGraph[osm.NodeID, osm.WayID]

// 行人可通行的highway取值
var walkHighways = map[string]bool{
	"footway":        true,
	"pedestrian":     true,
	"path":           true,
	"steps":          true,
	"living_street":  true,
	"residential":    true,
	"service":        true,
	"unclassified":   true,
	"track":          true,
	"corridor":       true,
	"platform":       true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
}

func isWalkable(tags osm.Tags) bool {
	if !walkHighways[tags.Find("highway")] {
		return false
	}
	switch tags.Find("foot") {
	case "no":
		return false
	case "yes", "designated", "permissive":
		return true
	}
	access := tags.Find("access")
	return access != "no" && access != "private"
}

type WalkHeuristics struct{}

func (h WalkHeuristics) HeuristicEuclidean(p1, p2 orb.Point) float64 {
	return geo.DistanceHaversine(p1, p2)
}

// 从OSM数据流构建步行图，步行不区分单行道，每段way生成双向边
func Parse(ctx context.Context, scanner osm.Scanner) (*Graph, error) {
	points := make(map[osm.NodeID]orb.Point)
	ways := make([]*osm.Way, 0)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch o := scanner.Object().(type) {
		case *osm.Node:
			points[o.ID] = o.Point()
		case *osm.Way:
			if len(o.Nodes) >= 2 && isWalkable(o.Tags) {
				ways = append(ways, o)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm: %w", err)
	}

	g := algo.NewSearchGraph[osm.NodeID, osm.WayID](WalkHeuristics{})
	nodeIds := make(map[osm.NodeID]int)
	nodeOf := func(id osm.NodeID) int {
		if n, ok := nodeIds[id]; ok {
			return n
		}
		n := g.InitNode(points[id], id)
		nodeIds[id] = n
		return n
	}
	skipped := 0
	for _, w := range ways {
		for i := 0; i+1 < len(w.Nodes); i++ {
			from, to := w.Nodes[i].ID, w.Nodes[i+1].ID
			_, fromOk := points[from]
			_, toOk := points[to]
			if !fromOk || !toOk {
				skipped++
				continue
			}
			if from == to {
				continue
			}
			length := geo.DistanceHaversine(points[from], points[to])
			u, v := nodeOf(from), nodeOf(to)
			g.InitEdge(u, v, length, w.ID)
			g.InitEdge(v, u, length, w.ID)
		}
	}
	if skipped > 0 {
		log.Warnf("skipped %d way segments with missing node coordinates", skipped)
	}
	log.Infof("walk graph built: %d ways, %d nodes, %d edges", len(ways), g.NodeCount(), g.EdgeCount())
	return g, nil
}

// 读取OSM文件，.pbf按PBF解析，其余按XML解析
func Open(ctx context.Context, path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var scanner osm.Scanner
	if strings.HasSuffix(path, ".pbf") {
		scanner = osmpbf.New(ctx, f, runtime.GOMAXPROCS(0))
	} else {
		scanner = osmxml.New(ctx, f)
	}
	defer scanner.Close()
	g, err := Parse(ctx, scanner)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}
