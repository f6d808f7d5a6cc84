package index

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/rtree"
)

type MatchType int

const (
	MATCH_EXACT MatchType = iota
	MATCH_STARTS_WITH
	MATCH_CONTAINS
	MATCH_NEARBY
)

func (t MatchType) String() string {
	switch t {
	case MATCH_EXACT:
		return "EXACT"
	case MATCH_STARTS_WITH:
		return "STARTS_WITH"
	case MATCH_CONTAINS:
		return "CONTAINS"
	default:
		return "NEARBY"
	}
}

// 只需要站点访问能力
type StopSource interface {
	StopCount() int
	StopName(stop int) string
	StopLat(stop int) float64
	StopLon(stop int) float64
}

type StopInfo struct {
	StopIndex int
	Name      string
	Lat       float64
	Lon       float64
	Match     MatchType
	Distance  float64 // 仅MATCH_NEARBY时有效（单位：米）
}

func (s StopInfo) String() string {
	if s.Match == MATCH_NEARBY {
		return fmt.Sprintf("[%d] %s (%.1fm)", s.StopIndex, s.Name, s.Distance)
	}
	return fmt.Sprintf("[%d] %s", s.StopIndex, s.Name)
}

// StopIndex 站点名称与坐标索引
// 站点在所有场景间共享，索引可以对基础网络建立一次后复用
type StopIndex struct {
	src        StopSource
	lowerNames []string
	tree       rtree.RTreeG[int]
}

func NewStopIndex(src StopSource) *StopIndex {
	idx := &StopIndex{
		src:        src,
		lowerNames: make([]string, src.StopCount()),
	}
	for i := 0; i < src.StopCount(); i++ {
		idx.lowerNames[i] = strings.ToLower(src.StopName(i))
		p := [2]float64{src.StopLon(i), src.StopLat(i)}
		idx.tree.Insert(p, p, i)
	}
	log.Infof("stop index built with %d stops", src.StopCount())
	return idx
}

func (idx *StopIndex) info(stop int, match MatchType, distance float64) StopInfo {
	return StopInfo{
		StopIndex: stop,
		Name:      idx.src.StopName(stop),
		Lat:       idx.src.StopLat(stop),
		Lon:       idx.src.StopLon(stop),
		Match:     match,
		Distance:  distance,
	}
}

// 按名称分级匹配：完全相同、前缀、包含（均不区分大小写）
// 结果按匹配级别、名称排序，按站点下标去重，最多返回maxResults个
func (idx *StopIndex) Search(keyword string, maxResults int) []StopInfo {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" || maxResults <= 0 {
		return []StopInfo{}
	}
	tiers := []struct {
		match MatchType
		test  func(name string) bool
	}{
		{MATCH_EXACT, func(name string) bool { return name == keyword }},
		{MATCH_STARTS_WITH, func(name string) bool { return strings.HasPrefix(name, keyword) }},
		{MATCH_CONTAINS, func(name string) bool { return strings.Contains(name, keyword) }},
	}
	seen := make(map[int]struct{})
	result := make([]StopInfo, 0)
	for _, tier := range tiers {
		for stop, name := range idx.lowerNames {
			if _, ok := seen[stop]; ok || !tier.test(name) {
				continue
			}
			seen[stop] = struct{}{}
			result = append(result, idx.info(stop, tier.match, 0))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Match != result[j].Match {
			return result[i].Match < result[j].Match
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > maxResults {
		result = result[:maxResults]
	}
	return result
}

// 半径radius米内的站点，按距离升序，最多返回maxResults个
func (idx *StopIndex) Nearby(lat, lon, radius float64, maxResults int) []StopInfo {
	result := make([]StopInfo, 0)
	if maxResults <= 0 || radius < 0 {
		return result
	}
	for _, box := range BoundingBoxes(lat, lon, radius) {
		idx.tree.Search(box.Min, box.Max, func(_, _ [2]float64, stop int) bool {
			d := Haversine(lat, lon, idx.src.StopLat(stop), idx.src.StopLon(stop))
			if d <= radius {
				result = append(result, idx.info(stop, MATCH_NEARBY, d))
			}
			return true
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance != result[j].Distance {
			return result[i].Distance < result[j].Distance
		}
		return result[i].StopIndex < result[j].StopIndex
	})
	if len(result) > maxResults {
		result = result[:maxResults]
	}
	return result
}
