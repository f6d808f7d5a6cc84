package query

import (
	"context"
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/sim/scenario/index"
	"github.com/samber/lo"
)

// AccessEgress 起终点坐标与站点之间的步行连接
type AccessEgress struct {
	Stop            int
	DurationSeconds int
	DistanceMeters  float64
}

func (a AccessEgress) String() string {
	return fmt.Sprintf("stop %d (%.0fm, %ds)", a.Stop, a.DistanceMeters, a.DurationSeconds)
}

type StopDistance struct {
	Stop   int
	Meters float64
}

// StreetNetwork 可选的道路网络协作者，给出沿道路的最短步行距离
type StreetNetwork interface {
	// (lat, lon) 出发沿道路maxMeters以内可达的站点
	StopsWithin(ctx context.Context, lat, lon, maxMeters float64) ([]StopDistance, error)
}

// AccessFinder 为坐标寻找候选上下车站点
type AccessFinder struct {
	stops     *index.StopIndex
	street    StreetNetwork
	maxMeters float64
	walkSpeed float64
}

// street 可为nil，此时使用直线距离
func NewAccessFinder(stops *index.StopIndex, street StreetNetwork, opts Options) *AccessFinder {
	return &AccessFinder{
		stops:     stops,
		street:    street,
		maxMeters: opts.MaxWalkMeters,
		walkSpeed: opts.WalkSpeed,
	}
}

func (f *AccessFinder) UsingStreet() bool {
	return f.street != nil
}

// 按距离升序排序后截取前limit个
func (f *AccessFinder) Find(ctx context.Context, lat, lon float64, limit int) ([]AccessEgress, error) {
	var candidates []StopDistance
	if f.street != nil {
		var err error
		if candidates, err = f.street.StopsWithin(ctx, lat, lon, f.maxMeters); err != nil {
			return nil, err
		}
	} else {
		candidates = lo.Map(f.stops.Nearby(lat, lon, f.maxMeters, math.MaxInt), func(s index.StopInfo, _ int) StopDistance {
			return StopDistance{Stop: s.StopIndex, Meters: s.Distance}
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Meters < candidates[j].Meters
	})
	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return lo.Map(candidates, func(c StopDistance, _ int) AccessEgress {
		return AccessEgress{
			Stop:            c.Stop,
			DurationSeconds: int(math.Round(c.Meters / f.walkSpeed)),
			DistanceMeters:  c.Meters,
		}
	}), nil
}
