package index

import "math"

const (
	// 平均地球半径（单位：米）
	EARTH_RADIUS = 6_371_000.0
	// 每纬度对应的米数（近似）
	METERS_PER_DEGREE = 111_000.0
)

// 两点间大圆距离（单位：米）
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EARTH_RADIUS * c
}

// Box rtree查询矩形，坐标为[lon, lat]
type Box struct {
	Min, Max [2]float64
}

// 以(lat, lon)为中心、半径radius米的外包框
// 纬度方向用 radius/111000；经度方向取球面上的精确跨度
// 跨越±180°经线时拆成两个框，包含极点或跨度过大时取整个经度范围
func BoundingBoxes(lat, lon, radius float64) []Box {
	dLat := radius / METERS_PER_DEGREE
	minLat, maxLat := lat-dLat, lat+dLat
	full := []Box{{[2]float64{-180, minLat}, [2]float64{180, maxLat}}}
	if maxLat >= 90 || minLat <= -90 {
		return full
	}
	x := math.Sin(radius/EARTH_RADIUS) / math.Cos(lat*math.Pi/180)
	if x >= 1 {
		return full
	}
	dLon := math.Asin(x) * 180 / math.Pi
	minLon, maxLon := lon-dLon, lon+dLon
	switch {
	case maxLon-minLon >= 360:
		return full
	case minLon < -180:
		return []Box{
			{[2]float64{-180, minLat}, [2]float64{maxLon, maxLat}},
			{[2]float64{minLon + 360, minLat}, [2]float64{180, maxLat}},
		}
	case maxLon > 180:
		return []Box{
			{[2]float64{minLon, minLat}, [2]float64{180, maxLat}},
			{[2]float64{-180, minLat}, [2]float64{maxLon - 360, maxLat}},
		}
	default:
		return []Box{{[2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}}}
	}
}
