// Package networktest 提供测试用的小型固定网络
package networktest

import (
	"fmt"

	"git.fiblab.net/sim/scenario/network"
	"github.com/samber/lo"
)

const (
	SEOUL_STATION = iota
	CITY_HALL
	JONGGAK
	GANGNAM
	YEOKSAM
	SEOLLEUNG
	YEOUIDO
	NORYANGJIN
	CITY_HALL_PLAZA
)

const (
	LINE_1 = iota
	LINE_2
	LINE_9
	BUS_402
	BUS_N402
)

func HM(h, m int) int {
	return h*3600 + m*60
}

// 生成等间隔、等运行时分的班次
func Trips(shortName string, stopCount, first, headway, count, travel, dwell int) []*network.TripSchedule {
	return lo.Times(count, func(i int) *network.TripSchedule {
		start := first + i*headway
		arrivals := make([]int, stopCount)
		departures := make([]int, stopCount)
		arrivals[0], departures[0] = start, start
		for s := 1; s < stopCount; s++ {
			arrivals[s] = departures[s-1] + travel
			departures[s] = arrivals[s]
			if s < stopCount-1 {
				departures[s] += dwell
			}
		}
		return &network.TripSchedule{
			SortIndex:      start,
			Arrivals:       arrivals,
			Departures:     departures,
			TripID:         fmt.Sprintf("%s_%d", shortName, i),
			RouteShortName: shortName,
		}
	})
}

func NewRoute(id, shortName string, routeType network.RouteType, stops []int, trips []*network.TripSchedule) *network.Route {
	return &network.Route{
		Pattern: network.TripPattern{
			StopIndexes: stops,
			SlackIndex:  routeType.SlackClass(),
			DebugInfo:   routeType.String() + "_" + shortName,
		},
		Timetable: trips,
		RouteID:   id,
		ShortName: shortName,
		LongName:  shortName,
		Type:      routeType,
	}
}

// Seoul 9个站点、5条线路的测试网络
//
//	1호선  서울역 -> 시청 -> 종각            06:00起每15分钟, 6班
//	2호선  시청 -> 강남 -> 역삼 -> 선릉      06:00起每10分钟, 10班
//	9호선  여의도 -> 노량진 -> 강남          07:00起每30分钟, 3班
//	402    서울역 -> 여의도 -> 노량진 (公交) 06:00起每20分钟, 8班
//	N402   종각 -> 선릉 (公交)               23:00起每30分钟, 2班
func Seoul() *network.Network {
	b := network.NewBuilder()
	b.AddStop("서울역", 37.5547, 126.9707)
	b.AddStop("시청", 37.5657, 126.9769)
	b.AddStop("종각", 37.5702, 126.9831)
	b.AddStop("강남", 37.4979, 127.0276)
	b.AddStop("역삼", 37.5006, 127.0364)
	b.AddStop("선릉", 37.5045, 127.0490)
	b.AddStop("여의도", 37.5216, 126.9242)
	b.AddStop("노량진", 37.5142, 126.9424)
	b.AddStop("시청앞", 37.5660, 126.9775)

	b.AddRoute(NewRoute("R1", "1호선", network.ROUTE_TYPE_SUBWAY,
		[]int{SEOUL_STATION, CITY_HALL, JONGGAK},
		Trips("1호선", 3, HM(6, 0), 900, 6, 240, 30)))
	b.AddRoute(NewRoute("R2", "2호선", network.ROUTE_TYPE_SUBWAY,
		[]int{CITY_HALL, GANGNAM, YEOKSAM, SEOLLEUNG},
		Trips("2호선", 4, HM(6, 0), 600, 10, 180, 30)))
	b.AddRoute(NewRoute("R9", "9호선", network.ROUTE_TYPE_SUBWAY,
		[]int{YEOUIDO, NORYANGJIN, GANGNAM},
		Trips("9호선", 3, HM(7, 0), 1800, 3, 300, 30)))
	b.AddRoute(NewRoute("B402", "402", network.ROUTE_TYPE_BUS,
		[]int{SEOUL_STATION, YEOUIDO, NORYANGJIN},
		Trips("402", 3, HM(6, 0), 1200, 8, 600, 0)))
	b.AddRoute(NewRoute("BN402", "N402", 702,
		[]int{JONGGAK, SEOLLEUNG},
		Trips("N402", 2, HM(23, 0), 1800, 2, 900, 0)))

	b.AddTransfer(CITY_HALL, CITY_HALL_PLAZA, 120)
	b.AddTransfer(SEOUL_STATION, CITY_HALL, 600)

	return lo.Must(b.Build())
}
