package main

import (
	"context"
	"flag"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"math/rand"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/scenario/network"
	"github.com/sirupsen/logrus"
)

const (
	// 起终点相对站点坐标的随机偏移（单位：度，约200米）
	BENCHMARK_JITTER      = 0.002
	BENCHMARK_FIRST_CLOCK = 6 * 3600
	BENCHMARK_LAST_CLOCK  = 22 * 3600
)

var (
	benchmarkCount    = flag.Int("benchmark.count", 1000, "the random query count for benchmark")
	benchmarkSeed     = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU      = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
	benchmarkScenario = flag.Bool("benchmark.scenario", true, "query the scenario network instead of the base network")
)

// 在随机站点附近生成起终点，出发时间在06:00-22:00之间均匀分布
func randomPlanRequests(e *rand.Rand, base *network.Network, count int, scenario bool) []*connect.Request[PlanRequest] {
	reqs := make([]*connect.Request[PlanRequest], count)
	stops := base.StopCount()
	jitter := func() float64 { return (e.Float64()*2 - 1) * BENCHMARK_JITTER }
	for i := 0; i < count; i++ {
		from := base.Stop(e.Intn(stops))
		to := base.Stop(e.Intn(stops))
		dep := BENCHMARK_FIRST_CLOCK + e.Intn(BENCHMARK_LAST_CLOCK-BENCHMARK_FIRST_CLOCK)
		reqs[i] = connect.NewRequest(&PlanRequest{
			FromLat:   from.Lat + jitter(),
			FromLon:   from.Lon + jitter(),
			ToLat:     to.Lat + jitter(),
			ToLon:     to.Lon + jitter(),
			Departure: network.FormatClock(dep),
			Scenario:  scenario,
		})
	}
	return reqs
}

func runBenchmark(server *ScenarioServer) {
	log.Logger.SetLevel(logrus.WarnLevel)
	// 设置随机种子
	e := rand.New(rand.NewSource(*benchmarkSeed))
	base := server.overlay.Base()
	if base.StopCount() == 0 {
		log.Fatal("benchmark needs a network with stops")
	}
	reqs := randomPlanRequests(e, base, *benchmarkCount, *benchmarkScenario)

	plan := func(req *connect.Request[PlanRequest]) bool {
		res, err := server.Plan(context.Background(), req)
		if err != nil {
			log.Error("benchmark failed, err:", err)
			return false
		}
		return len(res.Msg.Itineraries) > 0
	}

	// 开始benchmark
	start := time.Now()
	var wg sync.WaitGroup
	var success atomic.Int32
	if *benchmarkCPU == 1 {
		for _, req := range reqs {
			if plan(req) {
				success.Add(1)
			}
		}
	} else {
		// 设置cpu数量
		runtime.GOMAXPROCS(*benchmarkCPU)
		wg.Add(*benchmarkCount)
		for _, req := range reqs {
			go func(req *connect.Request[PlanRequest]) {
				defer wg.Done()
				if plan(req) {
					success.Add(1)
				}
			}(req)
		}
		wg.Wait()
	}
	timeCost := time.Since(start) * time.Duration(*benchmarkCPU)
	log.Error(
		"benchmark finished", "\n",
		"scenario:", server.overlay, "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(*benchmarkCount), "\n",
		"success:", success.Load(), "\n",
	)
}
