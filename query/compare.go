package query

import (
	"context"
	"fmt"
	"strings"

	"git.fiblab.net/sim/scenario/network"
	"golang.org/x/sync/errgroup"
)

const NOT_AVAILABLE = "N/A"

// Comparison 同一请求在基础网络与场景网络上的结果
type Comparison struct {
	Base     *Result
	Scenario *Result
}

// 两个查询互不共享可变状态，可以并发执行
func (p *Planner) Compare(ctx context.Context, base, scenario network.TransitView, q Query) (*Comparison, error) {
	c := &Comparison{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c.Base, err = p.PlanMultiCriteria(ctx, base, q)
		return err
	})
	g.Go(func() error {
		var err error
		c.Scenario, err = p.PlanMultiCriteria(ctx, scenario, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// 最短耗时之差（场景-基础，单位：分钟）；任一侧无结果时ok为false
func (c *Comparison) DurationDelta() (delta int, ok bool) {
	b, s := c.Base.Best(), c.Scenario.Best()
	if b == nil || s == nil {
		return 0, false
	}
	return s.Duration()/60 - b.Duration()/60, true
}

// 最短耗时行程的换乘次数之差
func (c *Comparison) TransferDelta() (delta int, ok bool) {
	b, s := c.Base.Best(), c.Scenario.Best()
	if b == nil || s == nil {
		return 0, false
	}
	return s.Transfers - b.Transfers, true
}

func (c *Comparison) CountDelta() int {
	return len(c.Scenario.Itineraries) - len(c.Base.Itineraries)
}

type ComparisonRow struct {
	Metric   string `csv:"metric"`
	Base     string `csv:"base"`
	Scenario string `csv:"scenario"`
	Delta    string `csv:"delta"`
}

func (c *Comparison) Rows() []*ComparisonRow {
	b, s := c.Base.Best(), c.Scenario.Best()
	value := func(it *Itinerary, f func(*Itinerary) int) string {
		if it == nil {
			return NOT_AVAILABLE
		}
		return fmt.Sprint(f(it))
	}
	delta := func(d int, ok bool) string {
		if !ok {
			return NOT_AVAILABLE
		}
		return fmt.Sprintf("%+d", d)
	}
	minutes := func(it *Itinerary) int { return it.Duration() / 60 }
	transfers := func(it *Itinerary) int { return it.Transfers }
	return []*ComparisonRow{
		{"duration_min", value(b, minutes), value(s, minutes), delta(c.DurationDelta())},
		{"transfers", value(b, transfers), value(s, transfers), delta(c.TransferDelta())},
		{"itineraries",
			fmt.Sprint(len(c.Base.Itineraries)), fmt.Sprint(len(c.Scenario.Itineraries)),
			delta(c.CountDelta(), true)},
	}
}

func (c *Comparison) String() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%-14s %10s %10s %8s\n", "", "base", "scenario", "delta")
	for _, row := range c.Rows() {
		fmt.Fprintf(&sb, "%-14s %10s %10s %8s\n", row.Metric, row.Base, row.Scenario, row.Delta)
	}
	return sb.String()
}
