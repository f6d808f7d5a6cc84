package query

import (
	"io"
	"strings"

	"git.fiblab.net/sim/scenario/network"
	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
)

type ItineraryRow struct {
	Label           string `csv:"label"`
	Rank            int    `csv:"rank"`
	Departure       string `csv:"departure"`
	Arrival         string `csv:"arrival"`
	DurationMinutes int    `csv:"duration_min"`
	Transfers       int    `csv:"transfers"`
	GeneralizedCost int    `csv:"generalized_cost"`
	Routes          string `csv:"routes"`
}

func ItineraryRows(label string, its []*Itinerary) []*ItineraryRow {
	return lo.Map(its, func(it *Itinerary, i int) *ItineraryRow {
		return &ItineraryRow{
			Label:           label,
			Rank:            i + 1,
			Departure:       network.FormatClock(it.StartTime),
			Arrival:         network.FormatClock(it.EndTime),
			DurationMinutes: it.Duration() / 60,
			Transfers:       it.Transfers,
			GeneralizedCost: it.GeneralizedCost,
			Routes:          strings.Join(it.RouteNames(), " > "),
		}
	})
}

func WriteItinerariesCSV(w io.Writer, rows []*ItineraryRow) error {
	return gocsv.Marshal(rows, w)
}

func WriteComparisonCSV(w io.Writer, c *Comparison) error {
	return gocsv.Marshal(c.Rows(), w)
}
