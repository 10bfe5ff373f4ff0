// Package stats folds a reservation sequence into grouped totals for
// the end-of-run report.
package stats

import (
	"fmt"
	"sort"
	"staysync/lib/reservation"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Totals struct {
	Count   int
	Nights  int
	Revenue float64
}

func (t *Totals) add(r reservation.Record) {
	t.Count++
	t.Nights += r.Breakdown.Nights
	t.Revenue += r.Breakdown.OwnerRevenue
}

type Group struct {
	Key string
	Totals
}

type Summary struct {
	Overall Totals
	ByMonth []Group
	ByUnit  []Group
}

// Aggregate computes overall, per-arrival-month and per-unit totals.
// Group order is sorted by key so rendering is stable.
func Aggregate(records []reservation.Record) Summary {
	var summary Summary
	byMonth := map[string]*Totals{}
	byUnit := map[string]*Totals{}

	for _, r := range records {
		summary.Overall.add(r)

		month := r.Arrival
		if len(month) >= 7 {
			month = month[:7]
		}
		if byMonth[month] == nil {
			byMonth[month] = &Totals{}
		}
		byMonth[month].add(r)

		if byUnit[r.UnitName] == nil {
			byUnit[r.UnitName] = &Totals{}
		}
		byUnit[r.UnitName].add(r)
	}

	summary.ByMonth = sortedGroups(byMonth)
	summary.ByUnit = sortedGroups(byUnit)
	return summary
}

func sortedGroups(m map[string]*Totals) []Group {
	groups := make([]Group, 0, len(m))
	for key, totals := range m {
		groups = append(groups, Group{Key: key, Totals: *totals})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Render produces the human-readable report printed after a
// successful run.
func (s Summary) Render() string {
	var out strings.Builder

	fmt.Fprintf(
		&out,
		"%d reservations, %d nights, %.2f owner revenue\n",
		s.Overall.Count, s.Overall.Nights, s.Overall.Revenue,
	)
	out.WriteString(renderGroups("month", s.ByMonth))
	out.WriteString("\n")
	out.WriteString(renderGroups("unit", s.ByUnit))
	out.WriteString("\n")

	return out.String()
}

func renderGroups(label string, groups []Group) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{label, "reservations", "nights", "revenue"})
	for _, g := range groups {
		t.AppendRow(table.Row{
			g.Key, g.Count, g.Nights, fmt.Sprintf("%.2f", g.Revenue),
		})
	}
	return t.Render()
}
