package server

import (
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"rfm-dashboard/pkg/calculator"
	"rfm-dashboard/pkg/models"
)

const (
	chartWidth   = 800
	chartHeight  = 260
	chartPadding = 30
	pageRFMRows  = 100
)

type bar struct {
	Label string
	Value string
	Pct   float64
}

type point struct {
	X, Y  float64
	Label string
	Value string
}

type lineChart struct {
	Width, Height int
	Points        string
	Marks         []point
}

type page struct {
	D            models.Dashboard
	Start, End   string
	Min, Max     string
	TotalOrders  string
	TotalRevenue string
	AvgRecency   string
	AvgFrequency string
	AvgMonetary  string
	Monthly      lineChart
	States       []bar
	Top, Bottom  []bar
	ByRecency    []bar
	ByFrequency  []bar
	ByMonetary   []bar
	Segments     []bar
	RFMRows      []models.RFMRecord
}

func (s *Server) funcs() template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string { return s.format.Money(v) },
		"count": func(n int) string { return s.format.Count(n) },
	}
}

func (s *Server) buildPage(d models.Dashboard) page {
	p := page{
		D:            d,
		Start:        d.Range.Start.Format(models.DayLayout),
		End:          d.Range.End.Format(models.DayLayout),
		Min:          s.bounds.Start.Format(models.DayLayout),
		Max:          s.bounds.End.Format(models.DayLayout),
		TotalOrders:  s.format.Count(d.Summary.TotalOrders),
		TotalRevenue: s.format.Money(d.Summary.TotalRevenue),
		AvgRecency:   s.format.Decimal(d.Summary.AvgRecency, 1),
		AvgFrequency: s.format.Decimal(d.Summary.AvgFrequency, 2),
		AvgMonetary:  s.format.Money(d.Summary.AvgMonetary),
		Monthly:      monthlyChart(d.MonthlyOrders),
	}

	for _, st := range d.CustomersByState {
		p.States = append(p.States, bar{Label: st.State, Value: s.format.Count(st.CustomerCount), Pct: float64(st.CustomerCount)})
	}
	for _, c := range d.TopCategories {
		p.Top = append(p.Top, bar{Label: c.Category, Value: s.format.Count(c.OrderCount), Pct: float64(c.OrderCount)})
	}
	for _, c := range d.BottomCategories {
		p.Bottom = append(p.Bottom, bar{Label: c.Category, Value: s.format.Count(c.OrderCount), Pct: float64(c.OrderCount)})
	}
	for _, r := range d.TopByRecency {
		p.ByRecency = append(p.ByRecency, bar{Label: r.CustomerID, Value: strconv.Itoa(r.Recency), Pct: float64(r.Recency)})
	}
	for _, r := range d.TopByFrequency {
		p.ByFrequency = append(p.ByFrequency, bar{Label: r.CustomerID, Value: strconv.Itoa(r.Frequency), Pct: float64(r.Frequency)})
	}
	for _, r := range d.TopByMonetary {
		p.ByMonetary = append(p.ByMonetary, bar{Label: r.CustomerID, Value: s.format.Money(r.Monetary), Pct: r.Monetary})
	}
	// most valuable segment on top
	for i := len(d.SegmentCounts) - 1; i >= 0; i-- {
		sc := d.SegmentCounts[i]
		p.Segments = append(p.Segments, bar{Label: string(sc.Segment), Value: s.format.Count(sc.Customers), Pct: float64(sc.Customers)})
	}
	for _, bars := range [][]bar{p.States, p.Top, p.Bottom, p.ByRecency, p.ByFrequency, p.ByMonetary, p.Segments} {
		scaleBars(bars)
	}

	p.RFMRows = append([]models.RFMRecord{}, d.RFM...)
	sort.SliceStable(p.RFMRows, func(i, j int) bool {
		if p.RFMRows[i].Score != p.RFMRows[j].Score {
			return p.RFMRows[i].Score > p.RFMRows[j].Score
		}
		return p.RFMRows[i].CustomerID < p.RFMRows[j].CustomerID
	})
	if len(p.RFMRows) > pageRFMRows {
		p.RFMRows = p.RFMRows[:pageRFMRows]
	}
	return p
}

// scaleBars turns raw values in Pct into a percentage of the largest one.
func scaleBars(bars []bar) {
	top := 0.0
	for _, b := range bars {
		if b.Pct > top {
			top = b.Pct
		}
	}
	for i := range bars {
		if top > 0 {
			bars[i].Pct = bars[i].Pct / top * 100
		} else {
			bars[i].Pct = 0
		}
	}
}

func monthlyChart(months []models.MonthlyOrders) lineChart {
	ch := lineChart{Width: chartWidth, Height: chartHeight}
	if len(months) == 0 {
		return ch
	}
	top := 0
	for _, m := range months {
		if m.OrderCount > top {
			top = m.OrderCount
		}
	}
	plotW := float64(chartWidth - 2*chartPadding)
	plotH := float64(chartHeight - 2*chartPadding)
	step := 0.0
	if len(months) > 1 {
		step = plotW / float64(len(months)-1)
	}

	coords := make([]string, 0, len(months))
	for i, m := range months {
		x := float64(chartPadding) + step*float64(i)
		y := float64(chartHeight - chartPadding)
		if top > 0 {
			y -= float64(m.OrderCount) / float64(top) * plotH
		}
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", x, y))
		ch.Marks = append(ch.Marks, point{
			X: x, Y: y,
			Label: calculator.FormatMonth(m.Month),
			Value: strconv.Itoa(m.OrderCount),
		})
	}
	ch.Points = strings.Join(coords, " ")
	return ch
}
