package calculator

import (
	"fmt"
	"math"

	"rfm-dashboard/pkg/models"
)

// Summarize computes the headline metrics shown above the charts.
func Summarize(rows []models.OrderRecord, rfm []models.RFMRecord) models.Summary {
	orders := map[string]struct{}{}
	revenue := 0.0
	for _, r := range rows {
		orders[r.OrderID] = struct{}{}
		revenue += r.Price
	}
	s := models.Summary{
		TotalOrders:  len(orders),
		TotalRevenue: Round2(revenue),
		Customers:    len(rfm),
	}
	if len(rfm) == 0 {
		return s
	}
	var rec, freq, mon float64
	for _, r := range rfm {
		rec += float64(r.Recency)
		freq += float64(r.Frequency)
		mon += r.Monetary
	}
	n := float64(len(rfm))
	s.AvgRecency = math.RoundToEven(rec/n*10) / 10
	s.AvgFrequency = Round2(freq / n)
	s.AvgMonetary = Round2(mon / n)
	return s
}

// Narrate writes the commentary printed under each chart. Sections without
// data are skipped.
func Narrate(d models.Dashboard) []string {
	var out []string

	if peak, ok := peakMonth(d.MonthlyOrders); ok {
		out = append(out, fmt.Sprintf(
			"The highest monthly order count was %d orders in %s.",
			peak.OrderCount, formatMonth(peak.Month)))
		if drops := monthlyDrops(d.MonthlyOrders); len(drops) > 0 {
			out = append(out, fmt.Sprintf(
				"Order count fell compared to the previous month in %d of %d months.",
				len(drops), len(d.MonthlyOrders)-1))
		}
	}

	if n := len(d.CustomersByState); n > 0 {
		most, least := d.CustomersByState[0], d.CustomersByState[n-1]
		out = append(out, fmt.Sprintf(
			"Most customers come from state %s (%d) and the fewest from state %s (%d).",
			most.State, most.CustomerCount, least.State, least.CustomerCount))
	}

	if n := len(d.OrdersByCategory); n > 0 {
		best, worst := d.OrdersByCategory[0], d.OrdersByCategory[n-1]
		out = append(out, fmt.Sprintf(
			"The best selling category is %s with %d orders; the weakest is %s with %d.",
			best.Category, best.OrderCount, worst.Category, worst.OrderCount))
	}

	if largest, smallest, ok := segmentExtremes(d.SegmentCounts); ok {
		out = append(out, fmt.Sprintf(
			"The largest RFM segment is %s (%d customers) and the smallest is %s (%d customers).",
			largest.Segment, largest.Customers, smallest.Segment, smallest.Customers))
	}
	return out
}

func peakMonth(months []models.MonthlyOrders) (models.MonthlyOrders, bool) {
	if len(months) == 0 {
		return models.MonthlyOrders{}, false
	}
	peak := months[0]
	for _, m := range months[1:] {
		if m.OrderCount > peak.OrderCount {
			peak = m
		}
	}
	return peak, true
}

func monthlyDrops(months []models.MonthlyOrders) []models.MonthlyOrders {
	var out []models.MonthlyOrders
	for i := 1; i < len(months); i++ {
		if months[i].OrderCount < months[i-1].OrderCount {
			out = append(out, months[i])
		}
	}
	return out
}

// segmentExtremes ignores empty segments when looking for the smallest one.
func segmentExtremes(counts []models.SegmentCount) (largest, smallest models.SegmentCount, ok bool) {
	for _, c := range counts {
		if c.Customers == 0 {
			continue
		}
		if !ok {
			largest, smallest, ok = c, c, true
			continue
		}
		if c.Customers > largest.Customers {
			largest = c
		}
		if c.Customers < smallest.Customers {
			smallest = c
		}
	}
	return largest, smallest, ok
}
