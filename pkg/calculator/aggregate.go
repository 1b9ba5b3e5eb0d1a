package calculator

import (
	"sort"
	"time"

	"rfm-dashboard/pkg/models"
)

// MonthlyOrders buckets rows by the month of their estimated delivery date.
// Months without rows between the first and the last bucket are reported as zero.
func MonthlyOrders(rows []models.OrderRecord) []models.MonthlyOrders {
	if len(rows) == 0 {
		return []models.MonthlyOrders{}
	}
	orders := map[time.Time]map[string]struct{}{}
	revenue := map[time.Time]float64{}
	var first, last time.Time
	for i, r := range rows {
		m := monthStart(r.EstimatedDeliveryAt)
		if i == 0 || m.Before(first) {
			first = m
		}
		if i == 0 || m.After(last) {
			last = m
		}
		if orders[m] == nil {
			orders[m] = map[string]struct{}{}
		}
		orders[m][r.OrderID] = struct{}{}
		revenue[m] += r.Price
	}

	months := monthsBetweenInclusive(first, last)
	out := make([]models.MonthlyOrders, 0, len(months))
	for _, m := range months {
		out = append(out, models.MonthlyOrders{
			Month:      m,
			OrderCount: len(orders[m]),
			Revenue:    Round2(revenue[m]),
		})
	}
	return out
}

// CustomersByState counts distinct customers per state, largest first.
func CustomersByState(rows []models.OrderRecord) []models.StateCustomers {
	counts := countDistinct(rows,
		func(r models.OrderRecord) string { return r.CustomerState },
		func(r models.OrderRecord) string { return r.CustomerID },
	)
	out := make([]models.StateCustomers, 0, len(counts))
	for _, kc := range counts {
		out = append(out, models.StateCustomers{State: kc.key, CustomerCount: kc.count})
	}
	return out
}

// OrdersByCategory counts distinct orders per product category, largest first.
func OrdersByCategory(rows []models.OrderRecord) []models.CategoryOrders {
	counts := countDistinct(rows,
		func(r models.OrderRecord) string { return r.ProductCategory },
		func(r models.OrderRecord) string { return r.OrderID },
	)
	out := make([]models.CategoryOrders, 0, len(counts))
	for _, kc := range counts {
		out = append(out, models.CategoryOrders{Category: kc.key, OrderCount: kc.count})
	}
	return out
}

// TopBottomCategories returns the first and last n rows of a table sorted by
// OrdersByCategory. The two slices overlap when there are fewer than 2n categories.
func TopBottomCategories(byCategory []models.CategoryOrders, n int) (top, bottom []models.CategoryOrders) {
	if n <= 0 {
		return []models.CategoryOrders{}, []models.CategoryOrders{}
	}
	if n > len(byCategory) {
		n = len(byCategory)
	}
	top = append([]models.CategoryOrders{}, byCategory[:n]...)
	bottom = append([]models.CategoryOrders{}, byCategory[len(byCategory)-n:]...)
	return top, bottom
}

// SegmentCounts counts customers per segment, least valuable segment first.
// Every segment is present, possibly with zero customers.
func SegmentCounts(rfm []models.RFMRecord) []models.SegmentCount {
	counts := map[models.Segment]int{}
	for _, r := range rfm {
		counts[r.Segment]++
	}
	out := make([]models.SegmentCount, 0, len(models.Segments))
	for _, s := range models.Segments {
		out = append(out, models.SegmentCount{Segment: s, Customers: counts[s]})
	}
	return out
}

// RFMMeasure selects the column TopCustomers sorts on.
type RFMMeasure int

const (
	ByRecency RFMMeasure = iota
	ByFrequency
	ByMonetary
)

// TopCustomers returns the n customers with the largest value of the measure.
func TopCustomers(rfm []models.RFMRecord, by RFMMeasure, n int) []models.RFMRecord {
	sorted := append([]models.RFMRecord{}, rfm...)
	value := func(r models.RFMRecord) float64 {
		switch by {
		case ByRecency:
			return float64(r.Recency)
		case ByFrequency:
			return float64(r.Frequency)
		default:
			return r.Monetary
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := value(sorted[i]), value(sorted[j])
		if vi != vj {
			return vi > vj
		}
		return sorted[i].CustomerID < sorted[j].CustomerID
	})
	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

type keyCount struct {
	key   string
	count int
}

// countDistinct groups rows by key and counts distinct values of id,
// sorted by count descending then key ascending.
func countDistinct(rows []models.OrderRecord, key, id func(models.OrderRecord) string) []keyCount {
	groups := map[string]map[string]struct{}{}
	for _, r := range rows {
		k := key(r)
		if groups[k] == nil {
			groups[k] = map[string]struct{}{}
		}
		groups[k][id(r)] = struct{}{}
	}
	out := make([]keyCount, 0, len(groups))
	for k, ids := range groups {
		out = append(out, keyCount{key: k, count: len(ids)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
