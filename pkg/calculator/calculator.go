package calculator

import (
	"context"
	"fmt"
	"log"
	"time"

	"rfm-dashboard/pkg/dataset"
	"rfm-dashboard/pkg/models"

	"github.com/google/uuid"
)

const (
	defaultTopN   = 10
	defaultTopRFM = 5
)

// Run filters orders to cfg.Range and builds every view of the dashboard.
// orders is not modified.
func Run(ctx context.Context, orders []models.OrderRecord, cfg models.Config) (models.Dashboard, error) {
	if cfg.Range.End.Before(cfg.Range.Start) {
		return models.Dashboard{}, fmt.Errorf("%w: end before start", dataset.ErrInvalidRange)
	}
	topN, topRFM := cfg.TopN, cfg.TopRFM
	if topN <= 0 {
		topN = defaultTopN
	}
	if topRFM <= 0 {
		topRFM = defaultTopRFM
	}

	started := time.Now()
	rows := dataset.Filter(orders, cfg.Range)
	if cfg.Verbose {
		log.Printf("[DEBUG] range=%s rows=%d/%d", cfg.Range.Key(), len(rows), len(orders))
	}

	d := models.Dashboard{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Range:       cfg.Range,
		Rows:        len(rows),
	}

	d.MonthlyOrders = MonthlyOrders(rows)
	d.CustomersByState = CustomersByState(rows)
	d.OrdersByCategory = OrdersByCategory(rows)
	d.TopCategories, d.BottomCategories = TopBottomCategories(d.OrdersByCategory, topN)
	if err := ctx.Err(); err != nil {
		return models.Dashboard{}, err
	}

	d.RFM = BuildRFM(rows)
	d.SegmentCounts = SegmentCounts(d.RFM)
	d.TopByRecency = TopCustomers(d.RFM, ByRecency, topRFM)
	d.TopByFrequency = TopCustomers(d.RFM, ByFrequency, topRFM)
	d.TopByMonetary = TopCustomers(d.RFM, ByMonetary, topRFM)
	if err := ctx.Err(); err != nil {
		return models.Dashboard{}, err
	}

	d.Summary = Summarize(rows, d.RFM)
	d.Narrative = Narrate(d)

	if cfg.Verbose {
		log.Printf("[INFO] %s -> orders=%d revenue=%.2f customers=%d months=%d (%s)",
			cfg.Range.Key(), d.Summary.TotalOrders, d.Summary.TotalRevenue,
			d.Summary.Customers, len(d.MonthlyOrders), time.Since(started))
	}
	return d, nil
}

// MonthRange turns two "MMYYYY" values into a range from the first day of
// the start month to the last day of the end month.
func MonthRange(startMonth, endMonth string) (models.DateRange, error) {
	start, err := parseMonth(startMonth)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("start_month: %w", err)
	}
	end, err := parseMonth(endMonth)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("end_month: %w", err)
	}
	if end.Before(start) {
		return models.DateRange{}, fmt.Errorf("%w: end_month < start_month", dataset.ErrInvalidRange)
	}
	return models.DateRange{Start: start, End: end.AddDate(0, 1, -1)}, nil
}

// parseMonth("MMYYYY") -> first day of the month, UTC
func parseMonth(mmyyyy string) (time.Time, error) {
	if len(mmyyyy) != 6 {
		return time.Time{}, fmt.Errorf("expected MMYYYY (e.g. 012018)")
	}
	for i := 0; i < len(mmyyyy); i++ {
		if mmyyyy[i] < '0' || mmyyyy[i] > '9' {
			return time.Time{}, fmt.Errorf("expected MMYYYY (e.g. 012018)")
		}
	}
	month := int(mmyyyy[0]-'0')*10 + int(mmyyyy[1]-'0')
	year := int(mmyyyy[2]-'0')*1000 + int(mmyyyy[3]-'0')*100 + int(mmyyyy[4]-'0')*10 + int(mmyyyy[5]-'0')
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

func monthsBetweenInclusive(start, end time.Time) []time.Time {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

func formatMonth(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}

// FormatMonth renders a month as MM/YYYY.
func FormatMonth(t time.Time) string {
	return formatMonth(t)
}
