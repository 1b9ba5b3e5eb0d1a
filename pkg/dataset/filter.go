package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"rfm-dashboard/pkg/models"
)

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("invalid date range")

// SortByPurchase orders rows by purchase timestamp, keeping the input order of ties.
func SortByPurchase(rows []models.OrderRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PurchasedAt.Before(rows[j].PurchasedAt)
	})
}

// Bounds returns the calendar days of the earliest and latest purchase.
func Bounds(rows []models.OrderRecord) (models.DateRange, error) {
	if len(rows) == 0 {
		return models.DateRange{}, ErrEmptyDataset
	}
	lo, hi := rows[0].PurchasedAt, rows[0].PurchasedAt
	for _, r := range rows[1:] {
		if r.PurchasedAt.Before(lo) {
			lo = r.PurchasedAt
		}
		if r.PurchasedAt.After(hi) {
			hi = r.PurchasedAt
		}
	}
	return models.DateRange{Start: models.Day(lo), End: models.Day(hi)}, nil
}

// Clamp restricts r to the dataset bounds. A zero Start or End takes the bound.
func Clamp(r, bounds models.DateRange) (models.DateRange, error) {
	if r.Start.IsZero() || r.Start.Before(bounds.Start) {
		r.Start = bounds.Start
	}
	if r.End.IsZero() || r.End.After(bounds.End) {
		r.End = bounds.End
	}
	r.Start, r.End = models.Day(r.Start), models.Day(r.End)
	if r.End.Before(r.Start) {
		return r, fmt.Errorf("%w: %s after %s", ErrInvalidRange,
			r.Start.Format(models.DayLayout), r.End.Format(models.DayLayout))
	}
	return r, nil
}

// ParseRange parses start/end query values (YYYY-MM-DD). Empty values stay zero.
func ParseRange(start, end string) (models.DateRange, error) {
	var r models.DateRange
	var err error
	if start != "" {
		if r.Start, err = time.ParseInLocation(models.DayLayout, start, time.UTC); err != nil {
			return r, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
		}
	}
	if end != "" {
		if r.End, err = time.ParseInLocation(models.DayLayout, end, time.UTC); err != nil {
			return r, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, fmt.Errorf("%w: %s after %s", ErrInvalidRange, start, end)
	}
	return r, nil
}

// Filter keeps rows purchased on a day inside r.
func Filter(rows []models.OrderRecord, r models.DateRange) []models.OrderRecord {
	out := make([]models.OrderRecord, 0, len(rows))
	for _, row := range rows {
		if r.Contains(row.PurchasedAt) {
			out = append(out, row)
		}
	}
	return out
}
