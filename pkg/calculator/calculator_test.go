package calculator

import (
	"context"
	"errors"
	"testing"
	"time"

	"rfm-dashboard/pkg/dataset"
	"rfm-dashboard/pkg/models"
)

func TestParseMonth_Valid(t *testing.T) {
	got, err := parseMonth("032018")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseMonth_InvalidLength(t *testing.T) {
	_, err := parseMonth("32018") // 5 chars
	if err == nil {
		t.Fatal("expected error for invalid length, got nil")
	}
}

func TestParseMonth_InvalidMonth(t *testing.T) {
	_, err := parseMonth("132018") // 13th month
	if err == nil {
		t.Fatal("expected error for invalid month, got nil")
	}
}

func TestParseMonth_NotDigits(t *testing.T) {
	if _, err := parseMonth("03-201"); err == nil {
		t.Fatal("expected error for non-digit input, got nil")
	}
}

func TestMonthsBetweenInclusive(t *testing.T) {
	start := time.Date(2017, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC)
	got := monthsBetweenInclusive(start, end)
	if len(got) != 4 {
		t.Fatalf("got %d months, want 4", len(got))
	}
	// spot-check
	if got[0].Month() != time.November || got[3].Month() != time.February {
		t.Fatalf("unexpected months: %v", got)
	}
}

func TestFormatMonth(t *testing.T) {
	d := time.Date(2018, 8, 1, 0, 0, 0, 0, time.UTC)
	if fm := formatMonth(d); fm != "08/2018" {
		t.Fatalf("got %q, want %q", fm, "08/2018")
	}
}

func TestMonthRange(t *testing.T) {
	r, err := MonthRange("012018", "022018")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Start.Equal(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", r.Start)
	}
	if !r.End.Equal(time.Date(2018, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", r.End)
	}
	if _, err := MonthRange("032018", "022018"); !errors.Is(err, dataset.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRun(t *testing.T) {
	orders := sampleOrders()
	cfg := models.Config{
		Range: models.DateRange{
			Start: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2018, 3, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	d, err := Run(context.Background(), orders, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ReportID == "" {
		t.Fatal("expected a report id")
	}
	if d.Rows != len(orders)-1 {
		t.Fatalf("rows = %d, want %d (one row is outside the range)", d.Rows, len(orders)-1)
	}
	if d.Summary.Customers != 3 || len(d.RFM) != 3 {
		t.Fatalf("customers = %d, rfm rows = %d, want 3", d.Summary.Customers, len(d.RFM))
	}
	total := 0
	for _, s := range d.SegmentCounts {
		total += s.Customers
	}
	if total != len(d.RFM) {
		t.Fatalf("segment counts sum to %d, want %d", total, len(d.RFM))
	}
	if len(d.Narrative) == 0 {
		t.Fatal("expected narrative lines")
	}
	if len(d.TopByMonetary) != 3 || d.TopByMonetary[0].CustomerID != "c3" {
		t.Fatalf("unexpected top by monetary: %+v", d.TopByMonetary)
	}
}

func TestRun_EmptyRange(t *testing.T) {
	cfg := models.Config{Range: models.DateRange{
		Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
	}}
	d, err := Run(context.Background(), sampleOrders(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Rows != 0 || len(d.RFM) != 0 || len(d.MonthlyOrders) != 0 {
		t.Fatalf("expected empty dashboard, got %+v", d)
	}
	if len(d.SegmentCounts) != len(models.Segments) {
		t.Fatalf("expected every segment listed, got %d", len(d.SegmentCounts))
	}
}

func TestRun_InvertedRange(t *testing.T) {
	cfg := models.Config{Range: models.DateRange{
		Start: time.Date(2018, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	if _, err := Run(context.Background(), sampleOrders(), cfg); !errors.Is(err, dataset.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := models.Config{Range: models.DateRange{
		Start: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2018, 3, 31, 0, 0, 0, 0, time.UTC),
	}}
	if _, err := Run(ctx, sampleOrders(), cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func order(id, customer, state, category string, purchased, delivery time.Time, price float64) models.OrderRecord {
	return models.OrderRecord{
		OrderID:             id,
		CustomerID:          customer,
		CustomerState:       state,
		ProductCategory:     category,
		PurchasedAt:         purchased,
		EstimatedDeliveryAt: delivery,
		Price:               price,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func sampleOrders() []models.OrderRecord {
	return []models.OrderRecord{
		order("o1", "c1", "SP", "cama_mesa_banho", day(2018, 1, 5), day(2018, 1, 20), 100),
		order("o1", "c1", "SP", "beleza_saude", day(2018, 1, 5), day(2018, 1, 20), 20),
		order("o2", "c2", "RJ", "cama_mesa_banho", day(2018, 1, 10), day(2018, 3, 2), 50),
		order("o3", "c3", "SP", "esporte_lazer", day(2018, 2, 1), day(2018, 3, 10), 200),
		order("o4", "c1", "SP", "cama_mesa_banho", day(2018, 3, 1), day(2018, 3, 15), 30),
		order("o5", "c2", "RJ", "beleza_saude", day(2018, 5, 1), day(2018, 5, 20), 10),
	}
}
