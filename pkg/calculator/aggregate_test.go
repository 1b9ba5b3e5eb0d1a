package calculator

import (
	"testing"
	"time"

	"rfm-dashboard/pkg/models"
)

func TestMonthlyOrders_FillsGaps(t *testing.T) {
	got := MonthlyOrders(sampleOrders())
	// deliveries span Jan..May 2018
	if len(got) != 5 {
		t.Fatalf("got %d months, want 5: %+v", len(got), got)
	}
	jan, feb, mar := got[0], got[1], got[2]
	if !jan.Month.Equal(time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first month = %v", jan.Month)
	}
	if jan.OrderCount != 1 || jan.Revenue != 120 {
		t.Fatalf("jan = %+v, want 1 order and 120 revenue", jan)
	}
	if feb.OrderCount != 0 || feb.Revenue != 0 {
		t.Fatalf("feb = %+v, want zero", feb)
	}
	if mar.OrderCount != 3 || mar.Revenue != 280 {
		t.Fatalf("mar = %+v, want 3 orders and 280 revenue", mar)
	}
}

func TestMonthlyOrders_Empty(t *testing.T) {
	if got := MonthlyOrders(nil); len(got) != 0 {
		t.Fatalf("expected no months, got %d", len(got))
	}
}

func TestCustomersByState(t *testing.T) {
	got := CustomersByState(sampleOrders())
	want := []models.StateCustomers{{State: "SP", CustomerCount: 2}, {State: "RJ", CustomerCount: 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestOrdersByCategory_SortedDescending(t *testing.T) {
	got := OrdersByCategory(sampleOrders())
	if got[0].Category != "cama_mesa_banho" || got[0].OrderCount != 3 {
		t.Fatalf("top category = %+v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].OrderCount > got[i-1].OrderCount {
			t.Fatalf("not sorted: %+v", got)
		}
	}
	if got[1].Category != "beleza_saude" || got[2].Category != "esporte_lazer" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestOrdersByCategory_TiesByName(t *testing.T) {
	when := day(2018, 1, 1)
	got := OrdersByCategory([]models.OrderRecord{
		order("o1", "a", "SP", "zz", when, when, 1),
		order("o2", "a", "SP", "aa", when, when, 1),
	})
	if got[0].Category != "aa" || got[1].Category != "zz" {
		t.Fatalf("unexpected tie order: %+v", got)
	}
}

func TestTopBottomCategories(t *testing.T) {
	table := OrdersByCategory(sampleOrders())
	top, bottom := TopBottomCategories(table, 2)
	if len(top) != 2 || len(bottom) != 2 {
		t.Fatalf("got %d/%d rows, want 2/2", len(top), len(bottom))
	}
	if top[0].Category != "cama_mesa_banho" || bottom[1].Category != "esporte_lazer" {
		t.Fatalf("top=%+v bottom=%+v", top, bottom)
	}
	top, bottom = TopBottomCategories(table, 10)
	if len(top) != 3 || len(bottom) != 3 {
		t.Fatalf("expected n clamped to table size, got %d/%d", len(top), len(bottom))
	}
}

func TestSegmentCounts_Order(t *testing.T) {
	got := SegmentCounts([]models.RFMRecord{
		{CustomerID: "a", Segment: models.SegmentTop},
		{CustomerID: "b", Segment: models.SegmentTop},
		{CustomerID: "c", Segment: models.SegmentLost},
	})
	if len(got) != len(models.Segments) {
		t.Fatalf("got %d segments, want %d", len(got), len(models.Segments))
	}
	if got[0].Segment != models.SegmentLost || got[0].Customers != 1 {
		t.Fatalf("first = %+v", got[0])
	}
	if got[4].Segment != models.SegmentTop || got[4].Customers != 2 {
		t.Fatalf("last = %+v", got[4])
	}
}

func TestTopCustomers(t *testing.T) {
	rfm := []models.RFMRecord{
		{CustomerID: "a", Recency: 5, Frequency: 1, Monetary: 10},
		{CustomerID: "b", Recency: 50, Frequency: 3, Monetary: 5},
		{CustomerID: "c", Recency: 5, Frequency: 2, Monetary: 99},
	}
	if got := TopCustomers(rfm, ByRecency, 2); got[0].CustomerID != "b" || got[1].CustomerID != "a" {
		t.Fatalf("by recency: %+v", got)
	}
	if got := TopCustomers(rfm, ByFrequency, 1); len(got) != 1 || got[0].CustomerID != "b" {
		t.Fatalf("by frequency: %+v", got)
	}
	if got := TopCustomers(rfm, ByMonetary, 5); len(got) != 3 || got[0].CustomerID != "c" {
		t.Fatalf("by monetary: %+v", got)
	}
	if rfm[0].CustomerID != "a" {
		t.Fatal("input was reordered")
	}
}

func TestSummarize(t *testing.T) {
	rows := sampleOrders()[:5]
	s := Summarize(rows, BuildRFM(rows))
	if s.TotalOrders != 4 || s.TotalRevenue != 400 || s.Customers != 3 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	// recency 0, 50, 28
	if s.AvgRecency != 26 {
		t.Fatalf("avg recency = %v, want 26", s.AvgRecency)
	}
	if s.AvgFrequency != 1.33 {
		t.Fatalf("avg frequency = %v, want 1.33", s.AvgFrequency)
	}
}

func TestNarrate(t *testing.T) {
	d := models.Dashboard{
		MonthlyOrders: []models.MonthlyOrders{
			{Month: time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC), OrderCount: 10},
			{Month: time.Date(2018, 8, 1, 0, 0, 0, 0, time.UTC), OrderCount: 30},
			{Month: time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC), OrderCount: 5},
		},
		CustomersByState: []models.StateCustomers{{State: "SP", CustomerCount: 9}, {State: "RR", CustomerCount: 1}},
	}
	got := Narrate(d)
	if len(got) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(got), got)
	}
	if got[0] != "The highest monthly order count was 30 orders in 08/2018." {
		t.Fatalf("unexpected peak line: %q", got[0])
	}
	if got[2] != "Most customers come from state SP (9) and the fewest from state RR (1)." {
		t.Fatalf("unexpected state line: %q", got[2])
	}
}
