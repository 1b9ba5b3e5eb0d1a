package models

import (
	"time"
)

/*
LOAD → raw rows read from the cleaned dataset (CSV or SQL table).
*/

// OrderRecord is one line item of one order as found in the cleaned dataset.
type OrderRecord struct {
	OrderID             string
	CustomerID          string
	CustomerState       string
	ProductCategory     string
	PurchasedAt         time.Time
	EstimatedDeliveryAt time.Time
	Price               float64
}

// DateRange is an inclusive range of calendar days on the purchase timestamp.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day between Start and End, both included.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && !d.After(Day(r.End))
}

// Key identifies the range in caches and file names.
func (r DateRange) Key() string {
	return Day(r.Start).Format(DayLayout) + "_" + Day(r.End).Format(DayLayout)
}

// DayLayout is the layout used for date-range query parameters.
const DayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

/*
COMPUTE → derived tables, one struct per view.
*/

// MonthlyOrders holds order and revenue totals for one calendar month.
type MonthlyOrders struct {
	Month      time.Time `json:"month"`
	OrderCount int       `json:"order_count"`
	Revenue    float64   `json:"revenue"`
}

// StateCustomers counts distinct customers per customer state.
type StateCustomers struct {
	State         string `json:"customer_state"`
	CustomerCount int    `json:"customer_count"`
}

// CategoryOrders counts distinct orders per product category.
type CategoryOrders struct {
	Category   string `json:"product_category_name"`
	OrderCount int    `json:"order_count"`
}

// Segment is a customer-value category derived from the composite RFM score.
type Segment string

const (
	SegmentTop    Segment = "Top customers"
	SegmentHigh   Segment = "High-value customer"
	SegmentMedium Segment = "Medium-value customer"
	SegmentLow    Segment = "Low-value customers"
	SegmentLost   Segment = "Lost customers"
)

// Segments lists every segment from the least to the most valuable.
var Segments = []Segment{SegmentLost, SegmentLow, SegmentMedium, SegmentHigh, SegmentTop}

// RFMRecord is the recency/frequency/monetary profile of one customer.
type RFMRecord struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`   // days since the customer's last purchase
	Frequency  int     `json:"frequency"` // distinct orders
	Monetary   float64 `json:"monetary"`  // sum of price
	RNorm      float64 `json:"r_rank_norm"`
	FNorm      float64 `json:"f_rank_norm"`
	MNorm      float64 `json:"m_rank_norm"`
	Score      float64 `json:"rfm_score"`
	Segment    Segment `json:"customer_segment"`
}

// SegmentCount is the number of customers assigned to one segment.
type SegmentCount struct {
	Segment   Segment `json:"customer_segment"`
	Customers int     `json:"customer_count"`
}

// Summary holds the headline metrics of the report.
type Summary struct {
	TotalOrders  int     `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	Customers    int     `json:"customers"`
	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
}

// Dashboard is everything the report shows for one date range.
type Dashboard struct {
	ReportID         string           `json:"report_id"`
	GeneratedAt      time.Time        `json:"generated_at"`
	Range            DateRange        `json:"range"`
	Rows             int              `json:"rows"`
	Summary          Summary          `json:"summary"`
	MonthlyOrders    []MonthlyOrders  `json:"monthly_orders"`
	CustomersByState []StateCustomers `json:"customers_by_state"`
	OrdersByCategory []CategoryOrders `json:"orders_by_category"`
	TopCategories    []CategoryOrders `json:"top_categories"`
	BottomCategories []CategoryOrders `json:"bottom_categories"`
	TopByRecency     []RFMRecord      `json:"top_by_recency"`
	TopByFrequency   []RFMRecord      `json:"top_by_frequency"`
	TopByMonetary    []RFMRecord      `json:"top_by_monetary"`
	RFM              []RFMRecord      `json:"rfm"`
	SegmentCounts    []SegmentCount   `json:"segment_counts"`
	Narrative        []string         `json:"narrative"`
}

/*
CONFIG → parameters of one computation.
*/

// Config carries the parameters passed to calculator.Run.
type Config struct {
	Range   DateRange
	TopN    int  // rows in the best/worst category charts
	TopRFM  int  // rows in the top-customer charts
	Verbose bool // detailed logs
}
