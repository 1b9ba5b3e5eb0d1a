package dataset

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"rfm-dashboard/pkg/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/schollz/progressbar/v3"
)

// Column names of the cleaned dataset.
const (
	ColOrderID           = "order_id"
	ColCustomerID        = "customer_id"
	ColCustomerState     = "customer_state"
	ColProductCategory   = "product_category_name"
	ColPurchaseTimestamp = "order_purchase_timestamp"
	ColEstimatedDelivery = "order_estimated_delivery_date"
	ColPrice             = "price"
)

// Columns lists the columns every source must provide, in load order.
var Columns = []string{
	ColOrderID, ColCustomerID, ColCustomerState, ColProductCategory,
	ColPurchaseTimestamp, ColEstimatedDelivery, ColPrice,
}

// ErrEmptyDataset is returned when a source yields no rows.
var ErrEmptyDataset = errors.New("dataset is empty")

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	models.DayLayout,
}

// ParseTime accepts the timestamp layouts found in exports of the dataset.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// LoadFile reads the CSV at path.
func LoadFile(path string, progress bool) ([]models.OrderRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return LoadCSV(f, progress)
}

// LoadCSV reads the cleaned dataset and returns its rows sorted by purchase
// timestamp. Extra columns are ignored.
func LoadCSV(r io.Reader, progress bool) ([]models.OrderRecord, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	have := map[string]bool{}
	for _, n := range df.Names() {
		have[n] = true
	}
	for _, c := range Columns {
		if !have[c] {
			return nil, fmt.Errorf("read csv: missing column %q", c)
		}
	}

	df = df.Select(Columns)
	if df.Err != nil {
		return nil, fmt.Errorf("select columns: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return nil, ErrEmptyDataset
	}

	cols := make(map[string][]string, len(Columns))
	for _, c := range Columns {
		cols[c] = df.Col(c).Records()
	}

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.Default(int64(df.Nrow()), "loading orders")
	}

	out := make([]models.OrderRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		line := i + 2 // header is line 1
		rec, err := parseRow(
			cols[ColOrderID][i], cols[ColCustomerID][i], cols[ColCustomerState][i],
			cols[ColProductCategory][i], cols[ColPurchaseTimestamp][i],
			cols[ColEstimatedDelivery][i], cols[ColPrice][i],
		)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	SortByPurchase(out)
	log.Printf("[INFO] loaded %d order rows", len(out))
	return out, nil
}

func parseRow(orderID, customerID, state, category, purchased, delivery, price string) (models.OrderRecord, error) {
	if missing(orderID) {
		return models.OrderRecord{}, fmt.Errorf("%s is empty", ColOrderID)
	}
	if missing(customerID) {
		return models.OrderRecord{}, fmt.Errorf("%s is empty", ColCustomerID)
	}
	pAt, err := ParseTime(purchased)
	if err != nil {
		return models.OrderRecord{}, fmt.Errorf("%s: %w", ColPurchaseTimestamp, err)
	}
	dAt, err := ParseTime(delivery)
	if err != nil {
		return models.OrderRecord{}, fmt.Errorf("%s: %w", ColEstimatedDelivery, err)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		return models.OrderRecord{}, fmt.Errorf("%s: %w", ColPrice, err)
	}
	if p < 0 {
		return models.OrderRecord{}, fmt.Errorf("%s is negative: %v", ColPrice, p)
	}
	return models.OrderRecord{
		OrderID:             strings.TrimSpace(orderID),
		CustomerID:          strings.TrimSpace(customerID),
		CustomerState:       clean(state),
		ProductCategory:     clean(category),
		PurchasedAt:         pAt,
		EstimatedDeliveryAt: dAt,
		Price:               p,
	}, nil
}

// gota renders missing string cells as "NaN".
func missing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "NaN"
}

func clean(s string) string {
	if missing(s) {
		return ""
	}
	return strings.TrimSpace(s)
}
