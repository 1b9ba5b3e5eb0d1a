package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"rfm-dashboard/pkg/dataset"
	"rfm-dashboard/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/schollz/progressbar/v3"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open accepts mariadb://, mysql:// and postgres:// URLs; anything else is
// handed to the MySQL driver unchanged.
func Open(dsn string) (*sql.DB, string, error) {
	driver, native, err := toDriverDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, native)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, native, nil
}

func toDriverDSN(dsn string) (driver, native string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	default:
		native, err = toMySQLDSN(dsn)
		return "mysql", native, err
	}
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// LoadOrders reads the order rows of tableName, sorted by purchase timestamp.
// The table carries the same columns as the CSV export.
func LoadOrders(ctx context.Context, db *sql.DB, tableName string, progress bool) ([]models.OrderRecord, error) {
	if !tableNameRe.MatchString(tableName) {
		return nil, fmt.Errorf("table invalide: %q", tableName)
	}

	var total int64
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tableName)).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", tableName, err)
	}
	log.Printf("[DEBUG] %s rows=%d", tableName, total)
	if total == 0 {
		return nil, dataset.ErrEmptyDataset
	}

	q := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s
	`, strings.Join(dataset.Columns, ", "), tableName, dataset.ColPurchaseTimestamp)

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tableName, err)
	}
	defer rows.Close()

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.Default(total, "loading orders")
	}

	out := make([]models.OrderRecord, 0, total)
	for rows.Next() {
		var (
			orderID, customerID string
			state, category     sql.NullString
			purchased, delivery sql.NullString
			price               sql.NullFloat64
		)
		if err := rows.Scan(&orderID, &customerID, &state, &category, &purchased, &delivery, &price); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out)+1, err)
		}
		rec, err := toRecord(orderID, customerID, state, category, purchased, delivery, price)
		if err != nil {
			return nil, fmt.Errorf("row %d order=%s: %w", len(out)+1, orderID, err)
		}
		out = append(out, rec)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dataset.SortByPurchase(out)
	log.Printf("[INFO] loaded %d order rows from %s", len(out), tableName)
	return out, nil
}

// Timestamps are scanned as text so DATETIME and TIMESTAMP columns from both
// drivers take the same parsing path as the CSV export.
func toRecord(orderID, customerID string, state, category, purchased, delivery sql.NullString, price sql.NullFloat64) (models.OrderRecord, error) {
	if !purchased.Valid || !delivery.Valid {
		return models.OrderRecord{}, fmt.Errorf("missing timestamp")
	}
	pAt, err := dataset.ParseTime(purchased.String)
	if err != nil {
		return models.OrderRecord{}, err
	}
	dAt, err := dataset.ParseTime(delivery.String)
	if err != nil {
		return models.OrderRecord{}, err
	}
	if price.Valid && price.Float64 < 0 {
		return models.OrderRecord{}, fmt.Errorf("negative price %v", price.Float64)
	}
	return models.OrderRecord{
		OrderID:             orderID,
		CustomerID:          customerID,
		CustomerState:       state.String,
		ProductCategory:     category.String,
		PurchasedAt:         pAt,
		EstimatedDeliveryAt: dAt,
		Price:               price.Float64,
	}, nil
}
