package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"rfm-dashboard/pkg/calculator"
	"rfm-dashboard/pkg/config"
	"rfm-dashboard/pkg/database"
	"rfm-dashboard/pkg/dataset"
	"rfm-dashboard/pkg/models"
	"rfm-dashboard/pkg/report"
	"rfm-dashboard/pkg/server"

	"github.com/gin-gonic/gin"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Flags override the environment
	dataPath := flag.String("data", cfg.DataPath, "CSV du dataset nettoyé")
	dsn := flag.String("dsn", cfg.DSN, "DSN MariaDB/MySQL/PostgreSQL (remplace -data)")
	table := flag.String("table", cfg.OrdersTable, "Table des commandes (avec -dsn)")
	addr := flag.String("addr", cfg.Addr, "Adresse HTTP du dashboard")
	start := flag.String("start", "", "Début de la période (YYYY-MM-DD)")
	end := flag.String("end", "", "Fin de la période (YYYY-MM-DD)")
	startMonth := flag.String("start_month", "", "Mois de début (MMYYYY), à la place de -start")
	endMonth := flag.String("end_month", "", "Mois de fin (MMYYYY), à la place de -end")
	printReport := flag.Bool("report", false, "Affiche le rapport et quitte")
	exportDir := flag.String("export", "", "Exporte le dashboard en JSON dans ce dossier et quitte")
	verbose := flag.Bool("v", cfg.Verbose, "Mode verbeux")
	flag.Parse()

	oneShot := *printReport || *exportDir != ""
	ctx := context.Background()

	orders, err := loadOrders(ctx, *dsn, *dataPath, *table, oneShot && *verbose)
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	formatter, err := report.NewFormatter(cfg.Currency, cfg.Locale)
	if err != nil {
		log.Fatalf("format: %v", err)
	}

	if !oneShot {
		if cfg.Production {
			gin.SetMode(gin.ReleaseMode)
		}
		srv, err := server.New(orders, formatter, server.Options{
			TopN:        cfg.TopN,
			TopRFM:      cfg.TopRFM,
			CacheTTL:    cfg.CacheTTL,
			CORSOrigins: cfg.CORSOrigins,
			Verbose:     *verbose,
		})
		if err != nil {
			log.Fatalf("server: %v", err)
		}
		log.Printf("[INFO] dashboard listening on %s", *addr)
		if err := srv.Router().Run(*addr); err != nil {
			log.Fatalf("serve: %v", err)
		}
		return
	}

	r, err := requestedRange(orders, *start, *end, *startMonth, *endMonth)
	if err != nil {
		log.Fatalf("range: %v", err)
	}
	d, err := calculator.Run(ctx, orders, models.Config{
		Range:   r,
		TopN:    cfg.TopN,
		TopRFM:  cfg.TopRFM,
		Verbose: *verbose,
	})
	if err != nil {
		log.Fatalf("compute: %v", err)
	}

	if *printReport {
		printDashboard(d, formatter)
	}
	if *exportDir != "" {
		name := report.TimestampedFilename(*exportDir, "dashboard_"+r.Key(), "json", time.Now())
		if err := report.ExportJSON(name, d); err != nil {
			log.Fatalf("export: %v", err)
		}
	}
}

func loadOrders(ctx context.Context, dsn, dataPath, table string, progress bool) ([]models.OrderRecord, error) {
	if dsn == "" {
		return dataset.LoadFile(dataPath, progress)
	}
	db, dsnUsed, err := database.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	log.Printf("[INFO] connected dsn=%s", dsnUsed)
	return database.LoadOrders(ctx, db, table, progress)
}

func requestedRange(orders []models.OrderRecord, start, end, startMonth, endMonth string) (models.DateRange, error) {
	bounds, err := dataset.Bounds(orders)
	if err != nil {
		return models.DateRange{}, err
	}
	var r models.DateRange
	if startMonth != "" || endMonth != "" {
		if startMonth == "" || endMonth == "" {
			return models.DateRange{}, fmt.Errorf("-start_month and -end_month go together")
		}
		r, err = calculator.MonthRange(startMonth, endMonth)
	} else {
		r, err = dataset.ParseRange(start, end)
	}
	if err != nil {
		return models.DateRange{}, err
	}
	return dataset.Clamp(r, bounds)
}

// Sortie : MM/YYYY ; commandes ; chiffre d'affaires, puis les segments
func printDashboard(d models.Dashboard, f *report.Formatter) {
	fmt.Printf("Range %s -> %s ; rows=%d ; report=%s\n",
		d.Range.Start.Format(models.DayLayout), d.Range.End.Format(models.DayLayout), d.Rows, d.ReportID)
	fmt.Printf("Total orders=%s ; total revenue=%s\n", f.Count(d.Summary.TotalOrders), f.Money(d.Summary.TotalRevenue))
	for _, m := range d.MonthlyOrders {
		fmt.Printf("%s ; %d ; %s\n", calculator.FormatMonth(m.Month), m.OrderCount, f.Money(m.Revenue))
	}
	fmt.Printf("Avg recency=%.1f ; avg frequency=%.2f ; avg monetary=%s\n",
		d.Summary.AvgRecency, d.Summary.AvgFrequency, f.Money(d.Summary.AvgMonetary))
	for i := len(d.SegmentCounts) - 1; i >= 0; i-- {
		fmt.Printf("%-22s %d\n", d.SegmentCounts[i].Segment, d.SegmentCounts[i].Customers)
	}
	for _, line := range d.Narrative {
		fmt.Println(line)
	}
}
