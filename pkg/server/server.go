package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"rfm-dashboard/pkg/calculator"
	"rfm-dashboard/pkg/dataset"
	"rfm-dashboard/pkg/models"
	"rfm-dashboard/pkg/report"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Options tunes the server; zero values fall back to the calculator defaults.
type Options struct {
	TopN        int
	TopRFM      int
	CacheTTL    time.Duration
	CORSOrigins []string
	Verbose     bool
}

// Server answers dashboard requests over an immutable, already loaded dataset.
type Server struct {
	orders []models.OrderRecord
	bounds models.DateRange
	format *report.Formatter
	opts   Options
	cache  *resultCache
	tmpl   *template.Template
}

// New validates the dataset and parses the page template.
func New(orders []models.OrderRecord, f *report.Formatter, opts Options) (*Server, error) {
	bounds, err := dataset.Bounds(orders)
	if err != nil {
		return nil, err
	}
	s := &Server{
		orders: orders,
		bounds: bounds,
		format: f,
		opts:   opts,
		cache:  newResultCache(opts.CacheTTL),
	}
	s.tmpl, err = template.New("dashboard.html").Funcs(s.funcs()).ParseFS(templatesFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return s, nil
}

// Router registers every route on a new gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.SetHTMLTemplate(s.tmpl)

	if len(s.opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: s.opts.CORSOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	router.GET("/", s.GetDashboardPage)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, SuccessResponse(c, "ok", gin.H{"rows": len(s.orders), "bounds": s.bounds}))
	})

	api := router.Group("/api/v1")
	api.GET("/dashboard", s.GetDashboard)
	api.GET("/monthly-orders", s.GetMonthlyOrders)
	api.GET("/customers-by-state", s.GetCustomersByState)
	api.GET("/orders-by-category", s.GetOrdersByCategory)
	api.GET("/rfm", s.GetRFM)
	api.GET("/segments", s.GetSegments)
	api.GET("/report.pdf", s.DownloadReportPDF)

	return router
}

// compute resolves the requested range and returns the cached or freshly
// computed dashboard. On failure the error response is already written.
func (s *Server) compute(c *gin.Context, logTag string) (models.Dashboard, bool) {
	r, err := dataset.ParseRange(c.Query("start"), c.Query("end"))
	if err == nil {
		r, err = dataset.Clamp(r, s.bounds)
	}
	if err != nil {
		log.Printf("[%s] WARN bad range start=%q end=%q err=%v", logTag, c.Query("start"), c.Query("end"), err)
		c.JSON(http.StatusBadRequest, ErrorResponse(c, err.Error()))
		return models.Dashboard{}, false
	}

	if d, ok := s.cache.get(r.Key()); ok {
		if s.opts.Verbose {
			log.Printf("[%s] cache hit range=%s", logTag, r.Key())
		}
		return d, true
	}

	d, err := calculator.Run(c.Request.Context(), s.orders, models.Config{
		Range:   r,
		TopN:    s.opts.TopN,
		TopRFM:  s.opts.TopRFM,
		Verbose: s.opts.Verbose,
	})
	if err != nil {
		log.Printf("[%s] ERROR compute range=%s err=%v", logTag, r.Key(), err)
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrInvalidRange) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse(c, "Failed to compute dashboard"))
		return models.Dashboard{}, false
	}
	s.cache.set(r.Key(), d)
	return d, true
}
