package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"rfm-dashboard/pkg/models"
	"rfm-dashboard/pkg/report"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns every view for ?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (s *Server) GetDashboard(c *gin.Context) {
	log.Printf("[dashboard.get] start")
	d, ok := s.compute(c, "dashboard.get")
	if !ok {
		return
	}
	log.Printf("[dashboard.get] respond 200 range=%s customers=%d", d.Range.Key(), d.Summary.Customers)
	c.JSON(http.StatusOK, SuccessResponse(c, "Dashboard computed successfully", d))
}

func (s *Server) GetMonthlyOrders(c *gin.Context) {
	d, ok := s.compute(c, "dashboard.monthly-orders")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Monthly orders retrieved successfully", d.MonthlyOrders))
}

func (s *Server) GetCustomersByState(c *gin.Context) {
	d, ok := s.compute(c, "dashboard.customers-by-state")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Customers by state retrieved successfully", d.CustomersByState))
}

func (s *Server) GetOrdersByCategory(c *gin.Context) {
	d, ok := s.compute(c, "dashboard.orders-by-category")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Orders by category retrieved successfully", gin.H{
		"all":    d.OrdersByCategory,
		"top":    d.TopCategories,
		"bottom": d.BottomCategories,
	}))
}

// GetRFM pages through the RFM table; ?segment= keeps one segment only.
func (s *Server) GetRFM(c *gin.Context) {
	page, limit, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse(c, err.Error()))
		return
	}
	d, ok := s.compute(c, "dashboard.rfm")
	if !ok {
		return
	}

	rows := d.RFM
	if seg := c.Query("segment"); seg != "" {
		filtered := make([]models.RFMRecord, 0, len(rows))
		for _, r := range rows {
			if string(r.Segment) == seg {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	total := len(rows)
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}
	meta := &Pagination{Page: page, Limit: limit, Total: total, TotalPages: (total + limit - 1) / limit}
	c.JSON(http.StatusOK, PaginatedResponse(c, "RFM table retrieved successfully", rows[from:to], meta))
}

func (s *Server) GetSegments(c *gin.Context) {
	d, ok := s.compute(c, "dashboard.segments")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Segments retrieved successfully", d.SegmentCounts))
}

// DownloadReportPDF streams the dashboard as a PDF attachment.
func (s *Server) DownloadReportPDF(c *gin.Context) {
	log.Printf("[dashboard.pdf] start")
	d, ok := s.compute(c, "dashboard.pdf")
	if !ok {
		return
	}
	buf, err := report.PDF(d, s.format)
	if err != nil {
		log.Printf("[dashboard.pdf] ERROR render err=%v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse(c, "Failed to render PDF"))
		return
	}

	filename := fmt.Sprintf("dashboard-%s.pdf", d.Range.Key())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	log.Printf("[dashboard.pdf] respond 200 bytes=%d", buf.Len())
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// GetDashboardPage renders the single-page HTML report.
func (s *Server) GetDashboardPage(c *gin.Context) {
	d, ok := s.compute(c, "dashboard.page")
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", s.buildPage(d))
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 1000
)

func pageParams(c *gin.Context) (page, limit int, err error) {
	page, limit = 1, defaultPageLimit
	if v := c.Query("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			return 0, 0, fmt.Errorf("invalid page %q", v)
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, fmt.Errorf("invalid limit %q", v)
		}
	}
	return page, limit, nil
}
