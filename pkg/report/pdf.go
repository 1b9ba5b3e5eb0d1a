package report

import (
	"bytes"
	"fmt"
	"strconv"

	"rfm-dashboard/pkg/calculator"
	"rfm-dashboard/pkg/models"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
)

// column is one cell of a PDF table row; widths of a row add up to 12.
type column struct {
	width uint
	text  string
	right bool
}

// PDF renders the dashboard tables as an A4 document.
func PDF(d models.Dashboard, f *Formatter) (*bytes.Buffer, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	heading(m, "E-COMMERCE PUBLIC DASHBOARD", 20)
	m.Row(6, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("%s to %s  |  report %s",
				d.Range.Start.Format(models.DayLayout), d.Range.End.Format(models.DayLayout), d.ReportID),
				props.Text{Size: 9, Color: mediumGray})
		})
	})
	m.Row(6, func() {})

	table(m, []column{{6, "Total orders", false}, {6, "Total revenue", true}}, true)
	table(m, []column{{6, f.Count(d.Summary.TotalOrders), false}, {6, f.Money(d.Summary.TotalRevenue), true}}, false)
	m.Row(6, func() {})

	heading(m, "Monthly orders", 13)
	table(m, []column{{4, "Month", false}, {4, "Orders", true}, {4, "Revenue", true}}, true)
	for _, mo := range d.MonthlyOrders {
		table(m, []column{
			{4, calculator.FormatMonth(mo.Month), false},
			{4, f.Count(mo.OrderCount), true},
			{4, f.Money(mo.Revenue), true},
		}, false)
	}
	m.Row(6, func() {})

	heading(m, "Customers by state", 13)
	table(m, []column{{6, "State", false}, {6, "Customers", true}}, true)
	for _, s := range d.CustomersByState {
		table(m, []column{{6, s.State, false}, {6, f.Count(s.CustomerCount), true}}, false)
	}
	m.Row(6, func() {})

	heading(m, "Best & worst performing categories", 13)
	table(m, []column{{6, "Category", false}, {6, "Orders", true}}, true)
	for _, c := range d.TopCategories {
		table(m, []column{{6, c.Category, false}, {6, f.Count(c.OrderCount), true}}, false)
	}
	m.Row(3, func() {})
	for _, c := range d.BottomCategories {
		table(m, []column{{6, c.Category, false}, {6, f.Count(c.OrderCount), true}}, false)
	}
	m.Row(6, func() {})

	heading(m, "RFM analysis", 13)
	table(m, []column{{4, "Average recency (days)", false}, {4, "Average frequency", true}, {4, "Average monetary", true}}, true)
	table(m, []column{
		{4, f.Decimal(d.Summary.AvgRecency, 1), false},
		{4, f.Decimal(d.Summary.AvgFrequency, 2), true},
		{4, f.Money(d.Summary.AvgMonetary), true},
	}, false)
	m.Row(4, func() {})
	table(m, []column{{8, "Segment", false}, {4, "Customers", true}}, true)
	for i := len(d.SegmentCounts) - 1; i >= 0; i-- {
		s := d.SegmentCounts[i]
		table(m, []column{{8, string(s.Segment), false}, {4, strconv.Itoa(s.Customers), true}}, false)
	}

	if len(d.Narrative) > 0 {
		m.Row(6, func() {})
		heading(m, "Notes", 13)
		for _, line := range d.Narrative {
			m.Row(6, func() {
				m.Col(12, func() {
					m.Text(line, props.Text{Size: 9, Color: darkGray})
				})
			})
		}
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &buf, nil
}

func heading(m pdf.Maroto, text string, size float64) {
	m.Row(size/2+4, func() {
		m.Col(12, func() {
			m.Text(text, props.Text{
				Size:  size,
				Style: consts.Bold,
				Color: darkGray,
			})
		})
	})
}

func table(m pdf.Maroto, cols []column, header bool) {
	m.Row(5, func() {
		for _, c := range cols {
			c := c
			m.Col(c.width, func() {
				p := props.Text{Size: 8, Color: darkGray}
				if header {
					p.Style = consts.Bold
				}
				if c.right {
					p.Align = consts.Right
				}
				m.Text(c.text, p)
			})
		}
	})
}
