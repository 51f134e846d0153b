// Package dataset supplies the records and summary text a report is built from.
package dataset

import (
	"time"

	"github.com/dgallion1/pdfdesk/internal/report"
)

const (
	Title            = "Quarterly Sales Report"
	MetricsTitle     = "Performance Overview"
	CatalogTitle     = "Product Catalog"
	Footer           = "Confidential Document - For Internal Use Only"
	SummaryParagraph = "Summary: Our Q4 2024 performance shows strong growth across all key metrics. " +
		"The introduction of new product lines has contributed to increased market share " +
		"and customer satisfaction scores."
)

// MetricColumns are the columns of the performance table.
func MetricColumns() []report.Column {
	return []report.Column{
		{Key: "metric", Header: "Metric", Width: 0.2},
		{Key: "value", Header: "Value", Width: 0.5},
		{Key: "period", Header: "Period", Width: 0.3},
	}
}

// CatalogColumns are the columns of the product table.
func CatalogColumns() []report.Column {
	return []report.Column{
		{Key: "product", Header: "Product", Width: 0.2},
		{Key: "description", Header: "Description", Width: 0.5},
		{Key: "price", Header: "Price", Width: 0.3, Kind: report.ColumnNumeric},
	}
}

// InventoryColumns list the catalog with stock levels instead of descriptions.
func InventoryColumns() []report.Column {
	return []report.Column{
		{Key: "product", Header: "Product", Width: 0.4},
		{Key: "price", Header: "Price", Width: 0.3, Kind: report.ColumnNumeric},
		{Key: "stock", Header: "Stock", Width: 0.3, Kind: report.ColumnNumeric},
	}
}

func SampleMetrics() []report.RecordRow {
	return []report.RecordRow{
		report.Row("metric", "Sales Growth", "value", "+25%", "period", "YoY"),
		report.Row("metric", "Customer Satisfaction", "value", "4.8/5", "period", "Q4 2024"),
		report.Row("metric", "Market Share", "value", "32%", "period", "Current"),
	}
}

func SampleCatalog() []report.RecordRow {
	return []report.RecordRow{
		report.Row("product", "Laptop Pro", "description", "High-performance laptop for professionals", "price", "$1,299.99", "stock", "45"),
		report.Row("product", "Desktop Ultra", "description", "Powerful desktop workstation", "price", "$1,899.99", "stock", "28"),
		report.Row("product", "Tablet Air", "description", "Lightweight tablet for creatives", "price", "$799.99", "stock", "92"),
		report.Row("product", "Smart Monitor", "description", "4K HDR Professional Display", "price", "$699.99", "stock", "15"),
		report.Row("product", "Wireless Dock", "description", "Universal docking station", "price", "$249.99", "stock", "67"),
	}
}

// Sample is the built-in quarterly report. The generation time is passed in
// so that equal inputs build equal documents.
func Sample(generatedAt time.Time) report.Report {
	return report.Report{
		Title:       Title,
		GeneratedAt: generatedAt,
		Metrics: report.TableSpec{
			Title:   MetricsTitle,
			Columns: MetricColumns(),
			Rows:    SampleMetrics(),
		},
		Catalog: report.TableSpec{
			Title:   CatalogTitle,
			Columns: CatalogColumns(),
			Rows:    SampleCatalog(),
		},
		Summary: []string{SummaryParagraph},
		Footer:  Footer,
	}
}
