package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"shopcore/internal/models"
)

// InvoiceGenerator renders order invoices into a working directory and
// returns the file path for attachment.
type InvoiceGenerator struct {
	outDir string
}

func NewInvoiceGenerator(outDir string) *InvoiceGenerator {
	return &InvoiceGenerator{outDir: outDir}
}

func (g *InvoiceGenerator) Generate(order *models.Order) (string, error) {
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return "", fmt.Errorf("invoice dir: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "INVOICE")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Order: %s", order.OrderNumber))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", order.CreatedAt.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Billed to: %s %s <%s>",
		order.BillingFirstName, order.BillingLastName, order.BillingEmail))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(80, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Unit price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		pdf.CellFormat(80, 8, item.VariantID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", item.TotalPrice), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	totals := []struct {
		label string
		value float64
	}{
		{"Tax", order.TaxAmount},
		{"Shipping", order.ShipAmount},
		{"Discount", -order.Discount},
		{"Total", order.TotalAmount},
	}
	for _, t := range totals {
		pdf.CellFormat(145, 7, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", t.value), "", 1, "R", false, 0, "")
	}

	path := filepath.Join(g.outDir, fmt.Sprintf("invoice_%s.pdf", order.OrderNumber))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("invoice render: %w", err)
	}
	return path, nil
}
