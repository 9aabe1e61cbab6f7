package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/dispatch"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
)

// Ensure PDFRenderer satisfies the task executors' renderer
var _ dispatch.DocumentRenderer = (*PDFRenderer)(nil)

// PDFRenderer produces invoice and receipt documents. Rendering is
// pure CPU work; the dispatcher owns timeouts and retries around it.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// RenderInvoice renders the invoice document sent to the customer
func (r *PDFRenderer) RenderInvoice(tenant *identity.Tenant, inv *invoice.Invoice) ([]byte, error) {
	return r.render(tenant, inv, "INVOICE", "")
}

// RenderReceipt renders the paid receipt document
func (r *PDFRenderer) RenderReceipt(tenant *identity.Tenant, inv *invoice.Invoice) ([]byte, error) {
	paidAt := ""
	if inv.PaidAt != nil {
		paidAt = inv.PaidAt.Format("02 Jan 2006 15:04")
	}
	return r.render(tenant, inv, "RECEIPT", paidAt)
}

func (r *PDFRenderer) render(tenant *identity.Tenant, inv *invoice.Invoice, title, paidAt string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header: business identity on the left, document title on the right
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(120, 10, tenant.BusinessName)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if tenant.ContactPhone != "" {
		pdf.CellFormat(0, 5, tenant.ContactPhone, "", 1, "L", false, 0, "")
	}
	if tenant.ContactEmail != "" {
		pdf.CellFormat(0, 5, tenant.ContactEmail, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Document metadata
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 6, "Number:")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, inv.InvoiceNumber, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 6, "Date:")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, inv.CreatedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 6, "Bill To:")
	pdf.SetFont("Arial", "", 11)
	billTo := inv.CustomerName
	if inv.CustomerPhone != "" {
		billTo += " (" + inv.CustomerPhone + ")"
	}
	pdf.CellFormat(0, 6, billTo, "", 1, "L", false, 0, "")

	if inv.DueDate != nil {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 6, "Due:")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 6, inv.DueDate.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	}
	if paidAt != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 6, "Paid:")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 6, paidAt, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Line item table
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(100, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(32, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(33, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range inv.LineItems {
		pdf.CellFormat(100, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, item.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(32, 8, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(33, 8, item.Total().StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(157, 10, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(33, 10, fmt.Sprintf("%s %s", inv.Currency, inv.Amount.StringFixed(2)), "1", 1, "R", false, 0, "")
	pdf.Ln(8)

	// Payout details so the customer knows where to pay
	if title == "INVOICE" && tenant.Payout.AccountNumber != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Payment Details", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 5, "Bank: "+tenant.Payout.BankName, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, "Account Name: "+tenant.Payout.AccountName, "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, "Account Number: "+tenant.Payout.AccountNumber, "", 1, "L", false, 0, "")
	}

	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", time.Now().Format("02 Jan 2006 15:04")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
