// Package pdf renders quotations and invoices as printable documents. It
// consumes totals already computed and persisted upstream; nothing here does
// any pricing arithmetic.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"photostudio-backend/models"
)

const studioName = "The Studio Photography & Films"

// RenderQuotation produces a PDF for a quotation. The Client association must
// be preloaded.
func RenderQuotation(q *models.Quotation) ([]byte, error) {
	pdf := newDocument("QUOTATION", q.QuotationNumber, q.QuotationDate.Format("02-Jan-2006"))

	writeClientBox(pdf, q.Client)
	writeEventBox(pdf, q.EventType, q.EventDate.Format("02-Jan-2006"),
		fmt.Sprintf("Valid until: %s", q.ValidityDate.Format("02-Jan-2006")))

	var rows [][]string
	for _, item := range q.Items {
		rows = append(rows, itemRow(item.ServiceName, item.Quantity, item.Days, item.RatePerDay, item.Total))
	}
	writeItemsTable(pdf, rows)
	writeTotals(pdf, q.Subtotal, q.Discount, q.DiscountType, q.TaxPercentage, q.Tax, q.GrandTotal)

	if q.PaymentTerms != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(190, 6, "Payment Terms", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, q.PaymentTerms, "", "L", false)
		pdf.Ln(3)
	}
	writeFooter(pdf, q.Notes, q.ThankYouMessage)

	return output(pdf)
}

// RenderInvoice produces a PDF for an invoice. The Client association must be
// preloaded.
func RenderInvoice(inv *models.Invoice) ([]byte, error) {
	pdf := newDocument("INVOICE", inv.InvoiceNumber, inv.InvoiceDate.Format("02-Jan-2006"))

	writeClientBox(pdf, inv.Client)
	writeEventBox(pdf, inv.EventType, inv.EventDate.Format("02-Jan-2006"),
		fmt.Sprintf("Due date: %s", inv.DueDate.Format("02-Jan-2006")))

	var rows [][]string
	for _, item := range inv.Items {
		rows = append(rows, itemRow(item.ServiceName, item.Quantity, item.Days, item.RatePerDay, item.Total))
	}
	writeItemsTable(pdf, rows)
	writeTotals(pdf, inv.Subtotal, inv.Discount, inv.DiscountType, inv.TaxPercentage, inv.Tax, inv.GrandTotal)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Payment Status: %s", inv.PaymentStatus), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if inv.BankDetails.AccountNumber != "" || inv.BankDetails.UPIID != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(190, 6, "Bank Details", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		if inv.BankDetails.AccountName != "" {
			pdf.CellFormat(190, 5, fmt.Sprintf("Account Name: %s", inv.BankDetails.AccountName), "", 1, "L", false, 0, "")
		}
		if inv.BankDetails.AccountNumber != "" {
			pdf.CellFormat(190, 5, fmt.Sprintf("Account Number: %s", inv.BankDetails.AccountNumber), "", 1, "L", false, 0, "")
		}
		if inv.BankDetails.IFSCCode != "" {
			pdf.CellFormat(190, 5, fmt.Sprintf("IFSC: %s", inv.BankDetails.IFSCCode), "", 1, "L", false, 0, "")
		}
		if inv.BankDetails.UPIID != "" {
			pdf.CellFormat(190, 5, fmt.Sprintf("UPI: %s", inv.BankDetails.UPIID), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}
	writeFooter(pdf, inv.Notes, inv.ThankYouMessage)

	return output(pdf)
}

func newDocument(title, number, date string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, studioName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(190, 8, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, fmt.Sprintf("Number: %s", number), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Date: %s", date), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	return pdf
}

func writeClientBox(pdf *gofpdf.Fpdf, client models.Client) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 7, "Billed To", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, client.Name, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, client.Phone, "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 6, client.Email, "LB", 0, "L", false, 0, "")
	address := client.Address
	if client.City != "" {
		address += ", " + client.City
	}
	pdf.CellFormat(95, 6, address, "RB", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func writeEventBox(pdf *gofpdf.Fpdf, eventType, eventDate, extra string) {
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(63, 6, fmt.Sprintf("Event: %s", eventType), "", 0, "L", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Event date: %s", eventDate), "", 0, "L", false, 0, "")
	pdf.CellFormat(64, 6, extra, "", 1, "R", false, 0, "")
	pdf.Ln(2)
}

func itemRow(name string, quantity, days int, rate, total float64) []string {
	if len(name) > 40 {
		name = name[:37] + "..."
	}
	return []string{
		name,
		fmt.Sprintf("%d", quantity),
		fmt.Sprintf("%d", days),
		fmt.Sprintf("%.2f", rate),
		fmt.Sprintf("%.2f", total),
	}
}

func writeItemsTable(pdf *gofpdf.Fpdf, rows [][]string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(80, 7, "Service", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Days", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Rate/Day", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.CellFormat(80, 6, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, row[1], "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, row[2], "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, row[3], "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, row[4], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}

func writeTotals(pdf *gofpdf.Fpdf, subtotal, discount float64, discountType string, taxPercentage, tax, grandTotal float64) {
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(155, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", subtotal), "1", 1, "R", false, 0, "")

	if discount > 0 {
		label := "Discount"
		if discountType == "percentage" {
			label = fmt.Sprintf("Discount (%.0f%%)", discount)
		}
		pdf.CellFormat(155, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", discount), "1", 1, "R", false, 0, "")
	}
	if taxPercentage > 0 {
		pdf.CellFormat(155, 6, fmt.Sprintf("Tax (%.0f%%)", taxPercentage), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", tax), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(155, 7, "Grand Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, fmt.Sprintf("%.2f", grandTotal), "1", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func writeFooter(pdf *gofpdf.Fpdf, notes, thankYou string) {
	if notes != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(190, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, notes, "", "L", false)
		pdf.Ln(3)
	}
	if thankYou != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(190, 5, thankYou, "", "C", false)
	}
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
