package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"photostudio-backend/models"
)

func createTestQuotation(t *testing.T, r *gin.Engine, clientID, serviceID interface{}) models.Quotation {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId":      clientID,
		"eventType":     "Wedding",
		"eventDate":     time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"validityDate":  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		"taxPercentage": 0,
		"items":         []gin.H{{"serviceId": serviceID, "quantity": 1, "days": 1}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create quotation: status = %d, body = %s", w.Code, w.Body.String())
	}
	var q models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode quotation: %v", err)
	}
	return q
}

func reloadClient(t *testing.T, db *gorm.DB, id interface{}) models.Client {
	t.Helper()
	var client models.Client
	if err := db.Where("id = ?", id).First(&client).Error; err != nil {
		t.Fatalf("reload client: %v", err)
	}
	return client
}

func TestCreateInvoiceDirect(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Wedding Film", 100000)

	w := doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
		"clientId":  client.ID,
		"eventType": "Wedding",
		"eventDate": time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"dueDate":   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		"items":     []gin.H{{"serviceId": service.ID, "quantity": 1, "days": 1}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var invoice models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(invoice.InvoiceNumber, "INV-") {
		t.Fatalf("invoice number = %q, want INV- prefix", invoice.InvoiceNumber)
	}
	if invoice.GrandTotal != 100000 {
		t.Fatalf("grand total = %v, want 100000", invoice.GrandTotal)
	}
	if invoice.PaymentStatus != models.PaymentStatusUnpaid {
		t.Fatalf("payment status = %q, want Unpaid", invoice.PaymentStatus)
	}

	// Ledger must reflect the new invoice in the same commit
	ledger := reloadClient(t, db, client.ID)
	if ledger.TotalBilled != 100000 || ledger.PendingAmount != 100000 || ledger.TotalPaid != 0 {
		t.Fatalf("ledger = billed %v / paid %v / pending %v, want 100000 / 0 / 100000",
			ledger.TotalBilled, ledger.TotalPaid, ledger.PendingAmount)
	}
}

func TestConvertQuotationToInvoice(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Wedding Film", 100000)

	quotation := createTestQuotation(t, r, client.ID, service.ID)

	w := doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
		"clientId":    client.ID,
		"quotationId": quotation.ID,
		"dueDate":     time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("convert: status = %d, body = %s", w.Code, w.Body.String())
	}

	var invoice models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Items, event fields and totals are carried over from the quotation
	if invoice.EventType != quotation.EventType {
		t.Fatalf("event type = %q, want %q", invoice.EventType, quotation.EventType)
	}
	if len(invoice.Items) != 1 || invoice.Items[0].ServiceName != "Wedding Film" {
		t.Fatalf("items not carried over: %+v", invoice.Items)
	}
	if invoice.GrandTotal != quotation.GrandTotal {
		t.Fatalf("grand total = %v, want %v", invoice.GrandTotal, quotation.GrandTotal)
	}
	if invoice.QuotationID == nil || *invoice.QuotationID != quotation.ID {
		t.Fatalf("invoice not linked to quotation")
	}

	// Quotation must be marked converted and linked back
	var converted models.Quotation
	if err := db.Where("id = ?", quotation.ID).First(&converted).Error; err != nil {
		t.Fatalf("reload quotation: %v", err)
	}
	if !converted.ConvertedToInvoice {
		t.Fatalf("quotation not marked converted")
	}
	if converted.InvoiceID == nil || *converted.InvoiceID != invoice.ID {
		t.Fatalf("quotation back-link missing")
	}
	if converted.Status != models.QuotationStatusAccepted {
		t.Fatalf("quotation status = %q, want Accepted", converted.Status)
	}

	// Converting the same quotation again must be rejected
	w = doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
		"clientId":    client.ID,
		"quotationId": quotation.ID,
		"dueDate":     time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("second conversion: status = %d, want 409", w.Code)
	}
}

func TestRecordPaymentsDerivesStatusAndLedger(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Wedding Film", 100000)

	w := doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
		"clientId":  client.ID,
		"eventType": "Wedding",
		"eventDate": time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"dueDate":   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		"items":     []gin.H{{"serviceId": service.ID}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create invoice: status = %d, body = %s", w.Code, w.Body.String())
	}
	var invoice models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode: %v", err)
	}

	type paymentResponse struct {
		PaymentStatus  string  `json:"paymentStatus"`
		AmountReceived float64 `json:"amountReceived"`
		Balance        float64 `json:"balance"`
	}

	// First payment: 40000 of 100000
	w = doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", gin.H{
		"amount":        40000,
		"paymentMethod": "Bank Transfer",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("first payment: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp paymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PaymentStatus != models.PaymentStatusPartiallyPaid {
		t.Fatalf("status after 40000 = %q, want Partially Paid", resp.PaymentStatus)
	}
	if resp.AmountReceived != 40000 || resp.Balance != 60000 {
		t.Fatalf("received %v / balance %v, want 40000 / 60000", resp.AmountReceived, resp.Balance)
	}

	ledger := reloadClient(t, db, client.ID)
	if ledger.TotalPaid != 40000 || ledger.PendingAmount != 60000 {
		t.Fatalf("ledger after first payment = paid %v / pending %v, want 40000 / 60000",
			ledger.TotalPaid, ledger.PendingAmount)
	}

	// Second payment settles the invoice
	w = doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", gin.H{
		"amount":        60000,
		"paymentMethod": "UPI",
		"transactionId": "upi-12345",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("second payment: status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("status after settlement = %q, want Paid", resp.PaymentStatus)
	}
	if resp.Balance != 0 {
		t.Fatalf("balance = %v, want 0", resp.Balance)
	}

	ledger = reloadClient(t, db, client.ID)
	if ledger.TotalPaid != 100000 || ledger.PendingAmount != 0 {
		t.Fatalf("ledger after settlement = paid %v / pending %v, want 100000 / 0",
			ledger.TotalPaid, ledger.PendingAmount)
	}

	// Stored invoice status matches the derivation
	var settled models.Invoice
	if err := db.Where("id = ?", invoice.ID).First(&settled).Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if settled.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("stored status = %q, want Paid", settled.PaymentStatus)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Wedding Film", 100000)

	w := doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
		"clientId":  client.ID,
		"eventType": "Wedding",
		"eventDate": time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"dueDate":   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		"items":     []gin.H{{"serviceId": service.ID}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create invoice: status = %d", w.Code)
	}
	var invoice models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Zero and negative amounts are rejected
	for _, amount := range []float64{0, -100} {
		w = doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", gin.H{
			"amount":        amount,
			"paymentMethod": "Cash",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("amount %v: status = %d, want 400", amount, w.Code)
		}
	}

	// Unknown payment method
	w = doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", gin.H{
		"amount":        100,
		"paymentMethod": "Barter",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad method: status = %d, want 400", w.Code)
	}

	// Unknown invoice
	w = doRequest(t, r, http.MethodPost, "/api/invoices/30000000-0000-0000-0000-000000000003/payments", gin.H{
		"amount":        100,
		"paymentMethod": "Cash",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown invoice: status = %d, want 404", w.Code)
	}
}

func TestGetInvoicePayments(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Wedding Film", 100000)

	w := doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
		"clientId":  client.ID,
		"eventType": "Wedding",
		"eventDate": time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"dueDate":   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
		"items":     []gin.H{{"serviceId": service.ID}},
	})
	var invoice models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode: %v", err)
	}

	doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", gin.H{
		"amount": 25000, "paymentMethod": "Cash",
	})

	w = doRequest(t, r, http.MethodGet, "/api/invoices/"+invoice.ID.String()+"/payments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list payments: status = %d", w.Code)
	}

	var got struct {
		Payments       []models.Payment `json:"payments"`
		AmountReceived float64          `json:"amountReceived"`
		Balance        float64          `json:"balance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(got.Payments))
	}
	if got.AmountReceived != 25000 || got.Balance != 75000 {
		t.Fatalf("received %v / balance %v, want 25000 / 75000", got.AmountReceived, got.Balance)
	}
}

func TestDeleteInvoiceResetsQuotationAndLedger(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Wedding Film", 100000)

	quotation := createTestQuotation(t, r, client.ID, service.ID)

	w := doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
		"clientId":    client.ID,
		"quotationId": quotation.ID,
		"dueDate":     time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("convert: status = %d, body = %s", w.Code, w.Body.String())
	}
	var invoice models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode: %v", err)
	}

	doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payments", gin.H{
		"amount": 10000, "paymentMethod": "Cash",
	})

	w = doRequest(t, r, http.MethodDelete, "/api/invoices/"+invoice.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Quotation becomes convertible again
	var q models.Quotation
	if err := db.Where("id = ?", quotation.ID).First(&q).Error; err != nil {
		t.Fatalf("reload quotation: %v", err)
	}
	if q.ConvertedToInvoice || q.InvoiceID != nil {
		t.Fatalf("quotation conversion state not reset: %+v", q)
	}

	// Payments are gone and the ledger is back to zero
	var paymentCount int64
	db.Model(&models.Payment{}).Where("invoice_id = ?", invoice.ID).Count(&paymentCount)
	if paymentCount != 0 {
		t.Fatalf("orphaned payments = %d, want 0", paymentCount)
	}
	ledger := reloadClient(t, db, client.ID)
	if ledger.TotalBilled != 0 || ledger.TotalPaid != 0 || ledger.PendingAmount != 0 {
		t.Fatalf("ledger after delete = billed %v / paid %v / pending %v, want all 0",
			ledger.TotalBilled, ledger.TotalPaid, ledger.PendingAmount)
	}
}

func TestGetInvoicesOverdueFilter(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Wedding Film", 100000)

	// One overdue, one due next month
	for _, due := range []time.Time{
		time.Now().AddDate(0, 0, -10),
		time.Now().AddDate(0, 1, 0),
	} {
		w := doRequest(t, r, http.MethodPost, "/api/invoices", gin.H{
			"clientId":  client.ID,
			"eventType": "Wedding",
			"eventDate": time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			"dueDate":   due,
			"items":     []gin.H{{"serviceId": service.ID}},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create invoice: status = %d, body = %s", w.Code, w.Body.String())
		}
	}

	w := doRequest(t, r, http.MethodGet, "/api/invoices?overdue=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var overdue []models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &overdue); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("overdue invoices = %d, want 1", len(overdue))
	}
}
