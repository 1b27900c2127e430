package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"photostudio-backend/config"
	"photostudio-backend/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}, &models.Service{}, &models.Quotation{},
		&models.QuotationItem{}, &models.Invoice{}, &models.InvoiceItem{},
		&models.Payment{}, &models.DocumentSequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	return db
}

// setupTestRouter registers the billing routes without auth middleware.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	quotations := r.Group("/api/quotations")
	{
		quotations.POST("", CreateQuotation)
		quotations.GET("", GetQuotations)
		quotations.GET("/:id", GetQuotation)
		quotations.PUT("/:id", UpdateQuotation)
		quotations.DELETE("/:id", DeleteQuotation)
		quotations.POST("/:id/duplicate", DuplicateQuotation)
	}

	invoices := r.Group("/api/invoices")
	{
		invoices.POST("", CreateInvoice)
		invoices.GET("", GetInvoices)
		invoices.GET("/:id", GetInvoice)
		invoices.PUT("/:id", UpdateInvoice)
		invoices.DELETE("/:id", DeleteInvoice)
		invoices.GET("/:id/payments", GetInvoicePayments)
		invoices.POST("/:id/payments", RecordPayment)
	}

	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	client := models.Client{
		Name:  "Priya Sharma",
		Email: "priya@example.com",
		Phone: "+919876543210",
		City:  "Jaipur",
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}

func seedService(t *testing.T, db *gorm.DB, name string, ratePerDay float64) models.Service {
	t.Helper()
	service := models.Service{Name: name, Category: "photography", RatePerDay: ratePerDay, IsActive: true}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("seed service %s: %v", name, err)
	}
	return service
}

func TestCreateQuotationComputesTotalsServerSide(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()

	client := seedClient(t, db)
	candid := seedService(t, db, "Candid Photography", 15000)
	drone := seedService(t, db, "Drone Coverage", 8000)

	w := doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId":      client.ID,
		"eventType":     "Wedding",
		"eventDate":     time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"validityDate":  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		"discount":      5000,
		"discountType":  "fixed",
		"taxPercentage": 18,
		"items": []gin.H{
			{"serviceId": candid.ID, "quantity": 1, "days": 2},
			{"serviceId": drone.ID, "quantity": 1, "days": 1},
		},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !strings.HasPrefix(got.QuotationNumber, "QT-") {
		t.Fatalf("quotation number = %q, want QT- prefix", got.QuotationNumber)
	}
	if got.Subtotal != 38000 {
		t.Fatalf("subtotal = %v, want 38000", got.Subtotal)
	}
	if got.Tax != 5940 {
		t.Fatalf("tax = %v, want 5940", got.Tax)
	}
	if got.GrandTotal != 38940 {
		t.Fatalf("grand total = %v, want 38940", got.GrandTotal)
	}
	if got.Status != models.QuotationStatusDraft {
		t.Fatalf("status = %q, want Draft", got.Status)
	}
	if got.PaymentTerms != models.DefaultPaymentTerms {
		t.Fatalf("payment terms = %q, want default", got.PaymentTerms)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	// Catalog rate must have been snapshotted onto the line
	if got.Items[0].ServiceName == "" || got.Items[0].RatePerDay == 0 {
		t.Fatalf("item snapshot missing: %+v", got.Items[0])
	}
}

func TestCreateQuotationValidation(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Candid Photography", 15000)

	eventDate := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	validity := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	// No items
	w := doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId": client.ID, "eventType": "Wedding",
		"eventDate": eventDate, "validityDate": validity,
		"items": []gin.H{},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty items: status = %d, want 400", w.Code)
	}

	// Unknown event type
	w = doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId": client.ID, "eventType": "Birthday",
		"eventDate": eventDate, "validityDate": validity,
		"items": []gin.H{{"serviceId": service.ID}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad event type: status = %d, want 400", w.Code)
	}

	// Unknown client
	w = doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId": "10000000-0000-0000-0000-000000000001", "eventType": "Wedding",
		"eventDate": eventDate, "validityDate": validity,
		"items": []gin.H{{"serviceId": service.ID}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown client: status = %d, want 400", w.Code)
	}

	// Unknown service
	w = doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId": client.ID, "eventType": "Wedding",
		"eventDate": eventDate, "validityDate": validity,
		"items": []gin.H{{"serviceId": "20000000-0000-0000-0000-000000000002"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown service: status = %d, want 400", w.Code)
	}
}

func TestUpdateQuotationRecomputesTotals(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	candid := seedService(t, db, "Candid Photography", 15000)
	drone := seedService(t, db, "Drone Coverage", 8000)

	w := doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId":      client.ID,
		"eventType":     "Wedding",
		"eventDate":     time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"validityDate":  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		"discount":      5000,
		"discountType":  "fixed",
		"taxPercentage": 18,
		"items": []gin.H{
			{"serviceId": candid.ID, "quantity": 1, "days": 2},
			{"serviceId": drone.ID, "quantity": 1, "days": 1},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Switch to a 10% discount; totals must be recomputed, not trusted
	w = doRequest(t, r, http.MethodPut, "/api/quotations/"+created.ID.String(), gin.H{
		"discount":     10,
		"discountType": "percentage",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Subtotal != 38000 {
		t.Fatalf("subtotal = %v, want 38000", updated.Subtotal)
	}
	if updated.GrandTotal != 40356 {
		t.Fatalf("grand total = %v, want 40356 (38000 - 3800 + 18%% tax)", updated.GrandTotal)
	}
}

func TestDuplicateQuotationResetsLifecycle(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Candid Photography", 15000)

	w := doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId":     client.ID,
		"eventType":    "Pre-wedding",
		"eventDate":    time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"validityDate": time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		"status":       "Sent",
		"items":        []gin.H{{"serviceId": service.ID, "days": 2}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}
	var source models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &source); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doRequest(t, r, http.MethodPost, "/api/quotations/"+source.ID.String()+"/duplicate", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate: status = %d, body = %s", w.Code, w.Body.String())
	}
	var clone models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &clone); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if clone.ID == source.ID {
		t.Fatalf("duplicate kept the source ID")
	}
	if clone.QuotationNumber == source.QuotationNumber {
		t.Fatalf("duplicate kept the source number %q", source.QuotationNumber)
	}
	if clone.Status != models.QuotationStatusDraft {
		t.Fatalf("duplicate status = %q, want Draft", clone.Status)
	}
	if clone.ConvertedToInvoice || clone.InvoiceID != nil {
		t.Fatalf("duplicate carried conversion state: %+v", clone)
	}
	if clone.GrandTotal != source.GrandTotal {
		t.Fatalf("duplicate grand total = %v, want %v", clone.GrandTotal, source.GrandTotal)
	}
	if len(clone.Items) != len(source.Items) {
		t.Fatalf("duplicate items = %d, want %d", len(clone.Items), len(source.Items))
	}
}

func TestDeleteQuotation(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Candid Photography", 15000)

	w := doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
		"clientId":     client.ID,
		"eventType":    "Other",
		"eventDate":    time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		"validityDate": time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		"items":        []gin.H{{"serviceId": service.ID}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doRequest(t, r, http.MethodDelete, "/api/quotations/"+created.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodGet, "/api/quotations/"+created.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", w.Code)
	}

	var itemCount int64
	db.Model(&models.QuotationItem{}).Where("quotation_id = ?", created.ID).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("orphaned items = %d, want 0", itemCount)
	}
}

func TestGetQuotationsFilters(t *testing.T) {
	db := setupTestDB(t)
	r := setupTestRouter()
	client := seedClient(t, db)
	service := seedService(t, db, "Candid Photography", 15000)

	for _, status := range []string{"Draft", "Sent"} {
		w := doRequest(t, r, http.MethodPost, "/api/quotations", gin.H{
			"clientId":     client.ID,
			"eventType":    "Wedding",
			"eventDate":    time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			"validityDate": time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			"status":       status,
			"items":        []gin.H{{"serviceId": service.ID}},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s: status = %d, body = %s", status, w.Code, w.Body.String())
		}
	}

	w := doRequest(t, r, http.MethodGet, "/api/quotations?status=Sent", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var listed []models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != "Sent" {
		t.Fatalf("filtered list = %d entries, want exactly the Sent one", len(listed))
	}

	w = doRequest(t, r, http.MethodGet, "/api/quotations?status=Bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus status filter: status = %d, want 400", w.Code)
	}
}
