// controllers/invoice.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"photostudio-backend/config"
	"photostudio-backend/metrics"
	"photostudio-backend/models"
	"photostudio-backend/services"
	"photostudio-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceItemInput defines the structure for a billed service line
type InvoiceItemInput struct {
	ServiceID  uuid.UUID `json:"serviceId" binding:"required"`
	Quantity   int       `json:"quantity"`
	Days       int       `json:"days"`
	RatePerDay *float64  `json:"ratePerDay"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an
// invoice. When QuotationID is set, event fields, items and discount/tax
// default to the quotation's values unless explicitly supplied.
type CreateInvoiceInput struct {
	ClientID        uuid.UUID          `json:"clientId" binding:"required"`
	QuotationID     *uuid.UUID         `json:"quotationId"`
	EventType       string             `json:"eventType" binding:"omitempty,oneof=Wedding Pre-wedding Other"`
	InvoiceDate     *time.Time         `json:"invoiceDate"`
	EventDate       *time.Time         `json:"eventDate"`
	DueDate         time.Time          `json:"dueDate" binding:"required"`
	Items           []InvoiceItemInput `json:"items"`
	Discount        *float64           `json:"discount" binding:"omitempty,min=0"`
	DiscountType    string             `json:"discountType" binding:"omitempty,oneof=fixed percentage"`
	TaxPercentage   *float64           `json:"taxPercentage" binding:"omitempty,min=0,max=100"`
	BankDetails     models.BankDetails `json:"bankDetails"`
	Notes           string             `json:"notes"`
	ThankYouMessage string             `json:"thankYouMessage"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating an
// invoice. PaymentStatus is intentionally absent: it is derived from the
// payment ledger and cannot be set by callers.
type UpdateInvoiceInput struct {
	ClientID        *uuid.UUID          `json:"clientId"`
	EventType       *string             `json:"eventType" binding:"omitempty,oneof=Wedding Pre-wedding Other"`
	InvoiceDate     *time.Time          `json:"invoiceDate"`
	EventDate       *time.Time          `json:"eventDate"`
	DueDate         *time.Time          `json:"dueDate"`
	Items           *[]InvoiceItemInput `json:"items"`
	Discount        *float64            `json:"discount" binding:"omitempty,min=0"`
	DiscountType    *string             `json:"discountType" binding:"omitempty,oneof=fixed percentage"`
	TaxPercentage   *float64            `json:"taxPercentage" binding:"omitempty,min=0,max=100"`
	BankDetails     *models.BankDetails `json:"bankDetails"`
	Notes           *string             `json:"notes"`
	ThankYouMessage *string             `json:"thankYouMessage"`
}

// RecordPaymentInput defines the expected JSON structure for recording a payment
type RecordPaymentInput struct {
	Amount        float64    `json:"amount" binding:"required,gt=0"`
	PaymentMethod string     `json:"paymentMethod" binding:"required"`
	PaymentDate   *time.Time `json:"paymentDate"`
	TransactionID string     `json:"transactionId"`
	Notes         string     `json:"notes"`
}

func buildInvoiceItems(tx *gorm.DB, inputs []InvoiceItemInput) ([]models.InvoiceItem, []services.LineInput, error) {
	var items []models.InvoiceItem
	var lines []services.LineInput

	for _, item := range inputs {
		var service models.Service
		if err := tx.Where("id = ?", item.ServiceID).First(&service).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, errServiceNotFound(item.ServiceID)
			}
			return nil, nil, err
		}

		rate := service.RatePerDay
		if item.RatePerDay != nil {
			rate = *item.RatePerDay
		}

		lines = append(lines, services.LineInput{Quantity: item.Quantity, Days: item.Days, RatePerDay: rate})

		items = append(items, models.InvoiceItem{
			ID:          uuid.New(),
			ServiceID:   service.ID,
			ServiceName: service.Name,
			Quantity:    maxInt(item.Quantity, 1),
			Days:        maxInt(item.Days, 1),
			RatePerDay:  rate,
			Total:       services.ComputeLineTotal(item.Quantity, item.Days, rate),
		})
	}
	return items, lines, nil
}

// CreateInvoice creates a billed document, either directly or by converting an
// accepted quotation. Conversion marks the quotation converted and links both
// ways; the invoice write, the quotation update and the client ledger refresh
// all commit or roll back together.
func CreateInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate client exists
	var client models.Client
	if err := config.DB.Where("id = ?", input.ClientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Resolve the source quotation, if converting
	var quotation *models.Quotation
	if input.QuotationID != nil {
		var q models.Quotation
		if err := tx.Preload("Items").Where("id = ?", *input.QuotationID).First(&q).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Quotation not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		if q.ConvertedToInvoice {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusConflict, "Quotation has already been converted to an invoice")
			return
		}
		quotation = &q
	}

	// Fill event fields and pricing inputs from the quotation when converting
	eventType := input.EventType
	eventDate := input.EventDate
	discount := 0.0
	discountType := input.DiscountType
	taxPercentage := 0.0

	if input.Discount != nil {
		discount = *input.Discount
	}
	if input.TaxPercentage != nil {
		taxPercentage = *input.TaxPercentage
	}

	if quotation != nil {
		if eventType == "" {
			eventType = quotation.EventType
		}
		if eventDate == nil {
			eventDate = &quotation.EventDate
		}
		if input.Discount == nil {
			discount = quotation.Discount
		}
		if discountType == "" {
			discountType = quotation.DiscountType
		}
		if input.TaxPercentage == nil {
			taxPercentage = quotation.TaxPercentage
		}
	}
	if discountType == "" {
		discountType = services.DiscountTypeFixed
	}

	if eventType == "" || eventDate == nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusBadRequest, "Event type and event date are required")
		return
	}

	// Build line items: explicit input wins, otherwise copy the quotation's
	var items []models.InvoiceItem
	var lines []services.LineInput
	if len(input.Items) > 0 {
		var err error
		items, lines, err = buildInvoiceItems(tx, input.Items)
		if err != nil {
			tx.Rollback()
			var nf serviceNotFoundError
			if errors.As(err, &nf) {
				utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	} else if quotation != nil {
		for _, qi := range quotation.Items {
			items = append(items, models.InvoiceItem{
				ID:          uuid.New(),
				ServiceID:   qi.ServiceID,
				ServiceName: qi.ServiceName,
				Quantity:    qi.Quantity,
				Days:        qi.Days,
				RatePerDay:  qi.RatePerDay,
				Total:       services.ComputeLineTotal(qi.Quantity, qi.Days, qi.RatePerDay),
			})
			lines = append(lines, services.LineInput{Quantity: qi.Quantity, Days: qi.Days, RatePerDay: qi.RatePerDay})
		}
	}
	if len(items) == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusBadRequest, "At least one line item is required")
		return
	}

	totals := services.ComputeTotals(lines, discount, discountType, taxPercentage)

	now := time.Now()
	number, err := services.NextDocumentNumber(tx, services.DocTypeInvoice, now)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate invoice number")
		return
	}

	invoiceDate := now
	if input.InvoiceDate != nil {
		invoiceDate = *input.InvoiceDate
	}

	thankYou := input.ThankYouMessage
	if thankYou == "" {
		thankYou = models.DefaultInvoiceThankYou
	}

	invoice := models.Invoice{
		ID:              uuid.New(),
		InvoiceNumber:   number,
		ClientID:        input.ClientID,
		QuotationID:     input.QuotationID,
		EventType:       eventType,
		InvoiceDate:     invoiceDate,
		EventDate:       *eventDate,
		DueDate:         input.DueDate,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Discount:        discount,
		DiscountType:    discountType,
		TaxPercentage:   taxPercentage,
		Tax:             totals.Tax,
		GrandTotal:      totals.GrandTotal,
		PaymentStatus:   models.PaymentStatusUnpaid,
		BankDetails:     input.BankDetails,
		Notes:           input.Notes,
		ThankYouMessage: thankYou,
	}

	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	// Mark the quotation converted and link both ways
	if quotation != nil {
		if err := tx.Model(&models.Quotation{}).Where("id = ?", quotation.ID).
			Updates(map[string]interface{}{
				"converted_to_invoice": true,
				"invoice_id":           invoice.ID,
				"status":               models.QuotationStatusAccepted,
			}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to link quotation")
			return
		}
	}

	// Refresh the client's cached ledger totals
	if err := services.RecalculateClientLedger(tx, invoice.ClientID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client ledger")
		return
	}

	tx.Commit()
	metrics.InvoicesCreated.Inc()

	config.DB.Preload("Client").Preload("Items").Preload("Quotation").First(&invoice, "id = ?", invoice.ID)
	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices retrieves invoices, optionally filtered by payment status,
// client, or overdue=true (past due date and not fully paid)
func GetInvoices(c *gin.Context) {
	query := config.DB.Preload("Client").Preload("Items").Order("created_at desc")

	if status := c.Query("paymentStatus"); status != "" {
		if status != models.PaymentStatusUnpaid && status != models.PaymentStatusPartiallyPaid && status != models.PaymentStatusPaid {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment status filter")
			return
		}
		query = query.Where("payment_status = ?", status)
	}
	if clientID := c.Query("clientId"); clientID != "" {
		clientUUID, err := uuid.Parse(clientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", clientUUID)
	}
	if c.Query("overdue") == "true" {
		today := utils.BeginningOfDay(time.Now())
		query = query.Where("due_date < ? AND payment_status <> ?", today, models.PaymentStatusPaid).
			Order("due_date asc")
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves a specific invoice by ID
func GetInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice models.Invoice
	if err := config.DB.Preload("Client").Preload("Items").Preload("Quotation").
		Where("id = ?", invoiceUUID).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice applies a partial update, recomputes totals server-side and
// re-derives the payment status against the new grand total.
func UpdateInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoice models.Invoice
	if err := tx.Preload("Items").Where("id = ?", invoiceUUID).First(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	previousClientID := invoice.ClientID

	if input.ClientID != nil {
		var client models.Client
		if err := tx.Where("id = ?", *input.ClientID).First(&client).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Client not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		invoice.ClientID = *input.ClientID
	}

	if input.EventType != nil {
		invoice.EventType = *input.EventType
	}
	if input.InvoiceDate != nil {
		invoice.InvoiceDate = *input.InvoiceDate
	}
	if input.EventDate != nil {
		invoice.EventDate = *input.EventDate
	}
	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}
	if input.BankDetails != nil {
		invoice.BankDetails = *input.BankDetails
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}
	if input.ThankYouMessage != nil {
		invoice.ThankYouMessage = *input.ThankYouMessage
	}
	if input.Discount != nil {
		invoice.Discount = *input.Discount
	}
	if input.DiscountType != nil {
		invoice.DiscountType = *input.DiscountType
	}
	if input.TaxPercentage != nil {
		invoice.TaxPercentage = *input.TaxPercentage
	}

	if input.Items != nil {
		if len(*input.Items) == 0 {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, "At least one line item is required")
			return
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to clear existing items")
			return
		}

		items, _, err := buildInvoiceItems(tx, *input.Items)
		if err != nil {
			tx.Rollback()
			var nf serviceNotFoundError
			if errors.As(err, &nf) {
				utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		invoice.Items = items
	}

	// Recompute totals and re-derive payment status against the new grand total
	var lines []services.LineInput
	for _, item := range invoice.Items {
		lines = append(lines, services.LineInput{Quantity: item.Quantity, Days: item.Days, RatePerDay: item.RatePerDay})
	}
	totals := services.ComputeTotals(lines, invoice.Discount, invoice.DiscountType, invoice.TaxPercentage)
	invoice.Subtotal = totals.Subtotal
	invoice.Tax = totals.Tax
	invoice.GrandTotal = totals.GrandTotal

	received, err := services.InvoiceAmountReceived(tx, invoice.ID)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sum payments")
		return
	}
	invoice.PaymentStatus = services.DerivePaymentStatus(received, invoice.GrandTotal)

	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	if err := services.RecalculateClientLedger(tx, invoice.ClientID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client ledger")
		return
	}
	if previousClientID != invoice.ClientID {
		if err := services.RecalculateClientLedger(tx, previousClientID); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client ledger")
			return
		}
	}

	tx.Commit()

	config.DB.Preload("Client").Preload("Items").Preload("Quotation").First(&invoice, "id = ?", invoice.ID)
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice hard-deletes an invoice, its items and its payments, resets
// the source quotation's conversion state and refreshes the client ledger —
// all in one transaction.
func DeleteInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoice models.Invoice
	if err := tx.Where("id = ?", invoiceUUID).First(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.Payment{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete payments")
		return
	}

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice items")
		return
	}

	if err := tx.Delete(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}

	// Reset the quotation's conversion state
	if invoice.QuotationID != nil {
		if err := tx.Model(&models.Quotation{}).Where("id = ?", *invoice.QuotationID).
			Updates(map[string]interface{}{
				"converted_to_invoice": false,
				"invoice_id":           nil,
			}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reset quotation")
			return
		}
	}

	if err := services.RecalculateClientLedger(tx, invoice.ClientID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client ledger")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// GetInvoicePayments lists the payment ledger for one invoice
func GetInvoicePayments(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var invoice models.Invoice
	if err := config.DB.Where("id = ?", invoiceUUID).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var payments []models.Payment
	if err := config.DB.Where("invoice_id = ?", invoice.ID).
		Order("payment_date asc").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}

	var received float64
	for _, p := range payments {
		received += p.Amount
	}

	c.JSON(http.StatusOK, gin.H{
		"payments":       payments,
		"amountReceived": received,
		"balance":        invoice.GrandTotal - received,
		"paymentStatus":  invoice.PaymentStatus,
	})
}

// RecordPayment appends an immutable payment to an invoice's ledger, re-derives
// the invoice's payment status and refreshes the client's cached totals, all in
// one transaction.
func RecordPayment(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !models.IsValidPaymentMethod(input.PaymentMethod) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment method")
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var invoice models.Invoice
	if err := tx.Where("id = ?", invoiceUUID).First(&invoice).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment := models.Payment{
		ID:            uuid.New(),
		InvoiceID:     invoice.ID,
		ClientID:      invoice.ClientID,
		Amount:        input.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: input.PaymentMethod,
		TransactionID: input.TransactionID,
		Notes:         input.Notes,
	}

	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	received, err := services.InvoiceAmountReceived(tx, invoice.ID)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sum payments")
		return
	}

	status := services.DerivePaymentStatus(received, invoice.GrandTotal)
	if err := tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
		Update("payment_status", status).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update payment status")
		return
	}

	if err := services.RecalculateClientLedger(tx, invoice.ClientID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client ledger")
		return
	}

	tx.Commit()
	metrics.PaymentsRecorded.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"payment":        payment,
		"paymentStatus":  status,
		"amountReceived": received,
		"balance":        invoice.GrandTotal - received,
	})
}
