// controllers/quotation.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"photostudio-backend/config"
	"photostudio-backend/models"
	"photostudio-backend/services"
	"photostudio-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuotationItemInput defines the structure for a quoted service line.
// RatePerDay is optional; when omitted the current catalog rate is snapshotted.
type QuotationItemInput struct {
	ServiceID  uuid.UUID `json:"serviceId" binding:"required"`
	Quantity   int       `json:"quantity"`
	Days       int       `json:"days"`
	RatePerDay *float64  `json:"ratePerDay"`
}

// CreateQuotationInput defines the expected JSON structure for creating a quotation
type CreateQuotationInput struct {
	ClientID        uuid.UUID            `json:"clientId" binding:"required"`
	EventType       string               `json:"eventType" binding:"required,oneof=Wedding Pre-wedding Other"`
	QuotationDate   *time.Time           `json:"quotationDate"`
	EventDate       time.Time            `json:"eventDate" binding:"required"`
	ValidityDate    time.Time            `json:"validityDate" binding:"required"`
	Items           []QuotationItemInput `json:"items" binding:"required,min=1"`
	Discount        float64              `json:"discount" binding:"min=0"`
	DiscountType    string               `json:"discountType" binding:"omitempty,oneof=fixed percentage"`
	TaxPercentage   float64              `json:"taxPercentage" binding:"min=0,max=100"`
	PaymentTerms    string               `json:"paymentTerms"`
	Notes           string               `json:"notes"`
	ThankYouMessage string               `json:"thankYouMessage"`
	Status          string               `json:"status" binding:"omitempty,oneof=Draft Sent Accepted Rejected"`
}

// UpdateQuotationInput defines the expected JSON structure for updating a quotation
type UpdateQuotationInput struct {
	ClientID        *uuid.UUID            `json:"clientId"`
	EventType       *string               `json:"eventType" binding:"omitempty,oneof=Wedding Pre-wedding Other"`
	QuotationDate   *time.Time            `json:"quotationDate"`
	EventDate       *time.Time            `json:"eventDate"`
	ValidityDate    *time.Time            `json:"validityDate"`
	Items           *[]QuotationItemInput `json:"items"`
	Discount        *float64              `json:"discount" binding:"omitempty,min=0"`
	DiscountType    *string               `json:"discountType" binding:"omitempty,oneof=fixed percentage"`
	TaxPercentage   *float64              `json:"taxPercentage" binding:"omitempty,min=0,max=100"`
	PaymentTerms    *string               `json:"paymentTerms"`
	Notes           *string               `json:"notes"`
	ThankYouMessage *string               `json:"thankYouMessage"`
	Status          *string               `json:"status" binding:"omitempty,oneof=Draft Sent Accepted Rejected"`
}

// buildQuotationItems resolves each line against the service catalog,
// snapshotting name and rate, and prices the line server-side. Caller-supplied
// totals are never trusted.
func buildQuotationItems(tx *gorm.DB, inputs []QuotationItemInput) ([]models.QuotationItem, []services.LineInput, error) {
	var items []models.QuotationItem
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

		line := services.LineInput{Quantity: item.Quantity, Days: item.Days, RatePerDay: rate}
		lines = append(lines, line)

		items = append(items, models.QuotationItem{
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

type serviceNotFoundError struct{ id uuid.UUID }

func (e serviceNotFoundError) Error() string { return "Service not found: " + e.id.String() }

func errServiceNotFound(id uuid.UUID) error { return serviceNotFoundError{id: id} }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CreateQuotation creates a new priced proposal for a client
func CreateQuotation(c *gin.Context) {
	var input CreateQuotationInput
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

	items, lines, err := buildQuotationItems(tx, input.Items)
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

	discountType := input.DiscountType
	if discountType == "" {
		discountType = services.DiscountTypeFixed
	}
	totals := services.ComputeTotals(lines, input.Discount, discountType, input.TaxPercentage)

	now := time.Now()
	number, err := services.NextDocumentNumber(tx, services.DocTypeQuotation, now)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate quotation number")
		return
	}

	quotationDate := now
	if input.QuotationDate != nil {
		quotationDate = *input.QuotationDate
	}

	status := input.Status
	if status == "" {
		status = models.QuotationStatusDraft
	}

	paymentTerms := input.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = models.DefaultPaymentTerms
	}

	thankYou := input.ThankYouMessage
	if thankYou == "" {
		thankYou = models.DefaultQuotationThankYou
	}

	quotation := models.Quotation{
		ID:              uuid.New(),
		QuotationNumber: number,
		ClientID:        input.ClientID,
		EventType:       input.EventType,
		QuotationDate:   quotationDate,
		EventDate:       input.EventDate,
		ValidityDate:    input.ValidityDate,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Discount:        input.Discount,
		DiscountType:    discountType,
		TaxPercentage:   input.TaxPercentage,
		Tax:             totals.Tax,
		GrandTotal:      totals.GrandTotal,
		PaymentTerms:    paymentTerms,
		Notes:           input.Notes,
		ThankYouMessage: thankYou,
		Status:          status,
	}

	if err := tx.Create(&quotation).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create quotation")
		return
	}

	tx.Commit()

	config.DB.Preload("Client").Preload("Items").First(&quotation, "id = ?", quotation.ID)
	c.JSON(http.StatusCreated, quotation)
}

// GetQuotations retrieves quotations, optionally filtered by status or client
func GetQuotations(c *gin.Context) {
	query := config.DB.Preload("Client").Preload("Items").Order("created_at desc")

	if status := c.Query("status"); status != "" {
		if !models.IsValidQuotationStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("clientId"); clientID != "" {
		clientUUID, err := uuid.Parse(clientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", clientUUID)
	}

	var quotations []models.Quotation
	if err := query.Find(&quotations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve quotations")
		return
	}

	c.JSON(http.StatusOK, quotations)
}

// GetQuotation retrieves a specific quotation by ID
func GetQuotation(c *gin.Context) {
	quotationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	var quotation models.Quotation
	if err := config.DB.Preload("Client").Preload("Items").
		Where("id = ?", quotationUUID).First(&quotation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quotation not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, quotation)
}

// UpdateQuotation applies a partial update. Totals are always recomputed
// server-side from the resulting line items and discount/tax fields before
// the quotation is persisted.
func UpdateQuotation(c *gin.Context) {
	quotationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	var input UpdateQuotationInput
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

	var quotation models.Quotation
	if err := tx.Preload("Items").Where("id = ?", quotationUUID).First(&quotation).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quotation not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

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
		quotation.ClientID = *input.ClientID
	}

	if input.EventType != nil {
		quotation.EventType = *input.EventType
	}
	if input.QuotationDate != nil {
		quotation.QuotationDate = *input.QuotationDate
	}
	if input.EventDate != nil {
		quotation.EventDate = *input.EventDate
	}
	if input.ValidityDate != nil {
		quotation.ValidityDate = *input.ValidityDate
	}
	if input.PaymentTerms != nil {
		quotation.PaymentTerms = *input.PaymentTerms
	}
	if input.Notes != nil {
		quotation.Notes = *input.Notes
	}
	if input.ThankYouMessage != nil {
		quotation.ThankYouMessage = *input.ThankYouMessage
	}
	if input.Status != nil {
		quotation.Status = *input.Status
	}
	if input.Discount != nil {
		quotation.Discount = *input.Discount
	}
	if input.DiscountType != nil {
		quotation.DiscountType = *input.DiscountType
	}
	if input.TaxPercentage != nil {
		quotation.TaxPercentage = *input.TaxPercentage
	}

	// If items are being replaced, rebuild them from the catalog
	if input.Items != nil {
		if len(*input.Items) == 0 {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusBadRequest, "At least one line item is required")
			return
		}

		if err := tx.Where("quotation_id = ?", quotation.ID).Delete(&models.QuotationItem{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to clear existing items")
			return
		}

		items, _, err := buildQuotationItems(tx, *input.Items)
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
			items[i].QuotationID = quotation.ID
		}
		quotation.Items = items
	}

	// Recompute totals from whatever the quotation now holds
	var lines []services.LineInput
	for _, item := range quotation.Items {
		lines = append(lines, services.LineInput{Quantity: item.Quantity, Days: item.Days, RatePerDay: item.RatePerDay})
	}
	totals := services.ComputeTotals(lines, quotation.Discount, quotation.DiscountType, quotation.TaxPercentage)
	quotation.Subtotal = totals.Subtotal
	quotation.Tax = totals.Tax
	quotation.GrandTotal = totals.GrandTotal

	if err := tx.Save(&quotation).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quotation")
		return
	}

	tx.Commit()

	config.DB.Preload("Client").Preload("Items").First(&quotation, "id = ?", quotation.ID)
	c.JSON(http.StatusOK, quotation)
}

// DuplicateQuotation clones a quotation into a fresh Draft with a new number.
// Conversion state is reset regardless of the original's.
func DuplicateQuotation(c *gin.Context) {
	quotationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	var source models.Quotation
	if err := config.DB.Preload("Items").Where("id = ?", quotationUUID).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quotation not found")
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

	now := time.Now()
	number, err := services.NextDocumentNumber(tx, services.DocTypeQuotation, now)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate quotation number")
		return
	}

	copyID := uuid.New()
	var items []models.QuotationItem
	for _, item := range source.Items {
		items = append(items, models.QuotationItem{
			ID:          uuid.New(),
			QuotationID: copyID,
			ServiceID:   item.ServiceID,
			ServiceName: item.ServiceName,
			Quantity:    item.Quantity,
			Days:        item.Days,
			RatePerDay:  item.RatePerDay,
			Total:       item.Total,
		})
	}

	duplicate := models.Quotation{
		ID:              copyID,
		QuotationNumber: number,
		ClientID:        source.ClientID,
		EventType:       source.EventType,
		QuotationDate:   now,
		EventDate:       source.EventDate,
		ValidityDate:    source.ValidityDate,
		Items:           items,
		Subtotal:        source.Subtotal,
		Discount:        source.Discount,
		DiscountType:    source.DiscountType,
		TaxPercentage:   source.TaxPercentage,
		Tax:             source.Tax,
		GrandTotal:      source.GrandTotal,
		PaymentTerms:    source.PaymentTerms,
		Notes:           source.Notes,
		ThankYouMessage: source.ThankYouMessage,
		Status:          models.QuotationStatusDraft,

		ConvertedToInvoice: false,
		InvoiceID:          nil,
	}

	if err := tx.Create(&duplicate).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to duplicate quotation")
		return
	}

	tx.Commit()

	config.DB.Preload("Client").Preload("Items").First(&duplicate, "id = ?", duplicate.ID)
	c.JSON(http.StatusCreated, duplicate)
}

// DeleteQuotation hard-deletes a quotation and its items. If it had been
// converted, the invoice's back-link is cleared in the same transaction.
func DeleteQuotation(c *gin.Context) {
	quotationUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quotation ID format")
		return
	}

	// Start transaction
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var quotation models.Quotation
	if err := tx.Where("id = ?", quotationUUID).First(&quotation).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quotation not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := tx.Where("quotation_id = ?", quotation.ID).Delete(&models.QuotationItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quotation items")
		return
	}

	if quotation.ConvertedToInvoice && quotation.InvoiceID != nil {
		if err := tx.Model(&models.Invoice{}).Where("id = ?", *quotation.InvoiceID).
			Update("quotation_id", nil).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unlink invoice")
			return
		}
	}

	if err := tx.Delete(&quotation).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quotation")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Quotation deleted successfully"})
}
