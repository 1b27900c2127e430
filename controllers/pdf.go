package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"photostudio-backend/config"
	"photostudio-backend/models"
	"photostudio-backend/pdf"
	"photostudio-backend/utils"
)

// GetQuotationPDF renders a quotation as a downloadable PDF.
func GetQuotationPDF(c *gin.Context) {
	id := c.Param("id")

	var quotation models.Quotation
	if err := config.DB.Preload("Client").Preload("Items").First(&quotation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quotation not found")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch quotation")
		return
	}

	data, err := pdf.RenderQuotation(&quotation)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", quotation.QuotationNumber))
	c.Data(http.StatusOK, "application/pdf", data)
}

// GetInvoicePDF renders an invoice as a downloadable PDF.
func GetInvoicePDF(c *gin.Context) {
	id := c.Param("id")

	var invoice models.Invoice
	if err := config.DB.Preload("Client").Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch invoice")
		return
	}

	data, err := pdf.RenderInvoice(&invoice)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", invoice.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", data)
}
