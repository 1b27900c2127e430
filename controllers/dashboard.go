// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"photostudio-backend/config"
	"photostudio-backend/models"
	"photostudio-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalClients      int64            `json:"totalClients"`
	TotalQuotations   int64            `json:"totalQuotations"`
	OpenQuotations    int64            `json:"openQuotations"`
	TotalInvoices     int64            `json:"totalInvoices"`
	OverdueInvoices   int64            `json:"overdueInvoices"`
	MonthlyCollection float64          `json:"monthlyCollection"`
	TotalOutstanding  float64          `json:"totalOutstanding"`
	RecentInvoices    []models.Invoice `json:"recentInvoices"`
}

// GetDashboardOverview returns the studio-wide summary for the dashboard
func GetDashboardOverview(c *gin.Context) {
	var overview DashboardOverview

	if err := config.DB.Model(&models.Client{}).Count(&overview.TotalClients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count clients")
		return
	}

	if err := config.DB.Model(&models.Quotation{}).Count(&overview.TotalQuotations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count quotations")
		return
	}

	// Quotations still in play: drafted or sent, not yet decided
	if err := config.DB.Model(&models.Quotation{}).
		Where("status IN ?", []string{models.QuotationStatusDraft, models.QuotationStatusSent}).
		Count(&overview.OpenQuotations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count open quotations")
		return
	}

	if err := config.DB.Model(&models.Invoice{}).Count(&overview.TotalInvoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count invoices")
		return
	}

	today := utils.BeginningOfDay(time.Now())
	if err := config.DB.Model(&models.Invoice{}).
		Where("due_date < ? AND payment_status <> ?", today, models.PaymentStatusPaid).
		Count(&overview.OverdueInvoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count overdue invoices")
		return
	}

	// Cash actually received this month
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := config.DB.Model(&models.Payment{}).
		Where("payment_date >= ?", firstOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&overview.MonthlyCollection).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sum monthly collection")
		return
	}

	// Outstanding across all clients: billed minus received
	var billed, received float64
	if err := config.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(grand_total), 0)").Scan(&billed).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sum billed amount")
		return
	}
	if err := config.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&received).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sum received amount")
		return
	}
	overview.TotalOutstanding = billed - received

	if err := config.DB.Preload("Client").
		Order("created_at desc").Limit(5).
		Find(&overview.RecentInvoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load recent invoices")
		return
	}

	c.JSON(http.StatusOK, overview)
}
