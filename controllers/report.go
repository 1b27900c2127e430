// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"photostudio-backend/config"
	"photostudio-backend/models"
	"photostudio-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue float64          `json:"currentMonthRevenue"`
	MonthGrowth         float64          `json:"monthGrowth"`
	CurrentYearRevenue  float64          `json:"currentYearRevenue"`
	YearGrowth          float64          `json:"yearGrowth"`
	RevenueByEventType  []EventTypeSlice `json:"revenueByEventType"`
	TopClients          []ClientSummary  `json:"topClients"`
	QuickStats          QuickStatistics  `json:"quickStats"`
}

type EventTypeSlice struct {
	EventType string  `json:"eventType"`
	Count     int     `json:"count"`
	Billed    float64 `json:"billed"`
}

type ClientSummary struct {
	Name    string  `json:"name"`
	Billed  float64 `json:"billed"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
}

type QuickStatistics struct {
	TotalClients    int64   `json:"totalClients"`
	TotalInvoices   int64   `json:"totalInvoices"`
	AvgInvoiceValue float64 `json:"avgInvoiceValue"`
	CollectionRate  float64 `json:"collectionRate"` // received / billed, as a percentage
}

// GetReportAnalytics returns revenue analytics. Revenue here means cash
// received (payments), not amounts billed.
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	loc := now.Location()

	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, loc)
	firstOfNextMonth := firstOfMonth.AddDate(0, 1, 0)
	firstOfYear := time.Date(currentYear, 1, 1, 0, 0, 0, 0, loc)
	firstOfNextYear := firstOfYear.AddDate(1, 0, 0)

	currentMonthRevenue, err := rc.getRevenue(firstOfMonth, firstOfNextMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly revenue")
		return
	}
	lastMonthRevenue, err := rc.getRevenue(firstOfMonth.AddDate(0, -1, 0), firstOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last month revenue")
		return
	}
	currentYearRevenue, err := rc.getRevenue(firstOfYear, firstOfNextYear)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get yearly revenue")
		return
	}
	lastYearRevenue, err := rc.getRevenue(firstOfYear.AddDate(-1, 0, 0), firstOfYear)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last year revenue")
		return
	}

	var byEventType []EventTypeSlice
	if err := config.DB.Model(&models.Invoice{}).
		Select("event_type, COUNT(*) as count, COALESCE(SUM(grand_total), 0) as billed").
		Group("event_type").
		Order("billed desc").
		Scan(&byEventType).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get event type breakdown")
		return
	}

	var topClients []ClientSummary
	if err := config.DB.Model(&models.Client{}).
		Select("name, total_billed as billed, total_paid as paid, pending_amount as pending").
		Order("total_billed desc").
		Limit(5).
		Scan(&topClients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top clients")
		return
	}

	var totalClients, totalInvoices int64
	config.DB.Model(&models.Client{}).Count(&totalClients)
	config.DB.Model(&models.Invoice{}).Count(&totalInvoices)

	var totalBilled, totalReceived float64
	config.DB.Model(&models.Invoice{}).Select("COALESCE(SUM(grand_total), 0)").Scan(&totalBilled)
	config.DB.Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").Scan(&totalReceived)

	avgInvoiceValue := 0.0
	if totalInvoices > 0 {
		avgInvoiceValue = totalBilled / float64(totalInvoices)
	}
	collectionRate := 0.0
	if totalBilled > 0 {
		collectionRate = totalReceived / totalBilled * 100
	}

	c.JSON(http.StatusOK, AnalyticsSummary{
		CurrentMonthRevenue: currentMonthRevenue,
		MonthGrowth:         rc.calculateGrowthPercentage(currentMonthRevenue, lastMonthRevenue),
		CurrentYearRevenue:  currentYearRevenue,
		YearGrowth:          rc.calculateGrowthPercentage(currentYearRevenue, lastYearRevenue),
		RevenueByEventType:  byEventType,
		TopClients:          topClients,
		QuickStats: QuickStatistics{
			TotalClients:    totalClients,
			TotalInvoices:   totalInvoices,
			AvgInvoiceValue: avgInvoiceValue,
			CollectionRate:  collectionRate,
		},
	})
}

func (rc *ReportController) getRevenue(from, to time.Time) (float64, error) {
	var revenue float64
	err := config.DB.Model(&models.Payment{}).
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&revenue).Error
	return revenue, err
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
