// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"photostudio-backend/config"
	"photostudio-backend/models"
	"photostudio-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateServiceInput defines the expected JSON structure for creating a catalog service
type CreateServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"omitempty,oneof=photography video drone product other"`
	RatePerDay  float64 `json:"ratePerDay" binding:"required,min=0"`
	RatePerUnit float64 `json:"ratePerUnit" binding:"min=0"`
}

// UpdateServiceInput defines the expected JSON structure for updating a catalog service
type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,oneof=photography video drone product other"`
	RatePerDay  *float64 `json:"ratePerDay" binding:"omitempty,min=0"`
	RatePerUnit *float64 `json:"ratePerUnit" binding:"omitempty,min=0"`
	IsActive    *bool    `json:"isActive"`
}

// CreateService creates a new catalog service
func CreateService(c *gin.Context) {
	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	category := input.Category
	if category == "" {
		category = "photography"
	}

	service := models.Service{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Category:    category,
		RatePerDay:  input.RatePerDay,
		RatePerUnit: input.RatePerUnit,
		IsActive:    true,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetServices retrieves all catalog services
func GetServices(c *gin.Context) {
	query := config.DB.Order("name asc")

	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService retrieves a specific catalog service by ID
func GetService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var service models.Service
	if err := config.DB.Where("id = ?", serviceUUID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateService updates an existing catalog service. Rate changes never touch
// already-issued documents: line items hold snapshots.
func UpdateService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := config.DB.Where("id = ?", serviceUUID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.RatePerDay != nil {
		service.RatePerDay = *input.RatePerDay
	}
	if input.RatePerUnit != nil {
		service.RatePerUnit = *input.RatePerUnit
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteService deletes a catalog service
func DeleteService(c *gin.Context) {
	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var service models.Service
	if err := config.DB.Where("id = ?", serviceUUID).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
