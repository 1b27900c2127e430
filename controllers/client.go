// controllers/client.go
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

// CreateClientInput defines the expected JSON structure for creating a client
type CreateClientInput struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required"`
	Phone    string   `json:"phone" binding:"required"`
	Address  string   `json:"address"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	ZipCode  string   `json:"zipCode"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Notes    string   `json:"notes"`
}

// UpdateClientInput defines the expected JSON structure for updating a client.
// Ledger totals are not accepted: they are recomputed from invoices and
// payments, never set by callers.
type UpdateClientInput struct {
	Name     *string   `json:"name"`
	Email    *string   `json:"email"`
	Phone    *string   `json:"phone"`
	Address  *string   `json:"address"`
	City     *string   `json:"city"`
	State    *string   `json:"state"`
	ZipCode  *string   `json:"zipCode"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	Notes    *string   `json:"notes"`
}

func isValidClientCategory(category string) bool {
	switch category {
	case models.ClientCategoryRegular, models.ClientCategoryVIP, models.ClientCategoryNewInquiry:
		return true
	}
	return false
}

// CreateClient creates a new client
func CreateClient(c *gin.Context) {
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if !utils.ValidateEmail(input.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	category := input.Category
	if category == "" {
		category = models.ClientCategoryNewInquiry
	}
	if !isValidClientCategory(category) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client category")
		return
	}

	client := models.Client{
		ID:       uuid.New(),
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Address:  input.Address,
		City:     input.City,
		State:    input.State,
		ZipCode:  input.ZipCode,
		Category: category,
		Tags:     input.Tags,
		Notes:    input.Notes,
	}

	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClients retrieves all clients
func GetClients(c *gin.Context) {
	query := config.DB.Order("created_at desc")

	if category := c.Query("category"); category != "" {
		if !isValidClientCategory(category) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client category")
			return
		}
		query = query.Where("category = ?", category)
	}

	var clients []models.Client
	if err := query.Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient retrieves a specific client with their quotations and invoices
func GetClient(c *gin.Context) {
	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := config.DB.Preload("Quotations").Preload("Invoices").
		Where("id = ?", clientUUID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClient updates an existing client
func UpdateClient(c *gin.Context) {
	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var client models.Client
	if err := config.DB.Where("id = ?", clientUUID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Email != nil {
		if !utils.ValidateEmail(*input.Email) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
			return
		}
		client.Email = *input.Email
	}
	if input.Phone != nil {
		if !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.City != nil {
		client.City = *input.City
	}
	if input.State != nil {
		client.State = *input.State
	}
	if input.ZipCode != nil {
		client.ZipCode = *input.ZipCode
	}
	if input.Category != nil {
		if !isValidClientCategory(*input.Category) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client category")
			return
		}
		client.Category = *input.Category
	}
	if input.Tags != nil {
		client.Tags = *input.Tags
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}

	if err := config.DB.Save(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient deletes a client. Their quotations and invoices are kept:
// documents are owned by the studio and never cascade-deleted.
func DeleteClient(c *gin.Context) {
	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := config.DB.Where("id = ?", clientUUID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Delete(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
