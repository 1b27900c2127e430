package main

import (
	"fmt"

	"photostudio-backend/config"
	"photostudio-backend/models"
	"photostudio-backend/routes"
	"photostudio-backend/services"

	"github.com/gin-gonic/gin"
)

func init() {
	config.Load()
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Service{},
		&models.Quotation{},
		&models.QuotationItem{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.DocumentSequence{},
		&models.ReminderLog{},
	)
}

func main() {
	reminderService := services.NewReminderService(config.DB)
	reminderService.StartScheduler()

	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(fmt.Sprintf(":%d", config.C.Server.Port))
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
