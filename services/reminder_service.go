// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"photostudio-backend/models"
	"photostudio-backend/utils"
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendOverduePaymentReminders)

	c.Start()
	log.Println("Payment reminder scheduler started")
}

// SendOverduePaymentReminders notifies every client whose invoice is past its
// due date and not fully paid. Each send is logged to reminder_logs.
func (s *ReminderService) SendOverduePaymentReminders() {
	log.Println("Starting overdue payment reminder processing...")

	invoices, err := s.getOverdueInvoices()
	if err != nil {
		log.Printf("Failed to fetch overdue invoices: %v", err)
		return
	}

	for _, invoice := range invoices {
		s.sendReminder(invoice)
	}

	log.Printf("Overdue payment reminder processing completed (%d invoices)", len(invoices))
}

func (s *ReminderService) getOverdueInvoices() ([]models.Invoice, error) {
	today := utils.BeginningOfDay(time.Now())

	var invoices []models.Invoice
	err := s.db.Preload("Client").
		Where("due_date < ? AND payment_status <> ?", today, models.PaymentStatusPaid).
		Order("due_date asc").
		Find(&invoices).Error
	return invoices, err
}

func (s *ReminderService) sendReminder(invoice models.Invoice) {
	received, err := InvoiceAmountReceived(s.db, invoice.ID)
	if err != nil {
		log.Printf("Invoice %s: failed to sum payments: %v", invoice.InvoiceNumber, err)
		return
	}
	balance := invoice.GrandTotal - received
	daysOverdue := utils.DaysBetween(invoice.DueDate, time.Now())

	message := fmt.Sprintf(
		"Dear %s, your invoice %s has a pending balance of ₹%.0f (due %s, %d days overdue). Kindly arrange the payment. Thank you!",
		invoice.Client.Name, invoice.InvoiceNumber, balance, invoice.DueDate.Format("02 Jan 2006"), daysOverdue)

	// Determine channel (WhatsApp if phone is in E.164 format, else SMS)
	channel := "sms"
	to := invoice.Client.Phone
	if strings.HasPrefix(to, "+") {
		to = "whatsapp:" + to
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send reminder for %s: %v", invoice.InvoiceNumber, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Reminder sent for %s, SID: %s", invoice.InvoiceNumber, *resp.Sid)
	} else {
		log.Printf("Reminder sent for %s, but no SID returned", invoice.InvoiceNumber)
	}

	reminderLog := models.ReminderLog{
		InvoiceID:    invoice.ID,
		ClientID:     invoice.ClientID,
		Message:      message,
		Channel:      channel,
		Status:       status,
		ErrorMessage: errorMsg,
		SentAt:       time.Now(),
	}

	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for invoice %s: %v", invoice.InvoiceNumber, err)
	}
}
