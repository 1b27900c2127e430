package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
	} `mapstructure:"jwt"`

	Twilio struct {
		AccountSID     string `mapstructure:"account_sid"`
		AuthToken      string `mapstructure:"auth_token"`
		PhoneNumber    string `mapstructure:"phone_number"`
		WhatsAppNumber string `mapstructure:"whatsapp_number"`
	} `mapstructure:"twilio"`
}

// C is the loaded application config.
var C Config

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "photostudio")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	if err := v.Unmarshal(&C); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		C.Database.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		C.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		C.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		C.Database.Name = name
	}

	if C.JWT.Secret == "" {
		C.JWT.Secret = os.Getenv("JWT_SECRET")
	}
	if C.Twilio.AccountSID == "" {
		C.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if C.Twilio.AuthToken == "" {
		C.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}

	return &C
}
