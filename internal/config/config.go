package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	WhatsApp WhatsAppConfig
	Loyalty  LoyaltyConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// WhatsAppConfig holds WhatsApp Business API gateway configuration
type WhatsAppConfig struct {
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
	MockGateway   bool
}

// LoyaltyConfig holds the loyalty program defaults applied to new tenants and
// the background sweep schedule.
type LoyaltyConfig struct {
	RedemptionExpiryHours    int
	ClaimExpiryHours         int
	SweepIntervalSeconds     int
	HighAmountMinor          int64
	NewCustomerWindowDays    int
	RejectionRatePercent     int
	RepeatedAmountWindowDays int
	WelcomeBonusPoints       int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "kolekt")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("WhatsApp.BaseURL", "https://graph.facebook.com/v18.0")
	viper.SetDefault("WhatsApp.MockGateway", true)
	viper.SetDefault("Loyalty.RedemptionExpiryHours", 24)
	viper.SetDefault("Loyalty.ClaimExpiryHours", 72)
	viper.SetDefault("Loyalty.SweepIntervalSeconds", 300)
	viper.SetDefault("Loyalty.HighAmountMinor", 5000000)
	viper.SetDefault("Loyalty.NewCustomerWindowDays", 7)
	viper.SetDefault("Loyalty.RejectionRatePercent", 50)
	viper.SetDefault("Loyalty.RepeatedAmountWindowDays", 7)
	viper.SetDefault("Loyalty.WelcomeBonusPoints", 10)
}
