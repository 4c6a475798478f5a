package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Calendar CalendarConfig
	Checkout CheckoutConfig
	Meeting  MeetingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type GatewayConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

type CalendarConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type CheckoutConfig struct {
	MinAmount float64
	// BookingReuseExisting controls the duplicate-booking policy: when true,
	// a checkout for an owner/date/time that already has a non-cancelled
	// booking returns the existing booking instead of erroring.
	BookingReuseExisting bool
	// CaseDedupWindow is the trailing window inside which a case checkout for
	// the same owner, payer email and amount reuses the existing case.
	CaseDedupWindow time.Duration
}

type MeetingConfig struct {
	DurationMinutes int
	// CaseLeadTime is how far out a meeting is scheduled for cases, which
	// carry no date of their own.
	CaseLeadTime time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("GATEWAY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("GATEWAY_MAX_RETRIES", 2)
	viper.SetDefault("CALENDAR_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CHECKOUT_MIN_AMOUNT", 1.0)
	viper.SetDefault("CHECKOUT_BOOKING_REUSE_EXISTING", true)
	viper.SetDefault("CHECKOUT_CASE_DEDUP_MINUTES", 5)
	viper.SetDefault("MEETING_DURATION_MINUTES", 60)
	viper.SetDefault("MEETING_CASE_LEAD_HOURS", 24)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Gateway: GatewayConfig{
			BaseURL:    viper.GetString("GATEWAY_BASE_URL"),
			APIKey:     viper.GetString("GATEWAY_API_KEY"),
			Timeout:    time.Duration(viper.GetInt("GATEWAY_TIMEOUT_SECONDS")) * time.Second,
			MaxRetries: viper.GetInt("GATEWAY_MAX_RETRIES"),
		},
		Calendar: CalendarConfig{
			BaseURL: viper.GetString("CALENDAR_BASE_URL"),
			APIKey:  viper.GetString("CALENDAR_API_KEY"),
			Timeout: time.Duration(viper.GetInt("CALENDAR_TIMEOUT_SECONDS")) * time.Second,
		},
		Checkout: CheckoutConfig{
			MinAmount:            viper.GetFloat64("CHECKOUT_MIN_AMOUNT"),
			BookingReuseExisting: viper.GetBool("CHECKOUT_BOOKING_REUSE_EXISTING"),
			CaseDedupWindow:      time.Duration(viper.GetInt("CHECKOUT_CASE_DEDUP_MINUTES")) * time.Minute,
		},
		Meeting: MeetingConfig{
			DurationMinutes: viper.GetInt("MEETING_DURATION_MINUTES"),
			CaseLeadTime:    time.Duration(viper.GetInt("MEETING_CASE_LEAD_HOURS")) * time.Hour,
		},
	}

	return config, nil
}
