package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail driver names selectable via MAIL_DRIVER.
const (
	MailDriverSMTP        = "smtp"
	MailDriverGmailOAuth2 = "gmail_oauth2"
	MailDriverAPI         = "api"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string
	HTTPAddr    string
	// OperatorToken protects the manual-trigger endpoint. Empty disables the check.
	OperatorToken string
	LogLevel      string
	Environment   string

	// CronSpecMonthly is the recurring trigger schedule: one fixed day of month
	// and time of day at which the expiration check runs.
	CronSpecMonthly string

	MailDriver    string
	SenderAddress string
	SenderName    string
	SubjectPrefix string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	GoogleUserEmail    string

	MailAPIURL string
	MailAPIKey string

	MailSendTimeout     time.Duration
	DispatchConcurrency int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.OperatorToken = os.Getenv("OPERATOR_TOKEN")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecMonthly = os.Getenv("CRON_SPEC_MONTHLY")
	if cfg.CronSpecMonthly == "" {
		cfg.CronSpecMonthly = "0 8 1 * *" // Default: 08:00 on the 1st of the month
	}

	cfg.MailDriver = strings.ToLower(os.Getenv("MAIL_DRIVER"))
	if cfg.MailDriver == "" {
		cfg.MailDriver = MailDriverSMTP
	}

	cfg.SenderAddress = os.Getenv("MAIL_SENDER_ADDRESS")
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("MAIL_SENDER_ADDRESS is not set")
	}
	cfg.SenderName = os.Getenv("MAIL_SENDER_NAME")
	if cfg.SenderName == "" {
		cfg.SenderName = "EPI Compliance"
	}
	cfg.SubjectPrefix = os.Getenv("MAIL_SUBJECT_PREFIX")

	switch cfg.MailDriver {
	case MailDriverSMTP:
		cfg.SMTPHost = os.Getenv("SMTP_HOST")
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is not set")
		}
		portStr := os.Getenv("SMTP_PORT")
		if portStr == "" {
			portStr = "587"
		}
		cfg.SMTPPort, err = strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPUser = os.Getenv("SMTP_USER")
		cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	case MailDriverGmailOAuth2:
		cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
		if cfg.GoogleClientID == "" {
			return nil, fmt.Errorf("GOOGLE_CLIENT_ID is not set")
		}
		cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
		if cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("GOOGLE_CLIENT_SECRET is not set")
		}
		cfg.GoogleRefreshToken = os.Getenv("GOOGLE_REFRESH_TOKEN")
		if cfg.GoogleRefreshToken == "" {
			return nil, fmt.Errorf("GOOGLE_REFRESH_TOKEN is not set")
		}
		cfg.GoogleUserEmail = os.Getenv("GOOGLE_USER_EMAIL")
		if cfg.GoogleUserEmail == "" {
			return nil, fmt.Errorf("GOOGLE_USER_EMAIL is not set")
		}
	case MailDriverAPI:
		cfg.MailAPIURL = os.Getenv("MAIL_API_URL")
		if cfg.MailAPIURL == "" {
			return nil, fmt.Errorf("MAIL_API_URL is not set")
		}
		cfg.MailAPIKey = os.Getenv("MAIL_API_KEY")
		if cfg.MailAPIKey == "" {
			return nil, fmt.Errorf("MAIL_API_KEY is not set")
		}
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER: %q", cfg.MailDriver)
	}

	timeoutStr := os.Getenv("MAIL_SEND_TIMEOUT")
	if timeoutStr == "" {
		timeoutStr = "10s"
	}
	cfg.MailSendTimeout, err = time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_SEND_TIMEOUT: %w", err)
	}

	concurrencyStr := os.Getenv("DISPATCH_CONCURRENCY")
	if concurrencyStr == "" {
		concurrencyStr = "4"
	}
	cfg.DispatchConcurrency, err = strconv.Atoi(concurrencyStr)
	if err != nil || cfg.DispatchConcurrency < 1 {
		return nil, fmt.Errorf("invalid DISPATCH_CONCURRENCY: %q", concurrencyStr)
	}

	return cfg, nil
}
