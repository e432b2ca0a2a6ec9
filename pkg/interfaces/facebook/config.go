package facebook

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type FacebookConfig struct {
	// API Endpoints
	GraphBaseURL string

	// Webhook verification
	VerifyToken string

	// Rate Limiting (outbound writes)
	RateLimit     int
	RateWindow    int
	RetryAttempts int

	// Listing defaults
	CommentPageSize int
	PostScanLimit   int

	// General Config
	Logger *logrus.Logger
}

func NewFacebookConfig() (*FacebookConfig, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	// Load rate limiting from env or use defaults
	rateLimit, _ := strconv.Atoi(getEnvOrDefault("FB_RATE_LIMIT", "100"))
	rateWindow, _ := strconv.Atoi(getEnvOrDefault("FB_RATE_WINDOW", "15"))
	retryAttempts, _ := strconv.Atoi(getEnvOrDefault("FB_RETRY_ATTEMPTS", "3"))
	scanLimit, _ := strconv.Atoi(getEnvOrDefault("FB_POST_SCAN_LIMIT", "60"))

	config := &FacebookConfig{
		GraphBaseURL: getEnvOrDefault("FB_GRAPH_URL", "https://graph.facebook.com/v24.0"),
		VerifyToken:  getEnvOrDefault("FB_VERIFY_TOKEN", "replybot_verify_token"),

		RateLimit:     rateLimit,
		RateWindow:    rateWindow,
		RetryAttempts: retryAttempts,

		CommentPageSize: 100,
		PostScanLimit:   scanLimit,

		Logger: func() *logrus.Logger {
			log := logrus.New()
			if level := os.Getenv("LOG_LEVEL"); level != "" {
				if parsedLevel, err := logrus.ParseLevel(level); err == nil {
					log.SetLevel(parsedLevel)
				}
			}
			return log
		}(),
	}

	config.Logger.WithFields(logrus.Fields{
		"graph_base_url": config.GraphBaseURL,
		"rate_limit":     config.RateLimit,
		"scan_limit":     config.PostScanLimit,
	}).Debug("Facebook config initialized")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *FacebookConfig) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	if c.GraphBaseURL == "" {
		c.GraphBaseURL = "https://graph.facebook.com/v24.0"
	}

	// Validate rate limiting
	if c.RateLimit < 1 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.RateWindow < 1 {
		return fmt.Errorf("rate window must be positive")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if c.CommentPageSize < 1 {
		c.CommentPageSize = 100
	}
	if c.PostScanLimit < 1 {
		c.PostScanLimit = 60
	}

	return nil
}

// Helper function to get environment variable with default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
