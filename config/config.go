package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string

	JWTSecret      string
	StripeKey      string
	SendgridAPIKey string
	MailFrom       string
	CloudinaryURL  string

	NotificationRetentionDays int
	EventRetentionDays        int
	RequestTimeout            time.Duration
}

// New sets up all config related services
func New() *Config {
	// a missing .env is normal outside of local development
	_ = godotenv.Load()

	env := getEnv("ENV", "local")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                       os.Getenv("DB_URI"),
		DatabaseName:              getEnv("DB_NAME", "quickverdicts"),
		BaseURL:                   os.Getenv("BASE_URL"),
		Port:                      getEnv("PORT", "8080"),
		Env:                       env,
		JWTSecret:                 os.Getenv("JWT_SECRET"),
		StripeKey:                 os.Getenv("STRIPE_SECRET_KEY"),
		SendgridAPIKey:            os.Getenv("SENDGRID_API_KEY"),
		MailFrom:                  getEnv("MAIL_FROM", "no-reply@quickverdicts.com"),
		CloudinaryURL:             os.Getenv("CLOUDINARY_URL"),
		NotificationRetentionDays: getEnvInt("NOTIFICATION_RETENTION_DAYS", 90),
		EventRetentionDays:        getEnvInt("EVENT_RETENTION_DAYS", 180),
		RequestTimeout:            time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		zap.S().Warnw("ignoring invalid integer env value", "key", key, "value", v)
		return fallback
	}
	return n
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	text := message
	if err != nil {
		text = fmt.Sprintf("%s, %v", message, err)
	}
	b, _ := json.Marshal(map[string]string{"response": text})
	w.Write(b)
}
