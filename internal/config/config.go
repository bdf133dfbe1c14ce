// internal/config/config.go
package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string

	DBMaxOpenConns int
	DBMaxIdleConns int

	LogLevel  string
	LogFormat string
	LogFile   string

	JWTSecret         string
	SessionTTL        time.Duration
	AuthVerboseErrors bool
	CORSOrigins       []string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseTLS   bool

	ResetBaseURL  string
	ResetTokenTTL time.Duration

	DetectionBaseURL    string
	DetectionAPIKey     string
	DetectionModel      string
	DetectionVersion    string
	DetectionConfidence int
	DetectionOverlap    int
	DetectionImageSize  int
	DetectionTimeout    time.Duration
	MaxUploadBytes      int64

	UnitWeightKg        float64
	DefaultLicenseCount int

	RedisURL string
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	databaseURL := v.GetString("DATABASE_URL")
	if databaseURL == "" {
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(v.GetString("PSQL_USER"), v.GetString("PSQL_PASSWORD")),
			Host:   v.GetString("PSQL_HOST") + ":" + v.GetString("PSQL_PORT"),
			Path:   v.GetString("PSQL_DB_NAME"),
		}
		q := u.Query()
		q.Set("sslmode", v.GetString("PSQL_SSLMODE"))
		u.RawQuery = q.Encode()
		databaseURL = u.String()
	}

	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		DatabaseURL: databaseURL,

		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
		LogFile:   v.GetString("LOG_FILE"),

		JWTSecret:         v.GetString("JWT_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		AuthVerboseErrors: v.GetBool("AUTH_VERBOSE_ERRORS"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetString("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		SMTPFrom:     v.GetString("SMTP_FROM"),
		SMTPUseTLS:   v.GetBool("SMTP_USE_TLS"),

		ResetBaseURL:  v.GetString("RESET_BASE_URL"),
		ResetTokenTTL: v.GetDuration("RESET_TOKEN_TTL"),

		DetectionBaseURL:    v.GetString("DETECTION_BASE_URL"),
		DetectionAPIKey:     v.GetString("ROBOFLOW_API_KEY"),
		DetectionModel:      v.GetString("DETECTION_MODEL"),
		DetectionVersion:    v.GetString("DETECTION_VERSION"),
		DetectionConfidence: v.GetInt("DETECTION_CONFIDENCE"),
		DetectionOverlap:    v.GetInt("DETECTION_OVERLAP"),
		DetectionImageSize:  v.GetInt("DETECTION_IMAGE_SIZE"),
		DetectionTimeout:    v.GetDuration("DETECTION_TIMEOUT"),
		MaxUploadBytes:      v.GetInt64("MAX_UPLOAD_BYTES"),

		UnitWeightKg:        v.GetFloat64("UNIT_WEIGHT_KG"),
		DefaultLicenseCount: v.GetInt("DEFAULT_LICENSE_COUNT"),

		RedisURL: v.GetString("REDIS_URL"),
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("PSQL_HOST", "localhost")
	v.SetDefault("PSQL_PORT", "5432")
	v.SetDefault("PSQL_USER", "postgres")
	v.SetDefault("PSQL_PASSWORD", "postgres")
	v.SetDefault("PSQL_DB_NAME", "greenia")
	v.SetDefault("PSQL_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("JWT_SECRET", "dev")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", "587")

	v.SetDefault("RESET_BASE_URL", "http://localhost:8501")
	v.SetDefault("RESET_TOKEN_TTL", "24h")

	v.SetDefault("DETECTION_BASE_URL", "https://detect.roboflow.com")
	v.SetDefault("DETECTION_MODEL", "plastic-recyclable-detection")
	v.SetDefault("DETECTION_VERSION", "1")
	v.SetDefault("DETECTION_CONFIDENCE", 40)
	v.SetDefault("DETECTION_OVERLAP", 30)
	v.SetDefault("DETECTION_IMAGE_SIZE", 416)
	v.SetDefault("DETECTION_TIMEOUT", "30s")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)

	v.SetDefault("UNIT_WEIGHT_KG", 0.02)
	v.SetDefault("DEFAULT_LICENSE_COUNT", 10)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
