package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// MongoDB.
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	MongoTransactions bool   `mapstructure:"MONGO_TRANSACTIONS"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment gateway. GatewayProvider is "razorpay" or "stripe".
	GatewayProvider        string  `mapstructure:"GATEWAY_PROVIDER"`
	Currency               string  `mapstructure:"CURRENCY"`
	RazorpayKeyID          string  `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret      string  `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret  string  `mapstructure:"RAZORPAY_WEBHOOK_SECRET"`
	RazorpayPlanID         string  `mapstructure:"RAZORPAY_PLAN_ID"`
	StripeKey              string  `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret    string  `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripePlanPriceID      string  `mapstructure:"STRIPE_PLAN_PRICE_ID"`
	AutoPayTaxRate         float64 `mapstructure:"AUTOPAY_TAX_RATE"`
	PaymentLinkExpiryHours int     `mapstructure:"PAYMENT_LINK_EXPIRY_HOURS"`
	ReminderLeadHours      int     `mapstructure:"REMINDER_LEAD_HOURS"`

	// Email.
	EmailEnabled bool   `mapstructure:"EMAIL_ENABLED"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`
	EmailReplyTo string `mapstructure:"EMAIL_REPLY_TO"`

	// Built-in administrator account.
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env file is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "insurepay")
	viper.SetDefault("MONGO_TRANSACTIONS", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_AUTH_DB", 0)
	viper.SetDefault("REDIS_OTP_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("GATEWAY_PROVIDER", "razorpay")
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("RAZORPAY_KEY_ID", "")
	viper.SetDefault("RAZORPAY_KEY_SECRET", "")
	viper.SetDefault("RAZORPAY_WEBHOOK_SECRET", "")
	viper.SetDefault("RAZORPAY_PLAN_ID", "")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("STRIPE_PLAN_PRICE_ID", "")
	viper.SetDefault("AUTOPAY_TAX_RATE", 0.18)
	viper.SetDefault("PAYMENT_LINK_EXPIRY_HOURS", 72)
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)
	viper.SetDefault("EMAIL_ENABLED", false)
	viper.SetDefault("RESEND_API_KEY", "")
	viper.SetDefault("EMAIL_FROM", "billing@insurepay.local")
	viper.SetDefault("EMAIL_REPLY_TO", "")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
