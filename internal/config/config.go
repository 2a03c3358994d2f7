package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	API              APIHTTPConfig           `env:",prefix=API_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	MapSite          MapSiteConfig           `env:",prefix=MAPSITE_"`
	Storage          StorageConfig           `env:",prefix=STORAGE_"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Payments         PaymentsConfig          `env:",prefix=PAYMENTS_"`
	Links            LinksConfig             `env:",prefix=LINKS_"`
	Reconcile        ReconcileConfig         `env:",prefix=RECONCILE_"`
	TiersFile        string                  `env:"TIERS_FILE"`
}

type TelegramConfig struct {
	BotToken          string        `env:"BOT_TOKEN,required"`
	Timeout           time.Duration `env:"TIMEOUT,default=30s"`
	PollTimeout       int           `env:"POLL_TIMEOUT,default=20"`
	Workers           int           `env:"WORKERS,default=8"`
	AdminIDs          []int64       `env:"ADMIN_IDS"`
	ConnectMaxRetries uint64        `env:"CONNECT_MAX_RETRIES,default=8"`
	ConnectBaseDelay  time.Duration `env:"CONNECT_BASE_DELAY,default=2s"`
	ConnectMaxDelay   time.Duration `env:"CONNECT_MAX_DELAY,default=1m"`
}

// MapSiteConfig describes the subscription website API, the source of truth
// for subscription state.
type MapSiteConfig struct {
	BaseURL      string        `env:"BASE_URL,default=http://localhost:4000"`
	Platform     string        `env:"PLATFORM,default=telegram"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=5s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	RateLimit    struct {
		Burst int     `env:"BURST,default=10"`
		RPS   float64 `env:"RPS,default=20.0"`
	} `env:",prefix=RATE_LIMIT_"`
}

type StorageConfig struct {
	// Driver is either "file" or "sqlite".
	Driver          string `env:"DRIVER,default=file"`
	LinksPath       string `env:"LINKS_PATH,default=./data/user_hashes.json"`
	SubscribersPath string `env:"SUBSCRIBERS_PATH,default=./data/subscribed_users.json"`
	FailuresPath    string `env:"FAILURES_PATH,default=./data/activation_failures.json"`
}

type PaymentsConfig struct {
	Currency           string `env:"CURRENCY,default=XTR"`
	ProviderToken      string `env:"PROVIDER_TOKEN"`
	VerifyPreCheckout  bool   `env:"VERIFY_PRECHECKOUT,default=false"`
	InvoiceTitle       string `env:"INVOICE_TITLE,default=Anomonus Bot Subscription"`
	InvoiceDescription string `env:"INVOICE_DESCRIPTION,default=Subscribe to Anomonus Bot to access premium features on our map website"`
}

type LinksConfig struct {
	TermsURL      string `env:"TERMS_URL,default=https://telegra.ph/Terms-of-Use-of-the-Anomonuscom-Service-11-18-2"`
	PaySupportURL string `env:"PAYSUPPORT_URL,default=https://telegra.ph/Payment--Subscription-Support-11-18"`
	SupportURL    string `env:"SUPPORT_URL,default=https://support.anomonus.com"`
	StarsURL      string `env:"STARS_URL,default=https://t.me/anomonuschannel"`
}

type ReconcileConfig struct {
	Enabled  bool   `env:"ENABLED,default=true"`
	Schedule string `env:"SCHEDULE,default=@hourly"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// APIHTTPConfig configures the legacy side-API polled by the website.
type APIHTTPConfig struct {
	Enabled        bool          `env:"ENABLED,default=true"`
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           uint16        `env:"PORT,default=5000"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT,default=1m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=20s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS,default=*"`
}

func (a APIHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/anomonus.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=1"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=1"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
}
