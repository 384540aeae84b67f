package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Postgres    Postgres
	Telegram    Telegram
	Redis       Redis
	API         API
	Cache       Cache
	Jobs        Jobs
	Alerts      Alerts
	GoogleDrive GoogleDrive
	Http        Http
	Report      Report
}

type Postgres struct {
	Host            string `env:"PG_HOST" envDefault:"localhost"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME" envDefault:"portfolio"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER" envDefault:"portfolio"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"5"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Telegram struct {
	Enabled    bool          `env:"TELEGRAM_ENABLED" envDefault:"false"`
	Token      string        `env:"TELEGRAM_TOKEN" envDefault:""`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	// ChatID is the only chat the bot answers and the one alerts are sent to.
	ChatID          int64 `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
	HoldingsPerPage int   `env:"TELEGRAM_HOLDINGS_PER_PAGE" envDefault:"5"`
	RecentTrades    int   `env:"TELEGRAM_RECENT_TRADES" envDefault:"10"`
}

type Redis struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug   bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	BseApi  BseApi
}

// BseApi describes where the quote lives in the response, so another quote endpoint can be
// plugged in by changing env only.
type BseApi struct {
	Url            string `env:"BSE_API_URL" envDefault:"https://api.bseindia.com"`
	QuotePath      string `env:"BSE_API_QUOTE_PATH" envDefault:"/BseIndiaAPI/api/getScripHeaderData/w"`
	CodeParam      string `env:"BSE_API_CODE_PARAM" envDefault:"scripcode"`
	Referer        string `env:"BSE_API_REFERER" envDefault:"https://www.bseindia.com/"`
	PriceJsonPath  string `env:"BSE_API_PRICE_JSONPATH" envDefault:"$.CurrRate.LTP"`
	OpenJsonPath   string `env:"BSE_API_OPEN_JSONPATH" envDefault:"$.Header.Open"`
	HighJsonPath   string `env:"BSE_API_HIGH_JSONPATH" envDefault:"$.Header.High"`
	LowJsonPath    string `env:"BSE_API_LOW_JSONPATH" envDefault:"$.Header.Low"`
	PrevJsonPath   string `env:"BSE_API_PREV_CLOSE_JSONPATH" envDefault:"$.Header.PrevClose"`
	NameJsonPath   string `env:"BSE_API_NAME_JSONPATH" envDefault:"$.Cmpname.FullN"`
	VolumeJsonPath string `env:"BSE_API_VOLUME_JSONPATH" envDefault:""`
	Concurrency    int    `env:"BSE_API_CONCURRENCY" envDefault:"4"`
}

type Cache struct {
	QuoteExpiration   time.Duration `env:"CACHE_QUOTE_EXPIRATION" envDefault:"5m"`
	SummaryExpiration time.Duration `env:"CACHE_SUMMARY_EXPIRATION" envDefault:"1m"`
}

type Jobs struct {
	PriceUpdateInterval time.Duration `env:"PRICE_UPDATE_JOB_INTERVAL" envDefault:"15m"`
	MarketHoursOnly     bool          `env:"PRICE_UPDATE_MARKET_HOURS_ONLY" envDefault:"true"`
	MarketTimezone      string        `env:"MARKET_TIMEZONE" envDefault:"Asia/Kolkata"`
	MarketOpen          string        `env:"MARKET_OPEN" envDefault:"09:15"`
	MarketClose         string        `env:"MARKET_CLOSE" envDefault:"15:30"`
	ExportCrontab       string        `env:"EXPORT_JOB_CRONTAB" envDefault:"0 0 16 * * 1-5"`
	CleanupCrontab      string        `env:"DRIVE_CLEANUP_JOB_CRONTAB" envDefault:"0 30 3 * * *"`
}

type Alerts struct {
	Cooldown time.Duration `env:"ALERT_COOLDOWN" envDefault:"6h"`
}

type GoogleDrive struct {
	Enabled         bool          `env:"GOOGLE_DRIVE_ENABLED" envDefault:"false"`
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"720h"`
}

type Http struct {
	Enabled      bool          `env:"HTTP_ENABLED" envDefault:"true"`
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
}

type Report struct {
	Currency  string `env:"REPORT_CURRENCY" envDefault:"INR"`
	ExportDir string `env:"REPORT_EXPORT_DIR" envDefault:"reports"`
	Style     string `env:"REPORT_STYLE" envDefault:"auto"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	return cfg
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	c.Report.Currency = strings.ToUpper(strings.TrimSpace(c.Report.Currency))
	if money.GetCurrency(c.Report.Currency) == nil {
		return fmt.Errorf("REPORT_CURRENCY %q is not an ISO 4217 code", c.Report.Currency)
	}
	return nil
}
