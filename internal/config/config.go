package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreAirtable = "airtable"
	StoreMemory   = "memory"
)

type Config struct {
	Port        string
	Env         string
	AllowOrigin string

	RecordStore       string
	AirtableAPIURL    string
	AirtableAPIKey    string
	AirtableBaseID    string
	AirtableUserTable string

	YocoChargesURL string
	YocoSecretKey  string
	AmountInCents  int64
	Currency       string
}

// Load reads .env when present and then the process environment, which wins.
func Load() Config {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("RECORD_STORE", StoreAirtable)
	v.SetDefault("AIRTABLE_API_URL", "https://api.airtable.com/v0")
	v.SetDefault("AIRTABLE_USER_TABLE", "User")
	v.SetDefault("YOCO_CHARGES_URL", "https://online.yoco.com/v1/charges/")
	v.SetDefault("PAYMENT_AMOUNT_CENTS", 20000)
	v.SetDefault("PAYMENT_CURRENCY", "ZAR")
	return v
}

func FromViper(v *viper.Viper) Config {
	return Config{
		Port:        v.GetString("PORT"),
		Env:         strings.ToLower(v.GetString("APP_ENV")),
		AllowOrigin: v.GetString("CORS_ALLOW_ORIGINS"),

		RecordStore:       strings.ToLower(v.GetString("RECORD_STORE")),
		AirtableAPIURL:    v.GetString("AIRTABLE_API_URL"),
		AirtableAPIKey:    v.GetString("AIRTABLE_API_KEY"),
		AirtableBaseID:    v.GetString("AIRTABLE_BASE_ID"),
		AirtableUserTable: v.GetString("AIRTABLE_USER_TABLE"),

		YocoChargesURL: v.GetString("YOCO_CHARGES_URL"),
		YocoSecretKey:  v.GetString("YOCO_SECRET_KEY"),
		AmountInCents:  v.GetInt64("PAYMENT_AMOUNT_CENTS"),
		Currency:       v.GetString("PAYMENT_CURRENCY"),
	}
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) Validate() error {
	var errs []error
	switch c.RecordStore {
	case StoreAirtable:
		if c.AirtableAPIKey == "" {
			errs = append(errs, errors.New("AIRTABLE_API_KEY is not set"))
		}
		if c.AirtableBaseID == "" {
			errs = append(errs, errors.New("AIRTABLE_BASE_ID is not set"))
		}
	case StoreMemory:
	default:
		errs = append(errs, errors.New("RECORD_STORE must be airtable or memory"))
	}
	if c.YocoSecretKey == "" {
		errs = append(errs, errors.New("YOCO_SECRET_KEY is not set"))
	}
	if c.AmountInCents <= 0 {
		errs = append(errs, errors.New("PAYMENT_AMOUNT_CENTS must be positive"))
	}
	return errors.Join(errs...)
}
