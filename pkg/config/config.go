package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups application settings read through viper from the
// environment and, optionally, a .env or config.env file.
type Config struct {
	App   AppConfig
	Sim   SimConfig
	Store StoreConfig
	DB    DBConfig
	HTTP  HTTPConfig
}

// AppConfig holds general application settings
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// SimConfig holds the simulation parameters. InitialDay is empty when the
// run should start today.
type SimConfig struct {
	InitialDay               string
	DemandMean               float64
	DemandStdDev             float64
	DemandMinQuantity        int64
	DemandMaxQuantity        int64
	ProductionCapacityPerDay int
	WarehouseCapacity        int64
	Seed                     uint64
	ScenarioDir              string // empty loads the built-in printer factory
}

// StartDay parses InitialDay, falling back to the given time
func (c SimConfig) StartDay(now time.Time) (time.Time, error) {
	if c.InitialDay == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse(time.DateOnly, c.InitialDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("SIM_INITIAL_DAY %q: %w", c.InitialDay, err)
	}
	return day, nil
}

// StoreConfig selects the storage backend
type StoreConfig struct {
	Driver string // memory or postgres
}

// DBConfig holds PostgreSQL settings. DatabaseURL wins over the individual fields.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString returns DATABASE_URL when set, otherwise DSN()
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN builds a postgres URL, escaping the credentials
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// HTTPConfig holds the listen address
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns host:port
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration. Environment variables take precedence over
// file values; unset keys get defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "factorysim")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SIM_INITIAL_DAY", "")
	v.SetDefault("SIM_DEMAND_MEAN", 5.0)
	v.SetDefault("SIM_DEMAND_STD_DEV", 2.0)
	v.SetDefault("SIM_DEMAND_MIN_QTY", 1)
	v.SetDefault("SIM_DEMAND_MAX_QTY", 5)
	v.SetDefault("SIM_PRODUCTION_CAPACITY_PER_DAY", 10)
	v.SetDefault("SIM_WAREHOUSE_CAPACITY", 1000)
	v.SetDefault("SIM_SEED", 0)
	v.SetDefault("SIM_SCENARIO_DIR", "")

	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "factorysim")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Sim: SimConfig{
			InitialDay:               v.GetString("SIM_INITIAL_DAY"),
			DemandMean:               v.GetFloat64("SIM_DEMAND_MEAN"),
			DemandStdDev:             v.GetFloat64("SIM_DEMAND_STD_DEV"),
			DemandMinQuantity:        v.GetInt64("SIM_DEMAND_MIN_QTY"),
			DemandMaxQuantity:        v.GetInt64("SIM_DEMAND_MAX_QTY"),
			ProductionCapacityPerDay: v.GetInt("SIM_PRODUCTION_CAPACITY_PER_DAY"),
			WarehouseCapacity:        v.GetInt64("SIM_WAREHOUSE_CAPACITY"),
			Seed:                     v.GetUint64("SIM_SEED"),
			ScenarioDir:              v.GetString("SIM_SCENARIO_DIR"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
	}

	switch cfg.Store.Driver {
	case "memory", "postgres":
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be memory or postgres, got %q", cfg.Store.Driver)
	}
	return cfg, nil
}
