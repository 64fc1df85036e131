package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=interop_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultChannelID = "InteropHub"
const defaultRoutingCode = "INTEROP"
const defaultHTTPAddr = ":8080"
const defaultHoldMonitorSchedule = "@every 15m"
const defaultHoldMonitorMaxAge = 24 * time.Hour

// AccountSeed is an account provisioned at startup from SEED_ACCOUNTS.
type AccountSeed struct {
	ExternalID string
	Currency   string
	Balance    decimal.Decimal
}

type Config struct {
	HTTPAddr            string
	Storage             string
	DatabaseDriver      string
	DatabaseDSN         string
	MigrationsDir       string
	AuthMode            string
	ChannelID           string
	ChannelKeyHash      string
	JWTSecret           string
	RedisAddr           string
	LockBackend         string
	RoutingCode         string
	QuoteFeePercent     decimal.Decimal
	HoldMonitorSchedule string
	HoldMonitorMaxAge   time.Duration
	LogLevel            string
	SeedAccounts        []AccountSeed
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:            getEnv("HTTP_ADDR", defaultHTTPAddr),
		Storage:             strings.ToLower(getEnv("STORAGE", "memory")),
		DatabaseDriver:      strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseDSN:         normalizeConnectionString(getEnv("DATABASE_DSN", defaultConnectionString)),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", filepath.Join("src", "migrations")),
		AuthMode:            strings.ToLower(getEnv("AUTH_MODE", "basic")),
		ChannelID:           getEnv("CHANNEL_ID", defaultChannelID),
		ChannelKeyHash:      getEnv("CHANNEL_KEY_HASH", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		LockBackend:         strings.ToLower(getEnv("LOCK_BACKEND", "local")),
		RoutingCode:         getEnv("ROUTING_CODE", defaultRoutingCode),
		HoldMonitorSchedule: getEnv("HOLD_MONITOR_SCHEDULE", defaultHoldMonitorSchedule),
		HoldMonitorMaxAge:   defaultHoldMonitorMaxAge,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	feePercent, err := decimal.NewFromString(getEnv("QUOTE_FEE_PERCENT", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("QUOTE_FEE_PERCENT must be numeric: %w", err)
	}
	if feePercent.IsNegative() {
		return Config{}, fmt.Errorf("QUOTE_FEE_PERCENT must not be negative")
	}
	cfg.QuoteFeePercent = feePercent

	if raw := getEnv("HOLD_MONITOR_MAX_AGE", ""); raw != "" {
		maxAge, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("HOLD_MONITOR_MAX_AGE must be a duration: %w", err)
		}
		cfg.HoldMonitorMaxAge = maxAge
	}

	seeds, err := parseAccountSeeds(getEnv("SEED_ACCOUNTS", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.SeedAccounts = seeds

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage {
	case "memory", "postgres":
	default:
		return fmt.Errorf("STORAGE must be memory or postgres, got %q", c.Storage)
	}

	switch c.DatabaseDriver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or pgx, got %q", c.DatabaseDriver)
	}

	switch c.AuthMode {
	case "basic":
		if c.ChannelID == "" || c.ChannelKeyHash == "" {
			return fmt.Errorf("CHANNEL_ID and CHANNEL_KEY_HASH are required for basic auth")
		}
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required for jwt auth")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be basic or jwt, got %q", c.AuthMode)
	}

	switch c.LockBackend {
	case "local":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis lock backend")
		}
	default:
		return fmt.Errorf("LOCK_BACKEND must be local or redis, got %q", c.LockBackend)
	}

	if strings.TrimSpace(c.RoutingCode) == "" {
		return fmt.Errorf("ROUTING_CODE must not be empty")
	}

	return nil
}

// parseAccountSeeds reads "externalId:currency:balance" entries separated by
// commas, e.g. "acc-1:USD:1000,acc-2:TZS:25000".
func parseAccountSeeds(raw string) ([]AccountSeed, error) {
	if raw == "" {
		return nil, nil
	}

	var seeds []AccountSeed
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("SEED_ACCOUNTS entry %q must be externalId:currency:balance", entry)
		}

		externalID := strings.TrimSpace(parts[0])
		currency := strings.ToUpper(strings.TrimSpace(parts[1]))
		if externalID == "" || len(currency) != 3 {
			return nil, fmt.Errorf("SEED_ACCOUNTS entry %q has an empty id or bad currency", entry)
		}

		balance, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
		if err != nil || balance.IsNegative() {
			return nil, fmt.Errorf("SEED_ACCOUNTS entry %q must have a non-negative balance", entry)
		}

		seeds = append(seeds, AccountSeed{ExternalID: externalID, Currency: currency, Balance: balance})
	}

	return seeds, nil
}

func getEnv(key, defaultVal string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultVal
	}
	return value
}

func normalizeConnectionString(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
