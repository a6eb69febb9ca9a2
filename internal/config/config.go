package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	// Identity/session data and accounts/ledger data live in separate
	// databases; account numbers are the only join key between them.
	AuthDatabaseURL string `env:"AUTH_DATABASE_URL,required"`
	BankDatabaseURL string `env:"BANK_DATABASE_URL,required"`

	JWTSecret        string `env:"JWT_SECRET,required"`
	TokenTTLMinutes  int    `env:"TOKEN_TTL_MINUTES" envDefault:"30"`

	Port     int    `env:"PORT" envDefault:"5000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	// Opening balance (in cents) seeded into the default Savings account
	// created at registration.
	SignupSeedBalance int64 `env:"SIGNUP_SEED_BALANCE" envDefault:"100000"`

	// Bounded internal retries.
	TransferMaxRetries      int `env:"TRANSFER_MAX_RETRIES" envDefault:"3"`
	AccountNumberMaxRetries int `env:"ACCOUNT_NUMBER_MAX_RETRIES" envDefault:"5"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
