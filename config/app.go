package config

import "time"

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"` // empty selects the in-memory store
	RedisAddr   string `env:"REDIS_ADDR"`   // empty disables OTP-gated profile changes
	RedisPass   string `env:"REDIS_PASSWORD"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// Circulation policy. Not business logic, configuration.
	LoanPeriodDays int           `env:"LOAN_PERIOD_DAYS" default:"14"`
	FinePerDay     float64       `env:"FINE_PER_DAY" default:"10"`
	SweepInterval  time.Duration `env:"OVERDUE_SWEEP_INTERVAL" default:"1m"`

	// Optional webhook hit on OVERDUE transitions, fire-and-forget.
	OverdueWebhookURL string `env:"OVERDUE_WEBHOOK_URL"`
}

func (a App) LoanPeriod() time.Duration {
	return time.Duration(a.LoanPeriodDays) * 24 * time.Hour
}
