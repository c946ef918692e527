package txflow

import (
	"io"
	"log/slog"
	"math/big"
	"time"
)

// DefaultPollInterval is how often Confirm asks for a receipt.
const DefaultPollInterval = time.Second

// Option configures an Orchestrator.
type Option func(*config)

// config holds Orchestrator settings.
type config struct {
	pollInterval time.Duration
	logger       *slog.Logger
	gasLimit     uint64
	gasPrice     *big.Int
	now          func() time.Time
}

// defaultConfig returns the default orchestrator configuration.
func defaultConfig() *config {
	return &config{
		pollInterval: DefaultPollInterval,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
	}
}

// WithPollInterval sets the receipt polling interval.
// Non-positive values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger sets the structured logger. A nil logger keeps the default,
// which discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGasLimit fixes the gas limit instead of letting the backend estimate it.
// Zero restores estimation.
func WithGasLimit(limit uint64) Option {
	return func(c *config) {
		c.gasLimit = limit
	}
}

// WithGasPrice fixes a legacy gas price instead of the backend suggestion.
func WithGasPrice(price *big.Int) Option {
	return func(c *config) {
		if price == nil {
			c.gasPrice = nil
			return
		}
		c.gasPrice = new(big.Int).Set(price)
	}
}

// withClock overrides the submission timestamp source.
func withClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
