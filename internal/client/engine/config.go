package engine

import "time"

// Config tunes the drain loop.
type Config struct {
	// MaxRetries bounds sync attempts per operation before it is promoted
	// to an exception.
	MaxRetries int

	// BatchSize bounds operations processed per drain so a single pass
	// cannot overwhelm the backend.
	BatchSize int

	// AutoSyncInterval is how often the lifecycle controller re-scans the
	// queue while online.
	AutoSyncInterval time.Duration

	// BaseDelay and MaxDelay bound the exponential backoff between attempts
	// of the same operation: a failed candidate is skipped until
	// lastAttempt + min(BaseDelay * 2^(attempts-1), MaxDelay) has passed.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultConfig returns the defaults used by POS terminals.
func DefaultConfig() Config {
	return Config{
		MaxRetries:       5,
		BatchSize:        10,
		AutoSyncInterval: 30 * time.Second,
		BaseDelay:        2 * time.Second,
		MaxDelay:         5 * time.Minute,
	}
}

// withDefaults fills in zero fields.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.AutoSyncInterval <= 0 {
		c.AutoSyncInterval = def.AutoSyncInterval
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	return c
}
