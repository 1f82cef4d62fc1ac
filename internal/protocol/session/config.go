package session

import (
	"time"

	"github.com/danmuck/pimd/internal/protocol/datastream"
)

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines connection timing and queueing.
type Config struct {
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	// WaitTimeout bounds the wait for the remainder of a frame once its
	// first byte has arrived. Idle time between frames is unbounded.
	WaitTimeout  time.Duration
	WriteTimeout time.Duration
	// SendQueue caps frames waiting in an Outbox. A peer that falls this far
	// behind is treated as stalled.
	SendQueue   int
	DialRetries int
	Backoff     BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout:   5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		WaitTimeout:      datastream.DefaultWaitTimeout,
		WriteTimeout:     15 * time.Second,
		SendQueue:        4096,
		DialRetries:      5,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills every unset field from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = def.WaitTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.SendQueue <= 0 {
		c.SendQueue = def.SendQueue
	}
	if c.DialRetries <= 0 {
		c.DialRetries = def.DialRetries
	}
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff = def.Backoff
	}
	return c
}
