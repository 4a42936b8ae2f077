package transport

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryBudget bounds the local retries applied to transient transport
// failures. A zero value is replaced with DefaultRetryBudget().
type RetryBudget struct {
	MaxRetries      uint64        `yaml:"max_retries"      json:"max_retries"      mapstructure:"max_retries"`
	InitialInterval time.Duration `yaml:"initial_interval" json:"initial_interval" mapstructure:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"     json:"max_interval"     mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time" json:"max_elapsed_time" mapstructure:"max_elapsed_time"`
}

func DefaultRetryBudget() RetryBudget {
	return RetryBudget{
		MaxRetries:      4,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     16 * time.Second,
		MaxElapsedTime:  2 * time.Minute,
	}
}

func (b RetryBudget) isZero() bool {
	return b == RetryBudget{}
}

// NewBackOff builds the exponential backoff this budget describes.
func (b RetryBudget) NewBackOff() backoff.BackOff {
	if b.isZero() {
		b = DefaultRetryBudget()
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.InitialInterval
	eb.MaxInterval = b.MaxInterval
	eb.MaxElapsedTime = b.MaxElapsedTime
	return backoff.WithMaxRetries(eb, b.MaxRetries)
}
