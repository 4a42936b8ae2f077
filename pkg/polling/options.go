package polling

import (
	"time"

	"github.com/seatrove/seadb/pkg/transport"
)

// DefaultFrequency is the inter-poll interval used when the service sends
// no Retry-After hint.
const DefaultFrequency = 30 * time.Second

// Options configures a poller. The zero value polls with the automatic
// strategy, the default frequency and the default retry budget.
type Options struct {
	// DisablePolling classifies the initial response alone: 2xx is an
	// immediate success, anything else an immediate failure. No follow-up
	// requests are issued.
	DisablePolling bool

	// Strategy overrides the automatic strategy selection when non-empty.
	Strategy Strategy

	// Frequency is the fallback inter-poll interval. Zero means
	// DefaultFrequency.
	Frequency time.Duration

	// RetryBudget bounds retries of transient transport failures within a
	// single poll step.
	RetryBudget transport.RetryBudget

	// KeepRawResponse retains the last raw polled response, readable via
	// LatestResponse once the poller is terminal.
	KeepRawResponse bool
}

func (o *Options) frequency() time.Duration {
	if o == nil || o.Frequency <= 0 {
		return DefaultFrequency
	}
	return o.Frequency
}
