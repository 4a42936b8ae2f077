package polling

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/transport"
)

// Strategy names how completion of an operation is detected.
type Strategy string

const (
	// StrategyOperation polls the operation-status URL the service handed
	// back and reads its status field.
	StrategyOperation Strategy = "operation"
	// StrategyResource re-fetches the target resource and reads its
	// provisioningState.
	StrategyResource Strategy = "resource"
	// StrategyStatusCode has nothing to poll; the initial HTTP status
	// decides the outcome.
	StrategyStatusCode Strategy = "statusCode"
)

// Descriptor is the immutable record of the request/response pair that
// started a long-running operation. It is built once, owned by a single
// poller, and never mutated afterward; in particular the strategy chosen
// here holds for the poller's whole lifetime.
type Descriptor struct {
	Method       string
	ResourceURL  string
	OperationURL string
	CancelURL    string
	StatusCode   int
	Header       http.Header
	InitialBody  []byte
	RetryAfter   time.Duration
	Strategy     Strategy
}

// NewDescriptor inspects the initial response to a mutating call and
// selects the polling strategy: operation-resource polling when an
// operation-status URL is present, resource-state polling when only the
// resource URL is known, status-code classification otherwise.
func NewDescriptor(method, resourceURL string, resp *transport.Response, override Strategy) *Descriptor {
	d := &Descriptor{
		Method:      method,
		ResourceURL: resourceURL,
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		InitialBody: resp.Body,
		RetryAfter:  RetryAfter(resp.Header),
	}

	if opURL := operationURL(resp.Header); opURL != "" {
		d.OperationURL = opURL
		d.CancelURL = resp.Header.Get(transport.HeaderOperationCancel)
	}

	switch {
	case override != "":
		d.Strategy = override
	case d.OperationURL != "":
		d.Strategy = StrategyOperation
	case d.ResourceURL != "":
		d.Strategy = StrategyResource
	default:
		d.Strategy = StrategyStatusCode
	}
	return d
}

func operationURL(h http.Header) string {
	for _, key := range []string{
		transport.HeaderOperationLoc,
		transport.HeaderAsyncOperation,
		transport.HeaderLocation,
	} {
		if v := h.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// RetryAfter parses the Retry-After header, accepting both delta-seconds
// and HTTP-date forms. Returns 0 when absent or unparseable.
func RetryAfter(h http.Header) time.Duration {
	v := h.Get(transport.HeaderRetryAfter)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// probeState pulls a provisioningState-equivalent out of a response body,
// checking the operation-status shape first and the resource shape second.
// Returns StatusCodeUnknown with ok=false when the body carries neither.
func probeState(body []byte) (models.StatusCode, bool) {
	if len(body) == 0 {
		return models.StatusCodeUnknown, false
	}
	var probe struct {
		Status     string `json:"status"`
		Properties struct {
			ProvisioningState string `json:"provisioningState"`
		} `json:"properties"`
		ProvisioningState string `json:"provisioningState"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return models.StatusCodeUnknown, false
	}
	for _, s := range []string{probe.Status, probe.Properties.ProvisioningState, probe.ProvisioningState} {
		if s != "" {
			return models.ParseStatusCode(s), true
		}
	}
	return models.StatusCodeUnknown, false
}
