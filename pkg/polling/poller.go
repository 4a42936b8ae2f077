package polling

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/seatrove/seadb/pkg/logger"
	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/transport"
)

// Poller tracks one long-running management operation to completion. T is
// the final resource type produced on success.
//
// A poller owns its descriptor and poll state exclusively. It is safe to
// call Result from one goroutine while another registers callbacks or
// reads Status/Done; one caller at a time drives the HTTP polling, the
// rest block until the terminal transition.
type Poller[T any] struct {
	sender transport.Sender
	desc   *Descriptor
	opts   Options

	driveCh chan struct{}
	doneCh  chan struct{}

	mu        sync.Mutex
	status    models.StatusCode
	lastBody  []byte
	lastResp  *transport.Response
	polls     int
	notBefore time.Time
	result    *T
	err       error
	callbacks []func(*T, error)
}

// NewPoller builds a poller from the initial response to a mutating call.
// Requests made while polling go through sender; the poller borrows it and
// never manages its lifecycle.
//
// When the initial response already represents a terminal state (some
// operations complete synchronously despite returning 201/202), the
// returned poller is terminal from the start.
func NewPoller[T any](sender transport.Sender, method, resourceURL string, initial *transport.Response, opts *Options) *Poller[T] {
	if opts == nil {
		opts = &Options{}
	}
	override := opts.Strategy
	if opts.DisablePolling {
		override = StrategyStatusCode
	}
	desc := NewDescriptor(method, resourceURL, initial, override)

	p := &Poller[T]{
		sender:    sender,
		desc:      desc,
		opts:      *opts,
		driveCh:   make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
		status:    models.StatusCodeInProgress,
		lastBody:  initial.Body,
		notBefore: time.Now().Add(desc.RetryAfter),
	}
	if p.opts.KeepRawResponse {
		p.lastResp = initial
	}

	if desc.Strategy == StrategyStatusCode {
		if transport.IsSuccess(initial.StatusCode) {
			p.finalizeSuccess(initial.Body)
		} else {
			code, message := extractError(initial.Body)
			p.finalize(nil, &OperationError{
				Status:  models.StatusCodeFailed,
				Code:    code,
				Message: message,
				RawBody: initial.Body,
			}, models.StatusCodeFailed)
		}
		return p
	}

	if st, ok := probeState(initial.Body); ok && st.IsTerminal() {
		p.finalizeFromState(st, initial.Body)
	}
	return p
}

// Descriptor returns the immutable operation descriptor.
func (p *Poller[T]) Descriptor() *Descriptor { return p.desc }

// Done reports whether the operation reached a terminal state. Never
// blocks, never errors.
func (p *Poller[T]) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.IsTerminal()
}

// Status returns the current lifecycle status. Never blocks, never errors.
func (p *Poller[T]) Status() models.StatusCode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// LatestResponse returns the most recent raw response seen by the poller.
// Only retained when Options.KeepRawResponse is set.
func (p *Poller[T]) LatestResponse() *transport.Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastResp
}

// AddDoneCallback registers cb to run exactly once with the final result
// or error. If the operation is already terminal, cb runs synchronously
// before AddDoneCallback returns; registering after completion is valid.
func (p *Poller[T]) AddDoneCallback(cb func(result *T, err error)) {
	p.mu.Lock()
	if p.status.IsTerminal() {
		res, err := p.result, p.err
		p.mu.Unlock()
		cb(res, err)
		return
	}
	p.callbacks = append(p.callbacks, cb)
	p.mu.Unlock()
}

// Result blocks until the operation reaches a terminal state, then returns
// the final resource or the terminal error. Safe to call repeatedly and
// from multiple goroutines; once terminal it returns the memoized outcome
// without touching the network. Cancelling ctx aborts only this caller's
// wait, not the poller.
func (p *Poller[T]) Result(ctx context.Context) (T, error) {
	var zero T
	for {
		select {
		case <-p.doneCh:
			return p.outcome()
		case <-ctx.Done():
			return zero, ctx.Err()
		case p.driveCh <- struct{}{}:
		}

		if p.Done() {
			<-p.driveCh
			return p.outcome()
		}
		_, err := p.pollOnce(ctx)
		<-p.driveCh
		if err != nil {
			return zero, err
		}
	}
}

// Poll issues a single polling step: waits out the next-poll-not-before
// time, sends the strategy-selected GET and folds the answer into poll
// state. The returned response is the raw poll answer; it is nil when the
// poller was already terminal. The only error Poll returns is ctx's; all
// polling failures terminalize the poller instead.
func (p *Poller[T]) Poll(ctx context.Context) (*transport.Response, error) {
	select {
	case p.driveCh <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.driveCh }()
	if p.Done() {
		return nil, nil
	}
	return p.pollOnce(ctx)
}

// Cancel asks the service to stop the operation. Best effort: it succeeds
// only when the operation kind advertises a cancel endpoint and the
// service confirms; otherwise the poll state is left unchanged. Local
// polling ceases on confirmed cancellation, the remote operation is not
// guaranteed to stop.
func (p *Poller[T]) Cancel(ctx context.Context) error {
	if p.desc.CancelURL == "" {
		return &UnsupportedOperationError{Operation: "cancel"}
	}

	p.mu.Lock()
	if p.status.IsTerminal() {
		st := p.status
		p.mu.Unlock()
		if st == models.StatusCodeCanceled {
			return nil
		}
		return fmt.Errorf("operation already %s", st)
	}
	p.mu.Unlock()

	resp, err := p.sender.Send(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    p.desc.CancelURL,
	})
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	if !transport.IsSuccess(resp.StatusCode) {
		return fmt.Errorf("cancel rejected (HTTP %d)", resp.StatusCode)
	}

	p.finalize(nil, &OperationError{
		Status:  models.StatusCodeCanceled,
		Code:    "OperationCanceled",
		Message: "operation canceled at client request",
		RawBody: resp.Body,
	}, models.StatusCodeCanceled)

	// a concurrent poll may have finalized first; finalize is a no-op then
	// and the caller must not be told the cancellation took
	if st := p.Status(); st != models.StatusCodeCanceled {
		return fmt.Errorf("operation already %s", st)
	}
	logger.Get().Debugf("operation canceled via %s", p.desc.CancelURL)
	return nil
}

// pollOnce runs one poll step. Caller must hold the drive slot. Non-nil
// errors are context errors only; everything else finalizes the poller.
func (p *Poller[T]) pollOnce(ctx context.Context) (*transport.Response, error) {
	p.mu.Lock()
	wait := time.Until(p.notBefore)
	p.mu.Unlock()
	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	url := p.desc.OperationURL
	if p.desc.Strategy == StrategyResource {
		url = p.desc.ResourceURL
	}

	resp, attempts, err := p.send(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.finalize(nil, &TransportError{Attempts: attempts, Err: err}, models.StatusCodeFailed)
		return nil, nil
	}

	p.interpret(ctx, resp)
	return resp, nil
}

// send issues one GET with bounded retries. Transient transport failures
// and retryable HTTP statuses are retried under the budget; credential
// failures abort immediately.
func (p *Poller[T]) send(ctx context.Context, url string) (*transport.Response, int, error) {
	var resp *transport.Response
	attempts := 0

	op := func() error {
		attempts++
		r, err := p.sender.Send(ctx, &transport.Request{Method: http.MethodGet, URL: url})
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			logger.Get().Debugf("poll attempt %d failed: %v", attempts, err)
			return err
		}
		if transport.IsAuthFailure(r.StatusCode) {
			return backoff.Permanent(fmt.Errorf("authentication failure (HTTP %d)", r.StatusCode))
		}
		if retryableStatus(r.StatusCode) {
			return fmt.Errorf("retryable HTTP %d from %s", r.StatusCode, url)
		}
		resp = r
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(p.opts.RetryBudget.NewBackOff(), ctx))
	if err != nil {
		return nil, attempts, err
	}
	return resp, attempts, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

// interpret folds a poll response into poll state, finalizing on terminal
// or malformed answers and rescheduling otherwise.
func (p *Poller[T]) interpret(ctx context.Context, resp *transport.Response) {
	p.setLastResponse(resp)
	switch p.desc.Strategy {
	case StrategyOperation:
		p.interpretOperation(ctx, resp)
	case StrategyResource:
		p.interpretResource(resp)
	}
}

func (p *Poller[T]) interpretOperation(ctx context.Context, resp *transport.Response) {
	if !transport.IsSuccess(resp.StatusCode) {
		p.finalize(nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Reason:     "operation status endpoint returned an error status",
			RawBody:    resp.Body,
		}, models.StatusCodeFailed)
		return
	}

	var op models.OperationStatus
	if err := json.Unmarshal(resp.Body, &op); err != nil || op.Status == "" {
		p.finalize(nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Reason:     "operation status body has no readable status field",
			RawBody:    resp.Body,
		}, models.StatusCodeFailed)
		return
	}

	st := models.ParseStatusCode(op.Status)
	if !st.IsTerminal() {
		p.reschedule(resp)
		return
	}

	if st != models.StatusCodeSucceeded {
		code, message := "", ""
		if op.Error != nil {
			code, message = op.Error.Code, op.Error.Message
		}
		p.finalize(nil, &OperationError{
			Status:  st,
			Code:    code,
			Message: message,
			RawBody: resp.Body,
		}, st)
		return
	}

	finalBody := []byte(op.Properties)
	if string(finalBody) == "null" {
		finalBody = nil
	}
	if len(finalBody) == 0 && p.desc.ResourceURL != "" && p.desc.Method != http.MethodDelete {
		final, attempts, err := p.send(ctx, p.desc.ResourceURL)
		if err != nil {
			p.finalize(nil, &TransportError{Attempts: attempts, Err: err}, models.StatusCodeFailed)
			return
		}
		p.setLastResponse(final)
		finalBody = final.Body
	}
	p.finalizeSuccess(finalBody)
}

func (p *Poller[T]) interpretResource(resp *transport.Response) {
	if resp.StatusCode == http.StatusNotFound && p.desc.Method == http.MethodDelete {
		// resource gone after a delete is the success condition
		p.finalizeSuccess(nil)
		return
	}
	if !transport.IsSuccess(resp.StatusCode) {
		p.finalize(nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Reason:     "resource fetch returned an error status",
			RawBody:    resp.Body,
		}, models.StatusCodeFailed)
		return
	}

	st, ok := probeState(resp.Body)
	if !ok {
		p.finalize(nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Reason:     "resource body has no provisioning state",
			RawBody:    resp.Body,
		}, models.StatusCodeFailed)
		return
	}
	if !st.IsTerminal() {
		p.reschedule(resp)
		return
	}
	if st != models.StatusCodeSucceeded {
		code, message := extractError(resp.Body)
		p.finalize(nil, &OperationError{
			Status:  st,
			Code:    code,
			Message: message,
			RawBody: resp.Body,
		}, st)
		return
	}
	p.finalizeSuccess(resp.Body)
}

func (p *Poller[T]) reschedule(resp *transport.Response) {
	interval := RetryAfter(resp.Header)
	if interval <= 0 {
		interval = p.opts.frequency()
	}
	p.mu.Lock()
	p.polls++
	p.notBefore = time.Now().Add(interval)
	p.mu.Unlock()
}

func (p *Poller[T]) setLastResponse(resp *transport.Response) {
	p.mu.Lock()
	p.lastBody = resp.Body
	if p.opts.KeepRawResponse {
		p.lastResp = resp
	}
	p.mu.Unlock()
}

func (p *Poller[T]) finalizeSuccess(body []byte) {
	result := new(T)
	if len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			p.finalize(nil, &ResponseError{
				StatusCode: http.StatusOK,
				Reason:     fmt.Sprintf("final body does not deserialize: %v", err),
				RawBody:    body,
			}, models.StatusCodeFailed)
			return
		}
	}
	p.finalize(result, nil, models.StatusCodeSucceeded)
}

func (p *Poller[T]) finalizeFromState(st models.StatusCode, body []byte) {
	if st == models.StatusCodeSucceeded {
		p.finalizeSuccess(body)
		return
	}
	code, message := extractError(body)
	p.finalize(nil, &OperationError{
		Status:  st,
		Code:    code,
		Message: message,
		RawBody: body,
	}, st)
}

// finalize performs the terminal transition exactly once: records the
// outcome, wakes waiters, and fires every registered callback. Callbacks
// run outside the lock so they may themselves call back into the poller.
func (p *Poller[T]) finalize(result *T, err error, st models.StatusCode) {
	p.mu.Lock()
	if p.status.IsTerminal() {
		p.mu.Unlock()
		return
	}
	p.status = st
	p.result = result
	p.err = err
	cbs := p.callbacks
	p.callbacks = nil
	close(p.doneCh)
	p.mu.Unlock()

	logger.Get().Debugf("operation terminal: %s", st)
	for _, cb := range cbs {
		cb(result, err)
	}
}

func (p *Poller[T]) outcome() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		var zero T
		return zero, p.err
	}
	return *p.result, p.err
}

func extractError(body []byte) (string, string) {
	if eb := models.ParseErrorBody(body); eb != nil {
		return eb.Code, eb.Message
	}
	return "", ""
}
