package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/seatrove/seadb/pkg/transport"
)

// Step is one scripted exchange: either a canned response or a transport
// error.
type Step struct {
	Response *transport.Response
	Err      error
}

// ScriptedSender plays back a fixed sequence of responses and records
// every request it saw. Safe for concurrent use.
type ScriptedSender struct {
	mu       sync.Mutex
	steps    []Step
	requests []*transport.Request
}

func NewScriptedSender(steps ...Step) *ScriptedSender {
	return &ScriptedSender{steps: steps}
}

func (s *ScriptedSender) Send(_ context.Context, req *transport.Request) (*transport.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.steps) == 0 {
		return nil, fmt.Errorf("unexpected request: %s %s", req.Method, req.URL)
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.Response, step.Err
}

// Requests returns a copy of every request seen so far.
func (s *ScriptedSender) Requests() []*transport.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*transport.Request{}, s.requests...)
}

// CallCount returns how many requests were issued.
func (s *ScriptedSender) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// JSONResponse builds a response step with a JSON body and optional
// headers.
func JSONResponse(status int, body string, headers map[string]string) Step {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return Step{Response: &transport.Response{
		StatusCode: status,
		Header:     h,
		Body:       []byte(body),
	}}
}

// TransportFailure builds a step that fails at the transport level.
func TransportFailure(msg string) Step {
	return Step{Err: fmt.Errorf("%s", msg)}
}
