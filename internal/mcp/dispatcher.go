// ABOUTME: Routes a decoded JSON-RPC request to its registered handler
// ABOUTME: Always produces a response envelope, recovering from handler panics

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/promptmesh-gateway/internal/auth"
)

// Dispatch outcomes reported to an Observer.
const (
	OutcomeOK            = "ok"
	OutcomeDomainError   = "domain_error"
	OutcomeInternalError = "internal_error"
)

// unknownMethodLabel replaces unregistered method names in observations.
const unknownMethodLabel = "unknown"

// Observer is told about every dispatched request.
type Observer interface {
	ObserveRPC(method, outcome string, duration time.Duration)
}

// Dispatcher runs requests against a Registry.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	observer Observer
}

// NewDispatcher creates a Dispatcher. logger and observer may be nil.
func NewDispatcher(registry *Registry, logger *slog.Logger, observer Observer) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		logger:   logger.With("component", "mcp"),
		observer: observer,
	}
}

// Dispatch executes req for principal p and returns the response envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, p auth.Principal, req Request) Response {
	start := time.Now()
	resp := Response{JSONRPC: jsonrpcVersion, ID: req.ID}

	label := req.Method
	handler, ok := d.registry.Lookup(req.Method)
	if !ok {
		label = unknownMethodLabel
		handler = func(context.Context, auth.Principal, json.RawMessage) (any, error) {
			return nil, UnknownMethod(req.Method)
		}
	}

	result, err := d.invoke(ctx, handler, p, req)

	outcome := OutcomeOK
	switch de, isDomain := AsDomainError(err); {
	case err == nil:
		resp.Result = result
	case isDomain:
		outcome = OutcomeDomainError
		resp.Error = &Error{Code: CodeDomainError, Message: de.Message}
		d.logger.Debug("request rejected",
			"method", req.Method,
			"kind", de.Kind,
			"message", de.Message,
		)
	default:
		outcome = OutcomeInternalError
		resp.Error = &Error{Code: CodeInternalError, Message: internalErrorMessage}
		d.logger.Error("request failed",
			"method", req.Method,
			"organization_id", p.OrganizationID,
			"error", err,
		)
	}

	if d.observer != nil {
		d.observer.ObserveRPC(label, outcome, time.Since(start))
	}
	return resp
}

// invoke runs handler, converting a panic into an internal error.
func (d *Dispatcher) invoke(ctx context.Context, handler Handler, p auth.Principal, req Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in handler: %v", r)
		}
	}()
	return handler(ctx, p, req.Params)
}
