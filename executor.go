package apiweave

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// unknownErrorMessage is used when an error response carries no message field.
const unknownErrorMessage = "Unknown Error"

// Result is the normalized outcome of a successful call: the HTTP status
// code and the decoded response body. Raw holds the undecoded bytes.
type Result struct {
	StatusCode int
	Body       any
	Raw        []byte
}

// Completion receives the final outcome of one operation call: exactly one
// of result and err is non-nil, and it is invoked exactly once.
type Completion func(result *Result, err error)

// Executor builds wire requests and performs transport calls, mapping every
// outcome to a Result or a classified error.
type Executor struct {
	builder   *Builder
	transport Transport
	logger    *slog.Logger
}

// NewExecutor creates an Executor over the given builder and transport.
func NewExecutor(builder *Builder, transport Transport, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{builder: builder, transport: transport, logger: logger}
}

// Exec realizes the intent and delivers the outcome through done. Build
// failures (including schema validation) are delivered through the
// completion as well, never raised past it.
func (e *Executor) Exec(ctx context.Context, in Intent, done Completion) {
	done(e.exec(ctx, in))
}

// exec is the synchronous core of Exec; the token manager calls it directly.
func (e *Executor) exec(ctx context.Context, in Intent) (*Result, error) {
	wr, err := e.builder.Build(in)
	if err != nil {
		return nil, err
	}

	resp, err := e.transport.Send(ctx, wr)
	if err != nil {
		e.logger.Warn("transport failure",
			slog.String("method", in.Method),
			slog.String("path", in.Path),
			slog.String("error", err.Error()),
		)

		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		e.logger.Warn("request failed",
			slog.String("method", in.Method),
			slog.String("path", in.Path),
			slog.Int("status", resp.StatusCode),
		)

		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	e.logger.Debug("request succeeded",
		slog.String("method", in.Method),
		slog.String("path", in.Path),
		slog.Int("status", resp.StatusCode),
	)

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       decodeBody(resp.Body),
		Raw:        resp.Body,
	}, nil
}

// errorMessage extracts the "message" field from a JSON error body, falling
// back to a generic message.
func errorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}

	return unknownErrorMessage
}

// decodeBody parses a response body as JSON, returning the raw text for
// non-JSON bodies and nil for empty ones.
func decodeBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}

	return v
}
