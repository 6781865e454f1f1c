package apiweave

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Client is the request lifecycle runtime. It wires the config store, token
// manager, request builder, executor, and transport together and
// manufactures callable operations from descriptors.
type Client struct {
	cfg      *Config
	tokens   *TokenManager
	executor *Executor
	logger   *slog.Logger
}

type options struct {
	transport Transport
	validator SchemaValidator
	logger    *slog.Logger
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithTransport replaces the HTTP transport; tests use this to observe or
// fake the wire.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithValidator replaces the schema validator.
func WithValidator(v SchemaValidator) Option {
	return func(o *options) { o.validator = v }
}

// WithLogger sets the logger for all components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTimeout sets the per-request timeout of the default HTTP transport.
// Ignored when WithTransport is also given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New creates a Client over the given config.
func New(cfg *Config, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	if o.transport == nil {
		o.transport = NewHTTPTransport(cfg, o.timeout, o.logger)
	}

	builder := NewBuilder(cfg, o.validator)
	executor := NewExecutor(builder, o.transport, o.logger)

	return &Client{
		cfg:      cfg,
		tokens:   NewTokenManager(cfg, executor, o.logger),
		executor: executor,
		logger:   o.logger,
	}
}

// Tokens returns the client's token manager, for explicit refreshes or for
// bridging into oauth2 stacks via TokenSource.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// Operation is a callable remote operation manufactured from a Descriptor.
// It may be invoked any number of times with independent argument sets; the
// descriptor's path template is never modified across calls.
type Operation struct {
	d Descriptor
	c *Client
}

// Describe turns a descriptor into a callable operation. The method is
// normalized to upper case; the descriptor itself is not retained mutably.
func (c *Client) Describe(d Descriptor) *Operation {
	d.Method = strings.ToUpper(d.Method)

	return &Operation{d: d, c: c}
}

// Invoke performs one call. The last argument must be a Completion (or a
// plain func(*Result, error)); arguments before it are positional
// placeholder values, optionally followed by an object payload.
//
// Errors that occur before any network work — a missing completion, unmet
// path placeholders, missing payload properties — are returned
// synchronously and the completion is never invoked. Once the token or
// transport phase begins, every outcome is delivered through the completion
// exactly once.
func (op *Operation) Invoke(ctx context.Context, args ...any) error {
	if len(args) == 0 {
		return ErrMissingCallback
	}

	done, ok := asCompletion(args[len(args)-1])
	if !ok {
		return ErrMissingCallback
	}

	rest := args[:len(args)-1]
	positional := rest

	var payload any
	if len(rest) > 0 && isObject(rest[len(rest)-1]) {
		payload = rest[len(rest)-1]
		positional = rest[:len(rest)-1]
	}

	path, err := bindPath(op.d, positional, payload)
	if err != nil {
		return err
	}

	if payload == nil {
		payload = map[string]any{}
	}

	token, err := op.c.tokens.EnsureToken(ctx)
	if err != nil {
		done(nil, err)

		return nil
	}

	op.c.executor.Exec(ctx, Intent{
		Path:    path,
		Method:  op.d.Method,
		Headers: op.d.Headers,
		Payload: payload,
		Schema:  op.d.Schema,
		Token:   token,
	}, done)

	return nil
}

// Call is the synchronous form of Invoke: it supplies its own completion
// and returns the delivered outcome.
func (op *Operation) Call(ctx context.Context, args ...any) (*Result, error) {
	var (
		res     *Result
		callErr error
	)

	done := Completion(func(r *Result, e error) {
		res, callErr = r, e
	})

	if err := op.Invoke(ctx, append(args, done)...); err != nil {
		return nil, err
	}

	return res, callErr
}

// asCompletion accepts both the named Completion type and its underlying
// function type.
func asCompletion(v any) (Completion, bool) {
	switch f := v.(type) {
	case Completion:
		return f, true
	case func(*Result, error):
		return f, true
	default:
		return nil, false
	}
}
