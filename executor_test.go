package apiweave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discardLogger keeps test output quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransport records every wire request and answers from a handler.
type fakeTransport struct {
	mu       sync.Mutex
	requests []*WireRequest
	handler  func(*WireRequest) (*WireResponse, error)
}

func (f *fakeTransport) Send(_ context.Context, wr *WireRequest) (*WireResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, wr)
	f.mu.Unlock()

	if f.handler == nil {
		return &WireResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
	}

	return f.handler(wr)
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

// fakeValidator returns a fixed issue list for every payload.
type fakeValidator struct {
	issues []ValidationIssue
	called int
}

func (f *fakeValidator) Validate(_, _ any) ([]ValidationIssue, error) {
	f.called++
	return f.issues, nil
}

func newTestExecutor(transport Transport, v SchemaValidator) *Executor {
	cfg := NewConfig("https://api.test")
	return NewExecutor(NewBuilder(cfg, v), transport, discardLogger())
}

func TestExec_Success(t *testing.T) {
	ft := &fakeTransport{handler: func(_ *WireRequest) (*WireResponse, error) {
		return &WireResponse{StatusCode: 200, Body: []byte(`{"ok":true}`)}, nil
	}}
	exec := newTestExecutor(ft, nil)

	var got *Result
	exec.Exec(context.Background(), Intent{Path: "/x", Method: "GET"}, func(r *Result, err error) {
		require.NoError(t, err)
		got = r
	})

	require.NotNil(t, got)
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, map[string]any{"ok": true}, got.Body)
}

func TestExec_StatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message extracted", 404, `{"message":"no such user"}`, "no such user"},
		{"non-JSON body", 500, `boom`, "Unknown Error"},
		{"empty body", 503, ``, "Unknown Error"},
		{"JSON without message", 400, `{"error":"x"}`, "Unknown Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{handler: func(_ *WireRequest) (*WireResponse, error) {
				return &WireResponse{StatusCode: tt.status, Body: []byte(tt.body)}, nil
			}}
			exec := newTestExecutor(ft, nil)

			var gotErr error
			exec.Exec(context.Background(), Intent{Path: "/x", Method: "GET"}, func(r *Result, err error) {
				assert.Nil(t, r)
				gotErr = err
			})

			var se *StatusError
			require.ErrorAs(t, gotErr, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.message, se.Message)
		})
	}
}

func TestExec_TransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	ft := &fakeTransport{handler: func(_ *WireRequest) (*WireResponse, error) {
		return nil, cause
	}}
	exec := newTestExecutor(ft, nil)

	var gotErr error
	exec.Exec(context.Background(), Intent{Path: "/x", Method: "GET"}, func(_ *Result, err error) {
		gotErr = err
	})

	var te *TransportError
	require.ErrorAs(t, gotErr, &te)
	assert.ErrorIs(t, gotErr, cause)
}

func TestExec_BuildFailureDeliveredThroughCompletion(t *testing.T) {
	ft := &fakeTransport{}
	fv := &fakeValidator{issues: []ValidationIssue{{Path: "/name", Message: "required"}}}
	exec := newTestExecutor(ft, fv)

	var gotErr error
	calls := 0
	exec.Exec(context.Background(), Intent{
		Path:    "/users",
		Method:  "POST",
		Payload: map[string]any{},
		Schema:  map[string]any{"required": []string{"name"}},
	}, func(r *Result, err error) {
		calls++
		assert.Nil(t, r)
		gotErr = err
	})

	assert.Equal(t, 1, calls)

	var ve *ValidationError
	require.ErrorAs(t, gotErr, &ve)
	assert.Equal(t, 0, ft.calls(), "no transport call after a validation failure")
}

func TestExec_NonJSONSuccessBodyReturnedAsString(t *testing.T) {
	ft := &fakeTransport{handler: func(_ *WireRequest) (*WireResponse, error) {
		return &WireResponse{StatusCode: 200, Body: []byte("plain text")}, nil
	}}
	exec := newTestExecutor(ft, nil)

	res, err := exec.exec(context.Background(), Intent{Path: "/x", Method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, "plain text", res.Body)
	assert.Equal(t, []byte("plain text"), res.Raw)
}
