package apiweave

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	accessTokenParam = "access_token"
)

// Intent is an abstract call: a substituted path, a method, optional header
// overrides, the payload, an optional schema, and the access token to carry.
// The Builder turns it into a concrete WireRequest.
type Intent struct {
	Path    string
	Method  string
	Headers map[string]string
	Payload any
	Schema  any
	Token   string
}

// WireRequest is a fully resolved request ready for a Transport. It is
// constructed fresh per call and never mutated after construction. Exactly
// one of JSONBody and FormBody is set for body-bearing requests.
type WireRequest struct {
	URL      string
	Method   string
	Headers  map[string]string
	Query    url.Values
	JSONBody any
	FormBody url.Values
}

// Builder assembles wire requests from call intents, validating JSON
// payloads against the intent's schema before anything is sent.
type Builder struct {
	cfg       *Config
	validator SchemaValidator
}

// NewBuilder creates a Builder. A nil validator selects the JSON Schema
// implementation.
func NewBuilder(cfg *Config, v SchemaValidator) *Builder {
	if v == nil {
		v = JSONSchemaValidator{}
	}

	return &Builder{cfg: cfg, validator: v}
}

// Build converts an intent into a WireRequest. GET payloads become query
// parameters; JSON content types get a schema-validated JSON body; any other
// content type gets a form-encoded body with no validation. A non-empty
// access token is always appended to the query as access_token, including
// for body-bearing methods.
func (b *Builder) Build(in Intent) (*WireRequest, error) {
	headers := map[string]string{
		"accept":       contentTypeJSON,
		"content-type": contentTypeJSON,
	}
	for k, v := range in.Headers {
		headers[strings.ToLower(k)] = v
	}

	req := &WireRequest{
		URL:     b.cfg.BaseURL() + in.Path,
		Method:  in.Method,
		Headers: headers,
		Query:   url.Values{},
	}

	switch {
	case in.Method == http.MethodGet:
		query, err := encodeForm(in.Payload)
		if err != nil {
			return nil, fmt.Errorf("encoding query parameters: %w", err)
		}

		req.Query = query
	case strings.HasPrefix(headers["content-type"], contentTypeJSON):
		if in.Schema != nil {
			issues, err := b.validator.Validate(in.Schema, in.Payload)
			if err != nil {
				return nil, fmt.Errorf("validating payload: %w", err)
			}

			if len(issues) > 0 {
				return nil, &ValidationError{Issues: issues}
			}
		}

		req.JSONBody = in.Payload
	default:
		form, err := encodeForm(in.Payload)
		if err != nil {
			return nil, fmt.Errorf("encoding form body: %w", err)
		}

		req.FormBody = form
	}

	if in.Token != "" {
		req.Query.Set(accessTokenParam, in.Token)
	}

	return req, nil
}

var formEncoder = schema.NewEncoder()

// encodeForm renders a payload as url-encoded values. Maps encode directly;
// structs encode through gorilla/schema so field tags decide the keys.
func encodeForm(payload any) (url.Values, error) {
	values := url.Values{}

	switch p := payload.(type) {
	case nil:
		return values, nil
	case url.Values:
		return p, nil
	case map[string]string:
		for k, v := range p {
			values.Set(k, v)
		}

		return values, nil
	case map[string]any:
		for k, v := range p {
			values.Set(k, formValue(v))
		}

		return values, nil
	default:
		if err := formEncoder.Encode(payload, values); err != nil {
			return nil, fmt.Errorf("unsupported payload type %T: %w", payload, err)
		}

		return values, nil
	}
}

// formValue renders one form value; strings pass through unquoted.
func formValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
