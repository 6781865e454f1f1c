// Package apiweave is a client runtime for JSON/form REST APIs: it turns
// declarative endpoint descriptors into callable operations, manages an
// OAuth2 client-credentials access token transparently with single-flight
// acquisition, validates outgoing payloads against JSON Schema, and maps
// transport and HTTP outcomes to a uniform result or classified error.
//
// A minimal round trip:
//
//	cfg := apiweave.NewConfig("https://api.example.com")
//	cfg.SetCredentials("my-client", "my-secret")
//
//	client := apiweave.New(cfg)
//	getUser := client.Describe(apiweave.Descriptor{Path: "/users/:id", Method: "GET"})
//
//	res, err := getUser.Call(ctx, 42)
//
// The first call performs one OAuth2 token exchange no matter how many
// operations fire concurrently; subsequent calls reuse the stored token.
package apiweave
