// Package service contains the application use cases. It coordinates the
// document store, the background task pipeline and the synthesizer so that
// delivery mechanisms (the HTTP API, the CLI) only deal with documents.
//
// Services receive their dependencies through constructor injection and
// translate store errors into the sentinels declared in errors.go, which the
// API layer maps to HTTP status codes.
package service
