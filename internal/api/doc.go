// Package api exposes documents over HTTP. Handlers decode and validate
// requests, call the document service and translate its errors into status
// codes through MapErrorToStatusCode. Route wiring lives in cmd/server.
package api
