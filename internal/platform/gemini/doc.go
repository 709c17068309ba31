// Package gemini implements generation.Generator on top of Google's Gemini API.
//
// Each segment is sent as a single user message with the rendered system
// prompt attached as a system instruction, and the model is asked for an
// application/json reply. Transport failures are retried with exponential
// backoff; safety blocks and empty replies are reported as invalid responses
// and never retried.
package gemini
