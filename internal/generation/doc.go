// Package generation defines the boundary between the synthesis pipeline and
// the language model that reads document segments. It holds the request
// contract every completion adapter implements, the prompt templates shared by
// those adapters, the retry policy for transport failures, and the validator
// that turns a raw model reply into a typed response or rejects it.
//
// Concrete adapters live under internal/platform (gemini, openai). The
// package itself never talks to the network.
package generation
