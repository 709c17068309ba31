package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrTransport is returned when the model service cannot be reached, the
	// call fails in transit, or the caller's context ends first.
	ErrTransport = errors.New("language model transport failure")

	// ErrInvalidResponse is returned when the model reply cannot be parsed, has no
	// units array, or does not match the expected schema
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model refuses the content due to safety
	// filters. Adapters wrap it together with ErrInvalidResponse.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
