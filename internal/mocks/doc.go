// Package mocks provides shared fakes for the language model adapter and the
// token service. Each mock has function fields for custom behavior and
// default return values otherwise, and records the calls it receives.
package mocks
