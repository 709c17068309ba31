// Package events decouples request handling from background work. Services
// publish TaskRequestEvents; handlers registered on an emitter turn them into
// tasks without either side importing the other.
package events
