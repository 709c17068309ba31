// Package task runs document synthesis in the background. Tasks are persisted
// before they are queued, so work interrupted by a restart is rebuilt through
// registered rehydrators and picked up again when the runner starts.
package task
