package orchestrator

import (
	"fmt"
	"time"
)

// ValidationError rejects an upload before it enters the pipeline.
// Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// TimeoutError marks a pipeline stage that exceeded its dynamic budget.
// The document is reported failed and nothing is cached.
type TimeoutError struct {
	Stage  string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("stage %s timed out after %s", e.Stage, e.Budget)
}

// ExternalServiceError wraps a collaborator failure. For optional
// collaborators the affected result is simply absent; for text
// extraction it aborts the document.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// CacheError is logged and downgraded to a cache miss; it never blocks
// the primary result.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string { return fmt.Sprintf("cache %s: %v", e.Op, e.Err) }

func (e *CacheError) Unwrap() error { return e.Err }
