package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
	ErrEmptyCatalog      = fmt.Errorf("no boss has been found in catalog")
	ErrSessionNotFound   = fmt.Errorf("raid session not found")
	ErrNotATrain         = fmt.Errorf("raid session has no stops")
	ErrInvalidCommand    = fmt.Errorf("invalid command")
	ErrUnknownCommand    = fmt.Errorf("unknown command")
	ErrCapacityExceeded  = fmt.Errorf("capacity exceeded")
	ErrInvalidTransition = fmt.Errorf("invalid transition")
	ErrNotFound          = fmt.Errorf("participant not found")
	ErrUnknownBoss       = fmt.Errorf("unknown boss")
	ErrUnknownTier       = fmt.Errorf("unknown tier")
	ErrShardFull         = fmt.Errorf("session command channel full")
	ErrInvalidPayload    = fmt.Errorf("invalid event payload")
	ErrAlreadyStarted    = fmt.Errorf("orchestrator already started")
)
