package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrMissingToken   = fmt.Errorf("missing bearer token")
	ErrEmptyIdentity  = fmt.Errorf("identity must not be empty")
	ErrUnknownEvent   = fmt.Errorf("unknown event name")
	ErrSessionRebound = fmt.Errorf("session already bound to an identity")
)
