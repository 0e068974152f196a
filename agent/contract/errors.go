package contract

import "errors"

var (
	ErrOracleUnavailable = errors.New("oracle unavailable")
	ErrOracleMalformed   = errors.New("oracle response malformed")
	ErrDomainService     = errors.New("domain service failure")
	ErrValidation        = errors.New("validation failed")
	ErrLoopExceeded      = errors.New("internal step loop exceeded")
	ErrSessionNotFound   = errors.New("session not found")
)
