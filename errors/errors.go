package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrNoToken            = fmt.Errorf("no token cookie in handshake")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrSlowConsumer       = fmt.Errorf("connection send buffer full")
	ErrSessionClosed      = fmt.Errorf("session closed")
	ErrEmptyAttachment    = fmt.Errorf("attachment payload is empty")
)
