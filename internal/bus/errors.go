package bus

import "errors"

var (
	ErrAlreadyRegistered = errors.New("endpoint already registered")
	ErrNotRegistered     = errors.New("endpoint not registered")
	ErrHandlerMismatch   = errors.New("registered handler does not match")
)
