package domain

import "errors"

var (
	ErrInvalidLevel        = errors.New("invalid log level")
	ErrInvalidOffsetPolicy = errors.New("invalid offset policy")
	ErrUnknownTransport    = errors.New("unknown transport")
)
