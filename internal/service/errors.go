package service

import "errors"

// ErrValidation marks client input the service refuses before touching
// storage. The HTTP layer maps it to 400.
var ErrValidation = errors.New("invalid request")
