package contract

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("generation service unavailable")
	ErrMalformedDirective  = errors.New("routing directive is malformed")
	ErrMalformedContract   = errors.New("specialist contract is malformed")
	ErrUnknownRoute        = errors.New("no specialist registered for route")
	ErrValidation          = errors.New("validation failed")
)
