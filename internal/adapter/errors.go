package adapter

import "errors"

// Argument and contract errors. These are raised by the transports
// themselves, never by the provider.
var (
	// ErrInvalidArgument is returned before any network call when a key or
	// entity is malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrContractViolation is returned when the provider answers a single-key
	// lookup with more than one found entity.
	ErrContractViolation = errors.New("datastore contract violation")

	// ErrUnsupportedValue is returned when a stored blob property cannot be
	// decoded. Properties of other types are skipped, not rejected.
	ErrUnsupportedValue = errors.New("unsupported property value")
)

// Transport errors, mapped from HTTP status codes (REST) or gRPC status codes
// (native client).
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrUnavailable         = errors.New("service unavailable")
)
