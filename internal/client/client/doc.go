// Package client talks to the vehicle registry REST backend.
//
// # Overview
//
// The Client interface is the contract the submission pipeline depends on:
// record CRUD, the single-flag status patch, the duplicate check and a
// health probe. HTTPClient implements it over JSON/HTTP and is safe for
// concurrent use.
//
// # Error Handling
//
// Responses are mapped to errors in one place (mapStatus):
//
//   - 400/422 -> *ValidationError (matches common.ErrValidation)
//   - 401/403 -> ErrUnauthorized
//   - 404     -> common.ErrorNotFound
//   - 409     -> common.ErrConflict
//   - 5xx     -> *StatusError matching ErrServer
//
// Transport failures (dial, reset, timeout) are wrapped with ErrUnavailable.
// All operations honor context cancellation.
package client
