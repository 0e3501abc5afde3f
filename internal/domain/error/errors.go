package error

import (
	"github.com/0xsj/overwatch-pkg/errors"
)

// Domain error codes
const (
	// Query bus errors
	CodeHandlerUnresolvable errors.Code = "QUERY_HANDLER_UNRESOLVABLE"
	CodeDuplicateHandler    errors.Code = "QUERY_HANDLER_DUPLICATE"
	CodeNoHandlerRegistered errors.Code = "QUERY_HANDLER_NOT_REGISTERED"
	CodeNilQuery            errors.Code = "QUERY_NIL"
	CodeResultTypeMismatch  errors.Code = "QUERY_RESULT_TYPE_MISMATCH"
	CodeUnknownQuery        errors.Code = "QUERY_UNKNOWN"
	CodeQueryMalformed      errors.Code = "QUERY_MALFORMED"

	// Container errors
	CodeComponentNotFound  errors.Code = "COMPONENT_NOT_FOUND"
	CodeComponentDuplicate errors.Code = "COMPONENT_DUPLICATE"
	CodeComponentCycle     errors.Code = "COMPONENT_CYCLE"

	// Service errors
	CodeServiceNotFound        errors.Code = "SERVICE_NOT_FOUND"
	CodeServiceIDRequired      errors.Code = "SERVICE_ID_REQUIRED"
	CodeServiceNameRequired    errors.Code = "SERVICE_NAME_REQUIRED"
	CodeServiceEndpointInvalid errors.Code = "SERVICE_ENDPOINT_INVALID"
	CodeServiceDIDInvalid      errors.Code = "SERVICE_DID_INVALID"
	CodeServiceStatusInvalid   errors.Code = "SERVICE_STATUS_INVALID"
	CodeServiceDeregistered    errors.Code = "SERVICE_DEREGISTERED"

	// Infrastructure errors
	CodeDirectoryUnavailable errors.Code = "DIRECTORY_UNAVAILABLE"
	CodeEventMalformed       errors.Code = "EVENT_MALFORMED"
)

// Query bus errors
var (
	ErrHandlerUnresolvable = errors.New(errors.KindValidation, CodeHandlerUnresolvable, "could not resolve query type for handler")

	ErrDuplicateHandler = errors.New(errors.KindConflict, CodeDuplicateHandler, "query type already has a handler")

	ErrNoHandlerRegistered = errors.New(errors.KindNotFound, CodeNoHandlerRegistered, "no query handler registered")

	ErrNilQuery = errors.New(errors.KindValidation, CodeNilQuery, "query is required")

	ErrResultTypeMismatch = errors.New(errors.KindDomain, CodeResultTypeMismatch, "query result has unexpected type")

	ErrUnknownQuery = errors.New(errors.KindValidation, CodeUnknownQuery, "unknown query")

	ErrQueryMalformed = errors.New(errors.KindValidation, CodeQueryMalformed, "query parameters are malformed")
)

// Container errors
var (
	ErrComponentNotFound = errors.New(errors.KindNotFound, CodeComponentNotFound, "component not found")

	ErrComponentDuplicate = errors.New(errors.KindConflict, CodeComponentDuplicate, "component already provided")

	ErrComponentCycle = errors.New(errors.KindDomain, CodeComponentCycle, "component dependency cycle")
)

// Service errors
var (
	ErrServiceNotFound = errors.New(errors.KindNotFound, CodeServiceNotFound, "service not found")

	ErrServiceIDRequired = errors.New(errors.KindValidation, CodeServiceIDRequired, "service ID is required")

	ErrServiceNameRequired = errors.New(errors.KindValidation, CodeServiceNameRequired, "service name is required")

	ErrServiceEndpointInvalid = errors.New(errors.KindValidation, CodeServiceEndpointInvalid, "service endpoint must be host:port")

	ErrServiceDIDInvalid = errors.New(errors.KindValidation, CodeServiceDIDInvalid, "service DID is invalid")

	ErrServiceStatusInvalid = errors.New(errors.KindValidation, CodeServiceStatusInvalid, "service status is invalid")

	ErrServiceDeregistered = errors.New(errors.KindDomain, CodeServiceDeregistered, "service is deregistered")
)

// Infrastructure errors
var (
	ErrDirectoryUnavailable = errors.New(errors.KindDomain, CodeDirectoryUnavailable, "directory store is unavailable")

	ErrEventMalformed = errors.New(errors.KindValidation, CodeEventMalformed, "directory event is malformed")
)

// Helper functions

func ServiceNotFound(id string) *errors.Error {
	return errors.NotFoundf("service %s not found", id)
}

func ServiceNotFoundByName(name string) *errors.Error {
	return errors.NotFoundf("service named %s not found", name)
}
