package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput          = "FLEET_BAD_INPUT"
	ServiceErrorVehicleUnresolved = "FLEET_VEHICLE_UNRESOLVED"
	ServiceErrorUpstreamFailed    = "FLEET_UPSTREAM_FAILED"
	ServiceErrorMalformedResponse = "FLEET_MALFORMED_RESPONSE"
	ServiceErrorSagaAborted       = "FLEET_SAGA_ABORTED"
	ServiceErrorNotFound          = "FLEET_NOT_FOUND"
	ServiceErrorInternal          = "FLEET_INTERNAL_ERROR"
)

// ValidationError covers missing required input; it fails before any external
// call is issued.
func ValidationError(message string) error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput)
}

// ExternalError wraps any non-success remote response, preserving the HTTP
// status and (truncated) body for manual remediation.
func ExternalError(message string, status int, body string) error {
	return goerrors.New(message, goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ServiceErrorUpstreamFailed).
		WithMetadata(map[string]any{
			"upstream_status": status,
			"upstream_body":   truncateBody(body),
		})
}

// MalformedResponseError covers a success response missing an expected field,
// e.g. an upload confirmation without a URL.
func MalformedResponseError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryOperation).
		WithCode(http.StatusBadGateway).
		WithTextCode(ServiceErrorMalformedResponse)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// SagaAbortedError reports a mid-sequence failure together with the state it
// occurred at and any identifiers already produced, so a caller can remediate
// manually.
func SagaAbortedError(cause error, state WorkOrderSagaState) error {
	metadata := map[string]any{
		"invocation_id": state.InvocationID,
		"failed_state":  string(state.State),
	}
	if state.VehicleID != nil {
		metadata["vehicle_id"] = *state.VehicleID
	}
	if state.WorkOrderID != nil {
		metadata["work_order_id"] = *state.WorkOrderID
	}
	if strings.TrimSpace(state.DocumentURL) != "" {
		metadata["document_url"] = state.DocumentURL
	}
	if state.ServiceTaskID != nil {
		metadata["service_task_id"] = *state.ServiceTaskID
	}
	return goerrors.Wrap(cause, goerrors.CategoryOperation, "saga aborted at "+string(state.State)).
		WithCode(http.StatusBadGateway).
		WithTextCode(ServiceErrorSagaAborted).
		WithMetadata(metadata)
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryExternal:
		return ServiceErrorUpstreamFailed
	case goerrors.CategoryOperation:
		return ServiceErrorSagaAborted
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryExternal, goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

const maxErrorBodyBytes = 2048

func truncateBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if len(trimmed) <= maxErrorBodyBytes {
		return trimmed
	}
	return trimmed[:maxErrorBodyBytes]
}
