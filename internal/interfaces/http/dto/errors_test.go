package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"unauthorized", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"signature invalid", ErrCodeSignatureInvalid, http.StatusUnauthorized},
		{"duplicate event", ErrCodeDuplicateEvent, http.StatusConflict},
		{"concurrency conflict", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"invalid state", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"extraction failed", ErrCodeExtractionFailed, http.StatusUnprocessableEntity},
		{"bad request", ErrCodeBadRequest, http.StatusBadRequest},
		{"rate limited", ErrCodeRateLimited, http.StatusTooManyRequests},
		{"internal", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code falls back to 500", "ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"tenant not found maps to not found", "TENANT_NOT_FOUND", ErrCodeNotFound},
		{"signature invalid", "SIGNATURE_INVALID", ErrCodeSignatureInvalid},
		{"duplicate event", "DUPLICATE_EVENT", ErrCodeDuplicateEvent},
		{"invalid transition maps to invalid state", "INVALID_TRANSITION", ErrCodeInvalidState},
		{"extraction failed", "EXTRACTION_FAILED", ErrCodeExtractionFailed},
		{"validation failed", "VALIDATION_FAILED", ErrCodeValidation},
		{"invalid credentials maps to unauthorized", "INVALID_CREDENTIALS", ErrCodeUnauthorized},
		{"account disabled maps to forbidden", "ACCOUNT_DISABLED", ErrCodeForbidden},
		{"concurrency conflict", "CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"unmapped code passes through", "SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.raw))
		})
	}
}

func TestNormalizedDomainCodesResolveToClientStatus(t *testing.T) {
	// Every mapped domain code must land on a non-500 status once normalized,
	// except the ones that are genuinely internal.
	internal := map[string]bool{
		"PASSWORD_HASH_FAILED": true,
		"INTERNAL_ERROR":       true,
	}
	for raw := range LegacyErrorCodeMapping {
		status := GetHTTPStatus(NormalizeErrorCode(raw))
		if internal[raw] {
			assert.Equal(t, http.StatusInternalServerError, status, raw)
			continue
		}
		assert.NotEqual(t, http.StatusInternalServerError, status, raw)
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Invoice not found", "req-123")

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Invoice not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "customer_name", Message: "Customer name is required"},
		{Field: "amount", Message: "Amount must be positive"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "customer_name", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeDuplicateEvent, "Payment event has already been processed", "req-abc")

	data, err := json.Marshal(resp)
	assert.NoError(t, err)

	var decoded Response
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)

	assert.False(t, decoded.Success)
	assert.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeDuplicateEvent, decoded.Error.Code)
	assert.Equal(t, "req-abc", decoded.Error.RequestID)
	assert.Nil(t, decoded.Data)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestDefaultListRequest(t *testing.T) {
	req := DefaultListRequest()

	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
	assert.Equal(t, "created_at", req.OrderBy)
	assert.Equal(t, "desc", req.OrderDir)
}
