// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"eligibility-workers/internal/eligibility/rules"
	"eligibility-workers/internal/eligibility/versioning"
	"eligibility-workers/internal/models"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeApplicantValidationFailed ErrorCode = "APPLICANT_VALIDATION_FAILED"
	ErrCodeInvalidInput              ErrorCode = "INVALID_INPUT"
	ErrCodeRuleEvaluationFailed      ErrorCode = "RULE_EVALUATION_FAILED"
	ErrCodeUnknownJurisdiction       ErrorCode = "UNKNOWN_JURISDICTION"
	ErrCodeRuleNotFound              ErrorCode = "RULE_NOT_FOUND"
	ErrCodeAmbiguousActiveRule       ErrorCode = "AMBIGUOUS_ACTIVE_RULE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeCatalogLoadFailed        ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeBrokerUnavailable        ErrorCode = "BROKER_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewApplicantValidationFailedError(err error) *StandardError {
	return newError(ErrCodeApplicantValidationFailed, "Eligibility input validation failed", err.Error(), false, err)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false, nil)
}

// NewRuleEvaluationFailedError reports a corrupt stored rule. Data must be
// fixed before a retry can succeed.
func NewRuleEvaluationFailedError(err error) *StandardError {
	return newError(ErrCodeRuleEvaluationFailed, "Program rule could not be evaluated", err.Error(), false, err)
}

func NewUnknownJurisdictionError(err error) *StandardError {
	return newError(ErrCodeUnknownJurisdiction, "No reference data for jurisdiction", err.Error(), false, err)
}

func NewRuleNotFoundError(err error) *StandardError {
	return newError(ErrCodeRuleNotFound, "No program rule in force", err.Error(), false, err)
}

func NewAmbiguousActiveRuleError(err error) *StandardError {
	return newError(ErrCodeAmbiguousActiveRule, "More than one program rule in force", err.Error(), false, err)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewQueryTimeoutError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true, err)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Candidate cache unavailable", err.Error(), true, err)
}

func NewCatalogLoadFailedError(path string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Program catalog could not be loaded",
		fmt.Sprintf("path: %s, error: %s", path, err.Error()), false, err)
}

// NewBrokerUnavailableError reports a Zeebe gateway that could not be reached.
func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Workflow broker unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

// ==========================
// 4. Domain Error Mapping
// ==========================

// FromDomainError classifies an error from the evaluation core or the rule
// repository. StandardErrors pass through unchanged.
func FromDomainError(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var vErr *models.ValidationError
	var ujErr *models.UnknownJurisdictionError
	switch {
	case stderrors.As(err, &vErr):
		return NewApplicantValidationFailedError(err).WithMetadata("field", vErr.Field)
	case stderrors.Is(err, rules.ErrRuleEvaluation):
		return NewRuleEvaluationFailedError(err)
	case stderrors.As(err, &ujErr):
		return NewUnknownJurisdictionError(err).WithMetadata("jurisdiction", ujErr.Jurisdiction)
	case stderrors.Is(err, versioning.ErrAmbiguousActiveRule):
		return NewAmbiguousActiveRuleError(err)
	case stderrors.Is(err, versioning.ErrNoActiveRule):
		return NewRuleNotFoundError(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewQueryTimeoutError("eligibility", err)
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 5. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeCacheUnavailable,
		ErrCodeBrokerUnavailable:
		return 3
	case ErrCodeQueryTimeout:
		return 2
	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN codes are the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "RULE"):
		return "RULES"
	case strings.Contains(codeStr, "JURISDICTION"):
		return "REFERENCE_DATA"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "CATALOG"):
		return "STORAGE"
	case strings.Contains(codeStr, "BROKER"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
