package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrAdminRequired    = &AppError{http.StatusForbidden, "ADMIN_REQUIRED", "Operation requires an admin token"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrNotConfigured    = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_CONFIGURED", "Account has no exchange rate configured"}
	ErrInvalidAmount    = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidRate      = &AppError{http.StatusBadRequest, "INVALID_RATE", "Exchange rate must be greater than zero"}
	ErrInvalidPercent   = &AppError{http.StatusBadRequest, "INVALID_PERCENT", "Percentage must not be negative"}
	ErrEntryNotFound    = &AppError{http.StatusNotFound, "ENTRY_NOT_FOUND", "No matching ledger entry"}
	ErrDuplicateMessage = &AppError{http.StatusConflict, "DUPLICATE_MESSAGE", "Message already processed"}
)
