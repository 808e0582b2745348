package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a message that is safe to show.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns a storage or infrastructure error into a code and a
// user-facing message. Driver details are never echoed back.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// sqlite: "UNIQUE constraint failed", postgres: "duplicate key"
	if strings.Contains(errStrLower, "unique constraint") || strings.Contains(errStrLower, "duplicate key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "The item already exists",
		}
	}

	// sqlite: "NOT NULL constraint failed: cart_items.name"
	if strings.Contains(errStrLower, "not null constraint") {
		return parseNotNullError(errStrLower)
	}

	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "The submitted values are invalid",
		}
	}

	if strings.Contains(errStrLower, "database is locked") ||
		strings.Contains(errStrLower, "no such table") ||
		strings.Contains(errStrLower, "sql: database is closed") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The cart store is unavailable. Please try again",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service could not be reached. Please try again",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseNotNullError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "name"):
		return ErrorInfo{Code: ValidationRequired, Message: "Item name is required"}
	case strings.Contains(errLower, "price"):
		return ErrorInfo{Code: ValidationRequired, Message: "Item price is required"}
	case strings.Contains(errLower, "quantity"):
		return ErrorInfo{Code: ValidationRequired, Message: "Quantity is required"}
	}
	return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
}

func getNotFoundMessage(context string) string {
	if strings.Contains(strings.ToLower(context), "cart") {
		return "Cart item not found"
	}
	return "The requested data was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "add"), strings.Contains(contextLower, "create"):
		return "Failed to add the item. Please try again"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the item. Please try again"
	case strings.Contains(contextLower, "remove"), strings.Contains(contextLower, "delete"), strings.Contains(contextLower, "clear"):
		return "Failed to remove from the cart. Please try again"
	case strings.Contains(contextLower, "export"):
		return "Failed to export the cart. Please try again"
	}
	return "Something went wrong. Please try again"
}

// ParseAndRespond parses err and writes it as an ErrorResponse.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
