package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a domain error carried up to the HTTP boundary, where the
// error handler maps its code to a stable status category.
type AppError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets sentinel comparisons match on the code, so handlers can branch on
// e.g. ErrAlreadyLiked regardless of the message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Status:  http.StatusNotFound,
		Message: resource + " not found",
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Status:  http.StatusForbidden,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Status:  http.StatusConflict,
		Message: message,
	}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHENTICATED",
		Status:  http.StatusUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     err,
	}
}

// Social-graph specific errors. These carry their own codes so clients can
// distinguish them from generic conflicts.
var (
	ErrSelfFollow = &AppError{
		Code:    "SELF_FOLLOW",
		Status:  http.StatusBadRequest,
		Message: "You cannot follow yourself",
	}
	ErrAlreadyFollowing = &AppError{
		Code:    "ALREADY_FOLLOWING",
		Status:  http.StatusConflict,
		Message: "Already following this user",
	}
	ErrNotFollowing = &AppError{
		Code:    "NOT_FOLLOWING",
		Status:  http.StatusBadRequest,
		Message: "You are not following this user",
	}
	ErrAlreadyLiked = &AppError{
		Code:    "ALREADY_LIKED",
		Status:  http.StatusBadRequest,
		Message: "You have already liked this post",
	}
	ErrNotLiked = &AppError{
		Code:    "NOT_LIKED",
		Status:  http.StatusBadRequest,
		Message: "You have not liked this post",
	}
	ErrNestedReply = &AppError{
		Code:    "NESTED_REPLY",
		Status:  http.StatusBadRequest,
		Message: "Cannot reply to a reply. Please reply to the original comment",
	}
	ErrParentPostMismatch = &AppError{
		Code:    "PARENT_POST_MISMATCH",
		Status:  http.StatusBadRequest,
		Message: "Parent comment belongs to a different post",
	}
)
