package common

import (
	"academy-api/logger"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

// ErrorCode is a business error with a stable code and the HTTP status it
// maps to. Services return these (possibly wrapped) and handlers convert
// them with FromError.
type ErrorCode struct {
	Status  int
	Code    string
	Message string
}

func (c *ErrorCode) Error() string {
	return c.Message
}

func code(status int, c, message string) *ErrorCode {
	return &ErrorCode{Status: status, Code: c, Message: message}
}

var (
	ErrInternal         = code(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
	ErrInvalidInput     = code(http.StatusBadRequest, "INVALID_INPUT_VALUE", "Invalid input value")
	ErrMethodNotAllowed = code(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	ErrAccessDenied     = code(http.StatusForbidden, "HANDLE_ACCESS_DENIED", "Access denied")
	ErrNotFound         = code(http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found")
	ErrInvalidDateRange = code(http.StatusBadRequest, "INVALID_DATE_RANGE", "Start date must not be after end date")

	ErrAuthRequired              = code(http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication is required")
	ErrInvalidCredentials        = code(http.StatusUnauthorized, "AUTH_INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountSuspended          = code(http.StatusLocked, "AUTH_ACCOUNT_SUSPENDED", "The account is suspended")
	ErrAccountDeleted            = code(http.StatusLocked, "AUTH_ACCOUNT_DELETED", "The account is deleted")
	ErrAccountLocked             = code(http.StatusLocked, "AUTH_ACCOUNT_LOCKED", "The account is locked")
	ErrTokenExpired              = code(http.StatusUnauthorized, "AUTH_TOKEN_EXPIRED", "The token has expired")
	ErrInvalidToken              = code(http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "The token is invalid")
	ErrRefreshTokenNotFound      = code(http.StatusUnauthorized, "AUTH_REFRESH_TOKEN_NOT_FOUND", "Refresh token not found")
	ErrRefreshTokenExpired       = code(http.StatusUnauthorized, "AUTH_REFRESH_TOKEN_EXPIRED", "Refresh token has expired")
	ErrRateLimitExceeded         = code(http.StatusTooManyRequests, "AUTH_RATE_LIMIT_EXCEEDED", "Too many sign-in attempts, try again later")
	ErrMemberNotFound            = code(http.StatusNotFound, "MEMBER_NOT_FOUND", "Member not found")
	ErrMemberUsernameDuplicate   = code(http.StatusConflict, "MEMBER_USERNAME_DUPLICATE", "Username is already in use")
	ErrMemberEmailDuplicate      = code(http.StatusConflict, "MEMBER_EMAIL_DUPLICATE", "Email is already in use")
	ErrMemberPasswordMismatch    = code(http.StatusBadRequest, "MEMBER_PASSWORD_MISMATCH", "Current password does not match")
	ErrMemberSamePassword        = code(http.StatusBadRequest, "MEMBER_SAME_PASSWORD", "New password must differ from the current one")
	ErrCategoryGroupNotFound     = code(http.StatusNotFound, "CATEGORY_GROUP_NOT_FOUND", "Category group not found")
	ErrCategoryGroupExists       = code(http.StatusConflict, "CATEGORY_GROUP_ALREADY_EXISTS", "Category group name already exists")
	ErrCategoryGroupHasChildren  = code(http.StatusBadRequest, "CATEGORY_GROUP_HAS_CATEGORIES", "Category group still has categories")
	ErrCategoryNotFound          = code(http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	ErrCategorySlugExists        = code(http.StatusConflict, "CATEGORY_SLUG_ALREADY_EXISTS", "Slug already exists in this group")
	ErrCategoryHasRelatedData    = code(http.StatusBadRequest, "CATEGORY_HAS_RELATED_DATA", "Category is referenced by other data")
	ErrInvalidSlugFormat         = code(http.StatusBadRequest, "INVALID_SLUG_FORMAT", "Slug may only contain letters, digits and hyphens")
	ErrNoticeNotFound            = code(http.StatusNotFound, "NOTICE_NOT_FOUND", "Notice not found")
	ErrInvalidSearchType         = code(http.StatusBadRequest, "INVALID_SEARCH_TYPE", "Unsupported search type")
	ErrFileUploadFailed          = code(http.StatusInternalServerError, "FILE_UPLOAD_FAILED", "File upload failed")
	ErrFileNotFound              = code(http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
	ErrFileTooLarge              = code(http.StatusBadRequest, "FILE_TOO_LARGE", "File exceeds the maximum upload size")
	ErrFaqNotFound               = code(http.StatusNotFound, "FAQ_NOT_FOUND", "FAQ not found")
	ErrApplyNotFound             = code(http.StatusNotFound, "APPLY_APPLICATION_NOT_FOUND", "Application not found")
	ErrApplyAlreadyCompleted     = code(http.StatusBadRequest, "APPLY_APPLICATION_ALREADY_COMPLETED", "A completed application cannot be modified")
	ErrInvalidApplicationStatus  = code(http.StatusBadRequest, "INVALID_APPLICATION_STATUS", "Invalid application status")
	ErrInvalidSubjectForDivision = code(http.StatusBadRequest, "INVALID_SUBJECT_FOR_DIVISION", "This division does not take subjects")
	ErrSubjectRequired           = code(http.StatusBadRequest, "SUBJECT_REQUIRED_FOR_DIVISION", "At least one subject is required for this division")
	ErrInvalidSubjectForMiddle   = code(http.StatusBadRequest, "INVALID_SUBJECT_FOR_MIDDLE", "Subject is not offered for middle school")
	ErrInvalidSubjectForHigh     = code(http.StatusBadRequest, "INVALID_SUBJECT_FOR_HIGH", "Subject is not offered for high school")
	ErrQnaQuestionNotFound       = code(http.StatusNotFound, "QNA_QUESTION_NOT_FOUND", "Question not found")
	ErrQnaAnswerNotFound         = code(http.StatusNotFound, "QNA_ANSWER_NOT_FOUND", "Answer not found")
	ErrQnaSecretAccessDenied     = code(http.StatusForbidden, "QNA_SECRET_ACCESS_DENIED", "A secret question needs a view token")
	ErrQnaPasswordMismatch       = code(http.StatusUnauthorized, "QNA_PASSWORD_MISMATCH", "Password does not match")
	ErrQnaRateLimitExceeded      = code(http.StatusTooManyRequests, "QNA_RATE_LIMIT_EXCEEDED", "Too many password attempts, try again later")
	ErrQnaAnsweredModification   = code(http.StatusBadRequest, "QNA_ANSWERED_QUESTION_MODIFICATION", "An answered question cannot be modified")
	ErrQnaNotSecret              = code(http.StatusBadRequest, "QNA_NOT_SECRET_QUESTION", "The question is not secret")
	ErrQnaInvalidViewToken       = code(http.StatusUnauthorized, "QNA_INVALID_VIEW_TOKEN", "The view token is invalid")
	ErrPrivacyConsentRequired    = code(http.StatusBadRequest, "PRIVACY_CONSENT_REQUIRED", "Consent to the privacy policy is required")
	ErrActionLogNotFound         = code(http.StatusNotFound, "ADMIN_ACTION_LOG_NOT_FOUND", "Admin action log not found")
)

type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"errors,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError builds an error response for status with a generic code.
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    defaultCode(status),
		Message: message,
		Err:     err,
	}
}

// FromCode builds an error response from a catalog entry.
func FromCode(c *ErrorCode, err error) *AppError {
	return &AppError{Status: c.Status, Code: c.Code, Message: c.Message, Err: err}
}

// FromError maps a service error to a response. Catalog errors keep their
// status and code; anything else becomes a 500 with fallback as message.
func FromError(err error, fallback string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var c *ErrorCode
	if errors.As(err, &c) {
		return FromCode(c, nil)
	}
	return &AppError{
		Status:  ErrInternal.Status,
		Code:    ErrInternal.Code,
		Message: fallback,
		Err:     err,
	}
}

func defaultCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrInvalidInput.Code
	case http.StatusUnauthorized:
		return ErrAuthRequired.Code
	case http.StatusForbidden:
		return ErrAccessDenied.Code
	case http.StatusNotFound:
		return ErrNotFound.Code
	case http.StatusMethodNotAllowed:
		return ErrMethodNotAllowed.Code
	case http.StatusTooManyRequests:
		return ErrRateLimitExceeded.Code
	}
	return ErrInternal.Code
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Status,
			"error_code":     e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	body := errorResponse{
		Response: Response{
			Result:       ResultError,
			Code:         e.Code,
			Message:      e.Message,
			IsNeedLogin:  e.Status == http.StatusUnauthorized,
			AccessDenied: e.Status == http.StatusForbidden,
		},
		Errors: e.Details,
	}
	WriteJSON(w, e.Status, body)
}
