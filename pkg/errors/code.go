package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 13000-13099: Submission intake errors
// 13100-13199: Artifact transfer errors
// 13200-13299: Audit & notification errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError ErrorCode = 10100

	// Cache errors (10200-10299)
	CacheError ErrorCode = 10200

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Submission Intake Errors (13000-13099) ==========

	SubmissionPayloadInvalid      ErrorCode = 13000
	SubmissionURLEmpty            ErrorCode = 13001
	SubmissionExtensionDisallowed ErrorCode = 13002
	SubmissionStatusNotFound      ErrorCode = 13003

	// ========== Artifact Transfer Errors (13100-13199) ==========

	ArtifactDownloadFailed ErrorCode = 13100
	ArtifactEmpty          ErrorCode = 13101
	ArtifactUploadFailed   ErrorCode = 13102
	StorageNotConfigured   ErrorCode = 13103

	// ========== Audit & Notification Errors (13200-13299) ==========

	AuditRecordWriteFailed ErrorCode = 13200
	NotificationSendFailed ErrorCode = 13201
	NotificationRenderFail ErrorCode = 13202
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	DatabaseError: "Database operation failed",
	CacheError:    "Cache operation failed",

	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	RequiredFieldEmpty: "Required field is empty",

	// Submission intake
	SubmissionPayloadInvalid:      "Submission notification payload is invalid",
	SubmissionURLEmpty:            "Empty submissionURL",
	SubmissionExtensionDisallowed: "disallowed extension",
	SubmissionStatusNotFound:      "Submission status not found",

	// Artifact transfer
	ArtifactDownloadFailed: "Failed to download submission artifact",
	ArtifactEmpty:          "empty content",
	ArtifactUploadFailed:   "Failed to upload submission artifact",
	StorageNotConfigured:   "Object storage is not configured",

	// Audit & notification
	AuditRecordWriteFailed: "Failed to write submission audit record",
	NotificationSendFailed: "Failed to send notification email",
	NotificationRenderFail: "Failed to render notification email",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == SubmissionStatusNotFound:
		return 404
	case c == ServiceUnavailable, c == StorageNotConfigured:
		return 503
	case c == Timeout:
		return 504
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c >= 13000 && c < 13003:
		return 400
	default:
		return 500
	}
}
