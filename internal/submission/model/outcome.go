package model

import (
	"io"
	"time"

	appErr "submitrelay/pkg/errors"
)

// FetchOutcome is the result of downloading a submission artifact.
// A nil Err means Body is an open stream owned by the receiver.
type FetchOutcome struct {
	Body          io.ReadCloser
	ContentLength int64
	Err           error
}

// OK reports whether the artifact was fetched.
func (o FetchOutcome) OK() bool {
	return o.Err == nil && o.Body != nil
}

// Reason returns the failure reason, or "" on success.
func (o FetchOutcome) Reason() string {
	return appErr.Reason(o.Err)
}

// Close releases the stream if one is held.
func (o FetchOutcome) Close() error {
	if o.Body == nil {
		return nil
	}
	return o.Body.Close()
}

// UploadOutcome reports where the artifact was relayed to.
type UploadOutcome struct {
	Status bool   `json:"status"`
	Path   string `json:"path,omitempty"`
}

// OutcomeType selects the notification template.
type OutcomeType string

const (
	OutcomeSuccess OutcomeType = "success"
	OutcomeFailure OutcomeType = "fail"
)

// AuditRecord is the persisted trace of one submission attempt.
type AuditRecord struct {
	ID           int64  `json:"Id" dynamodbav:"Id"`
	AssignmentID string `json:"assignment_id" dynamodbav:"assignment_id"`
	Email        string `json:"email" dynamodbav:"email"`
	Timestamp    string `json:"timestamp" dynamodbav:"timestamp"`
	FilePath     string `json:"filePath" dynamodbav:"filePath"`
}

// Summary is the final status of one invocation.
type Summary struct {
	InvocationID     string    `json:"invocationId"`
	Parsed           bool      `json:"parsed"`
	SubmissionStatus bool      `json:"submissionStatus"`
	StorageStatus    bool      `json:"storageStatus"`
	EmailStatus      bool      `json:"emailStatus"`
	RecordWritten    bool      `json:"recordWritten"`
	FetchError       string    `json:"fetchError,omitempty"`
	ParseError       string    `json:"parseError,omitempty"`
	StoragePath      string    `json:"storagePath,omitempty"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
}
