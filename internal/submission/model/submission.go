package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SubmissionRequest is the notification payload for one submission attempt.
type SubmissionRequest struct {
	SubmissionURL string `json:"submissionUrl"`
	UserEmail     string `json:"userEmail"`
	AssignmentID  string `json:"assignmentId"`
	UserID        string `json:"userId"`
}

// UnmarshalJSON accepts identifiers encoded either as strings or as numbers.
func (r *SubmissionRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		SubmissionURL looseString `json:"submissionUrl"`
		UserEmail     looseString `json:"userEmail"`
		AssignmentID  looseString `json:"assignmentId"`
		UserID        looseString `json:"userId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.SubmissionURL = string(raw.SubmissionURL)
	r.UserEmail = string(raw.UserEmail)
	r.AssignmentID = string(raw.AssignmentID)
	r.UserID = string(raw.UserID)
	return nil
}

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = looseString(n.String())
	return nil
}
