package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"submitrelay/internal/submission/model"
	appErr "submitrelay/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// ParseNotification decodes a submission request from an SNS event or a single SNS entity.
// The returned invocation id is the SNS MessageId, or a fresh UUID when the envelope has none.
func ParseNotification(raw []byte) (model.SubmissionRequest, string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return model.SubmissionRequest{}, "", appErr.New(appErr.SubmissionPayloadInvalid).WithMessage("empty notification")
	}

	entity, err := unwrapEnvelope(raw)
	if err != nil {
		return model.SubmissionRequest{}, "", err
	}

	invocationID := strings.TrimSpace(entity.MessageID)
	if invocationID == "" {
		invocationID = uuid.NewString()
	}

	message := strings.TrimSpace(entity.Message)
	if message == "" {
		return model.SubmissionRequest{}, invocationID, appErr.New(appErr.SubmissionPayloadInvalid).WithMessage("notification message is empty")
	}
	if !strings.HasPrefix(message, "{") {
		return model.SubmissionRequest{}, invocationID, appErr.New(appErr.SubmissionPayloadInvalid).WithMessage("notification message is not a JSON object")
	}

	var req model.SubmissionRequest
	if err := json.Unmarshal([]byte(message), &req); err != nil {
		return model.SubmissionRequest{}, invocationID, appErr.Wrapf(err, appErr.SubmissionPayloadInvalid, "decode notification message failed")
	}
	return req, invocationID, nil
}

// unwrapEnvelope returns the SNS entity carried by raw.
func unwrapEnvelope(raw []byte) (events.SNSEntity, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return events.SNSEntity{}, appErr.Wrapf(err, appErr.SubmissionPayloadInvalid, "notification is not a JSON object")
	}

	if _, ok := probe["Records"]; ok {
		var event events.SNSEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return events.SNSEntity{}, appErr.Wrapf(err, appErr.SubmissionPayloadInvalid, "decode SNS event failed")
		}
		if len(event.Records) == 0 {
			return events.SNSEntity{}, appErr.New(appErr.SubmissionPayloadInvalid).WithMessage("SNS event has no records")
		}
		return event.Records[0].SNS, nil
	}

	if _, ok := probe["Message"]; ok {
		var entity events.SNSEntity
		if err := json.Unmarshal(raw, &entity); err != nil {
			return events.SNSEntity{}, appErr.Wrapf(err, appErr.SubmissionPayloadInvalid, "decode SNS message failed")
		}
		return entity, nil
	}

	return events.SNSEntity{}, appErr.New(appErr.SubmissionPayloadInvalid).WithMessage("notification has neither records nor message")
}
