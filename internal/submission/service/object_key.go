package service

import (
	"strings"
	"time"
)

const isoMillisLayout = "2006-01-02T15:04:05.000Z"

var punctuationStripper = strings.NewReplacer("-", "", ":", "", ".", "")

// ISOTimestamp formats t as an ISO-8601 UTC timestamp with millisecond precision.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillisLayout)
}

// CompactTimestamp is ISOTimestamp with '-', ':' and '.' removed, e.g. 20261016T093015123Z.
func CompactTimestamp(t time.Time) string {
	return punctuationStripper.Replace(ISOTimestamp(t))
}

// UsernameFromEmail returns the part of email before the first '@'.
// Values without '@' are returned unchanged.
func UsernameFromEmail(email string) string {
	username, _, _ := strings.Cut(email, "@")
	return username
}

// DeriveObjectKey builds the storage key {username}/{assignmentId}/{userId}_{timestamp}.zip.
func DeriveObjectKey(email, assignmentID, userID string, t time.Time) string {
	return UsernameFromEmail(email) + "/" + assignmentID + "/" + userID + "_" + CompactTimestamp(t) + ".zip"
}

// DeriveStoragePath prefixes the object key with the bucket name.
func DeriveStoragePath(bucket, email, assignmentID, userID string, t time.Time) string {
	return bucket + "/" + DeriveObjectKey(email, assignmentID, userID, t)
}
