package core

// error_messages.go maps technical errors to user-facing messages with a
// support code. Codes are grouped by area:
//
//	SCH001-SCH099  metadata document problems
//	VAL001-VAL099  column lookups
//	FILE001-FILE099 data file problems
//	CHK001-CHK099  check execution
//	RATE001        request throttling
//	ERR000         anything unrecognised; see the logs for the cause

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabcheck/internal/schema"
)

// UserMessage is a user-facing rendering of an error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{schema.ErrUnknownColumnType, UserMessage{
		Message: "The metadata declares a column type that cannot be checked",
		Action:  "Give every attribute a nominal, ordinal, ratio, interval or dateTime measurement scale",
		Code:    "SCH001",
	}},
	{schema.ErrNoDataTables, UserMessage{
		Message: "The metadata declares no data tables",
		Action:  "Add a dataTable entity for each data file",
		Code:    "SCH002",
	}},
	{schema.ErrEmptyDocument, UserMessage{
		Message: "The metadata document is empty",
		Action:  "Upload a complete EML document",
		Code:    "SCH003",
	}},
	{ErrDocumentNotFound, UserMessage{
		Message: "No metadata document has been stored",
		Action:  "Upload the EML document first",
		Code:    "SCH004",
	}},
	{ErrColumnNotFound, UserMessage{
		Message: "Column not found in the data file",
		Action:  "Check the column name against the file header",
		Code:    "VAL001",
	}},
	{ErrUnnamedColumn, UserMessage{
		Message: "The column has no name",
		Action:  "Give every column in the header row a name",
		Code:    "VAL002",
	}},
	{ErrDataFileNotFound, UserMessage{
		Message: "Data file not found",
		Action:  "Upload the file named in the metadata",
		Code:    "FILE001",
	}},
	{ErrInvalidCSV, UserMessage{
		Message: "The data file could not be parsed",
		Action:  "Check the delimiter and quote character declared for the file",
		Code:    "FILE002",
	}},
	{ErrUnsupportedEncoding, UserMessage{
		Message: "The declared character encoding is not supported",
		Action:  "Save the file as UTF-8 and update the metadata",
		Code:    "FILE003",
	}},
	{ErrInvalidName, UserMessage{
		Message: "The name contains characters that are not allowed",
		Action:  "Use a plain file name without path separators",
		Code:    "FILE004",
	}},
	{ErrTooManyChecks, UserMessage{
		Message: "The system is busy with other checks",
		Action:  "Please wait a moment and try again",
		Code:    "CHK001",
	}},
}

// errorPatterns match errors from outside this module by message text.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"parse eml", UserMessage{
		Message: "The metadata document is not well-formed XML",
		Action:  "Validate the EML document and upload it again",
		Code:    "SCH005",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "CHK002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Lower the row ceiling or try again later",
		Code:    "CHK003",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user message. Known sentinels are
// matched with errors.Is, then message patterns case-insensitively.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
