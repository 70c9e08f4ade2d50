package core

// Error Codes Reference
//
// This file defines operator-friendly error messages with codes for support
// reference. Stage reports and HTTP responses carry the code so a failed run
// can be diagnosed without reading the logs first.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source not found: A raw dataset file is missing
//	         Action: Place the olist_*_dataset.csv file in the input directory
//	         Patterns: "source not found"
//
//	SRC002 - File too large: Raw file exceeds the configured size limit
//	         Action: Raise INPUT_MAX_FILE_SIZE or split the file
//	         Patterns: "file too large"
//
// # Decoding Errors (ENC001, CSV001-CSV099)
//
//	ENC001 - Encoding error: File is neither UTF-8 nor latin-1
//	         Action: Re-export the file as UTF-8
//	         Patterns: "encoding error"
//
//	CSV001 - Invalid CSV: File could not be parsed
//	         Action: Check quoting and delimiters
//	         Patterns: "invalid csv"
//
//	CSV002 - Empty file: File has no header row
//	         Action: Re-export the dataset with its header
//	         Patterns: "empty file"
//
// # Registry Errors (REG001)
//
//	REG001 - Kind sealed: Identifiers were recorded after their stage finished
//	         Action: Report this as a bug; stage ordering is broken
//	         Patterns: "identifier kind sealed"
//
// # Persistence Errors (PST001-PST099, DB004-DB006)
//
//	PST001 - Persist failed: A cleaned table could not be written
//	         Action: Check output directory permissions and free space
//	         Patterns: "persist table"
//
//	PST002 - Sink unavailable: Output location could not be prepared
//	         Action: Check OUTPUT_DIR, DATABASE_URL and S3 settings
//	         Patterns: "prepare sink"
//
//	DB004 - Connection refused: Unable to connect to database
//	DB006 - Timeout: Operation timed out
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run in progress: Another run is active
//	RUN002 - Run not found: Unknown run id
//	RUN003 - Cancelled: The run context was cancelled
//	RUN004 - Deadline: The run exceeded RUN_TIMEOUT
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Source Errors
	// =========================================================================
	{
		pattern: "source not found",
		msg: UserMessage{
			Message: "A raw dataset file is missing",
			Action:  "Place the olist_*_dataset.csv file in the input directory",
			Code:    "SRC001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Raw file exceeds the configured size limit",
			Action:  "Raise INPUT_MAX_FILE_SIZE or split the file",
			Code:    "SRC002",
		},
	},

	// =========================================================================
	// Decoding Errors
	// =========================================================================
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File is neither UTF-8 nor latin-1",
			Action:  "Re-export the file as UTF-8",
			Code:    "ENC001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File could not be parsed as CSV",
			Action:  "Check quoting and delimiters",
			Code:    "CSV001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "File has no header row",
			Action:  "Re-export the dataset with its header",
			Code:    "CSV002",
		},
	},

	// =========================================================================
	// Registry Errors
	// =========================================================================
	{
		pattern: "identifier kind sealed",
		msg: UserMessage{
			Message: "Identifiers were recorded after their stage finished",
			Action:  "Report this as a bug; stage ordering is broken",
			Code:    "REG001",
		},
	},

	// =========================================================================
	// Persistence Errors
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "persist table",
		msg: UserMessage{
			Message: "A cleaned table could not be written",
			Action:  "Check output directory permissions and free space",
			Code:    "PST001",
		},
	},
	{
		pattern: "prepare sink",
		msg: UserMessage{
			Message: "Output location could not be prepared",
			Action:  "Check OUTPUT_DIR, DATABASE_URL and S3 settings",
			Code:    "PST002",
		},
	},

	// =========================================================================
	// Run Errors
	// =========================================================================
	{
		pattern: "run already in progress",
		msg: UserMessage{
			Message: "Another run is active",
			Action:  "Wait for the current run to finish",
			Code:    "RUN001",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Run not found",
			Action:  "List runs or start a new one",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Run was cancelled",
			Action:  "Start a new run; it always restarts from phase 1",
			Code:    "RUN003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Run timed out",
			Action:  "Raise RUN_TIMEOUT",
			Code:    "RUN004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the application logs for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
