// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Locator errors
	CodeLocatorInvalid Code = "LOCATOR_INVALID"

	// Team errors
	CodeTeamNameEmpty    Code = "TEAM_NAME_EMPTY"
	CodeTeamGroupMissing Code = "TEAM_GROUP_MISSING"
	CodeTeamGroupUnknown Code = "TEAM_GROUP_UNKNOWN"
	CodeTeamPassInvalid  Code = "TEAM_PASS_INVALID"
	CodeTeamUnregistered Code = "TEAM_UNREGISTERED"

	// Clue errors
	CodeClueNotFound        Code = "CLUE_NOT_FOUND"
	CodeClueOutsideTrack    Code = "CLUE_OUTSIDE_TRACK"
	CodePositionBlocked     Code = "POSITION_BLOCKED"
	CodePositionAlreadyDone Code = "POSITION_ALREADY_SOLVED"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeLocatorInvalid,
		CodeTeamNameEmpty,
		CodeTeamGroupMissing,
		CodeTeamGroupUnknown,
		CodeClueOutsideTrack:
		return codes.InvalidArgument

	// Unauthenticated - the team pass is missing, stale, or forged
	case CodeTeamPassInvalid,
		CodeTeamUnregistered:
		return codes.Unauthenticated

	// FailedPrecondition - state doesn't allow operation
	case CodePositionBlocked,
		CodePositionAlreadyDone:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeClueNotFound:
		return codes.NotFound

	// Unavailable - durable store reads/writes that may succeed on retry
	case CodeStorageUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// Retryable reports whether a manual reload can plausibly clear the error.
// Validation and gating failures require a different participant action
// instead.
func (c Code) Retryable() bool {
	return c == CodeStorageUnavailable || c == CodeUnknown
}
