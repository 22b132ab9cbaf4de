// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an engine error by what the caller can do about it
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	// KindValidation errors require the caller to correct the input
	KindValidation
	// KindConflict errors depend on current state: wait, or give up
	KindConflict
	// KindAuthorization errors are never retryable by the same caller
	KindAuthorization
	// KindResource errors require a balance top-up
	KindResource
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindResource:
		return "resource"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified engine error. Instances are package-level sentinels
// and are compared with errors.Is
type Error struct {
	Code    string
	Message string
	Kind    ErrorKind
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code string, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Validation errors
var (
	ErrInvalidBurnAmount = newError(
		KindValidation,
		"InvalidBurnAmount",
		fmt.Sprintf("burn amount must be between %d and %d", MinAccessCost, MaxAccessCost),
	)
	ErrInvalidAccessCost = newError(
		KindValidation,
		"InvalidAccessCost",
		fmt.Sprintf("access cost must be between %d and %d", MinAccessCost, MaxAccessCost),
	)
	ErrInvalidFeeMode = newError(
		KindValidation,
		"InvalidFeeMode",
		"fee mode must be 0 (user pays) or 1 (sponsor pays)",
	)
	ErrInvalidProposalType = newError(
		KindValidation,
		"InvalidProposalType",
		"invalid proposal type",
	)
	ErrDescriptionTooLong = newError(
		KindValidation,
		"DescriptionTooLong",
		fmt.Sprintf("description exceeds %d bytes", MaxDescriptionLength),
	)
	ErrReasonTooLong = newError(
		KindValidation,
		"ReasonTooLong",
		fmt.Sprintf("reason exceeds %d bytes", MaxReasonLength),
	)
	ErrInvalidUnlockPercentage = newError(
		KindValidation,
		"InvalidUnlockPercentage",
		fmt.Sprintf(
			"unlock percentage must be between %d and %d",
			EmergencyMinPercentage,
			EmergencyMaxPercentage,
		),
	)
	ErrTooManyRecipients = newError(
		KindValidation,
		"TooManyRecipients",
		fmt.Sprintf("too many recipients in a single distribution (max %d)", MaxPrizeRecipients),
	)
	ErrNoRecipients = newError(
		KindValidation,
		"NoRecipients",
		"distribution has no recipients",
	)
	ErrAmountOverflow = newError(
		KindValidation,
		"AmountOverflow",
		"distribution total overflows",
	)
	ErrInvalidIdentity = newError(
		KindValidation,
		"InvalidIdentity",
		"identity must not be empty",
	)
)

// State conflict errors
var (
	ErrNotInitialized = newError(
		KindConflict,
		"NotInitialized",
		"governance state has not been initialized",
	)
	ErrAlreadyInitialized = newError(
		KindConflict,
		"AlreadyInitialized",
		"governance state is already initialized",
	)
	ErrAccessStillActive = newError(
		KindConflict,
		"AccessStillActive",
		"access still active, cannot burn again yet",
	)
	ErrWrongFeeMode = newError(
		KindConflict,
		"WrongFeeMode",
		"sponsored burns are disabled by the current fee mode",
	)
	ErrNoActiveAccess = newError(
		KindConflict,
		"NoActiveAccess",
		"no active access pass",
	)
	ErrVotingClosed = newError(
		KindConflict,
		"VotingClosed",
		"voting period has closed",
	)
	ErrVotingStillOpen = newError(
		KindConflict,
		"VotingStillOpen",
		"voting period is still open",
	)
	ErrProposalAlreadyExecuted = newError(
		KindConflict,
		"ProposalAlreadyExecuted",
		"proposal already executed",
	)
	ErrProposalCancelled = newError(
		KindConflict,
		"ProposalCancelled",
		"proposal was cancelled",
	)
	ErrAlreadyVoted = newError(
		KindConflict,
		"AlreadyVoted",
		"user already voted on this proposal",
	)
	ErrQuorumNotMet = newError(
		KindConflict,
		"QuorumNotMet",
		fmt.Sprintf("quorum not met (minimum %d voters required)", QuorumMinVoters),
	)
	ErrInsufficientYesVotes = newError(
		KindConflict,
		"InsufficientYesVotes",
		fmt.Sprintf("insufficient yes votes (minimum %d%% required)", QuorumMinYesPercent),
	)
	ErrExecutionDeadlinePassed = newError(
		KindConflict,
		"ExecutionDeadlinePassed",
		"execution deadline has passed",
	)
	ErrProposalNotApproved = newError(
		KindConflict,
		"ProposalNotApproved",
		"proposal has not been executed or does not match this action",
	)
	ErrProposalAlreadyUsed = newError(
		KindConflict,
		"ProposalAlreadyUsed",
		"proposal already authorized another distribution",
	)
	ErrTimeLockNotExpired = newError(
		KindConflict,
		"TimeLockNotExpired",
		"emergency time lock has not expired yet",
	)
	ErrCooldownActive = newError(
		KindConflict,
		"CooldownActive",
		"emergency cooldown period is still active",
	)
	ErrSignaturePeriodClosed = newError(
		KindConflict,
		"SignaturePeriodClosed",
		"signature period has closed",
	)
	ErrUnlockAlreadyExecuted = newError(
		KindConflict,
		"UnlockAlreadyExecuted",
		"emergency unlock already executed",
	)
	ErrUnlockCancelled = newError(
		KindConflict,
		"UnlockCancelled",
		"emergency unlock was cancelled",
	)
	ErrAlreadySigned = newError(
		KindConflict,
		"AlreadySigned",
		"already signed this emergency unlock",
	)
	ErrInsufficientSignatures = newError(
		KindConflict,
		"InsufficientSignatures",
		fmt.Sprintf("insufficient signatures for emergency unlock (%d required)", EmergencyMinSigners),
	)
	ErrDistributionAlreadyExecuted = newError(
		KindConflict,
		"DistributionAlreadyExecuted",
		"prize distribution already executed",
	)
	ErrDistributionCancelled = newError(
		KindConflict,
		"DistributionCancelled",
		"prize distribution was cancelled",
	)
	ErrProposalAlreadyCancelled = newError(
		KindConflict,
		"ProposalAlreadyCancelled",
		"proposal already cancelled",
	)
	ErrUnlockAlreadyCancelled = newError(
		KindConflict,
		"UnlockAlreadyCancelled",
		"emergency unlock already cancelled",
	)
	ErrDistributionAlreadyCancelled = newError(
		KindConflict,
		"DistributionAlreadyCancelled",
		"prize distribution already cancelled",
	)
)

// Authorization errors
var (
	ErrUnauthorized = newError(
		KindAuthorization,
		"Unauthorized",
		"caller is not authorized for this action",
	)
)

// Resource errors
var (
	ErrInsufficientBalance = newError(
		KindResource,
		"InsufficientBalance",
		"insufficient token balance",
	)
	ErrInsufficientVaultBalance = newError(
		KindResource,
		"InsufficientVaultBalance",
		"insufficient balance in vault",
	)
	ErrInsufficientFunds = newError(
		KindResource,
		"InsufficientFunds",
		"insufficient funds for transfer",
	)
)

// Lookup errors
var (
	ErrProposalNotFound = newError(
		KindNotFound,
		"ProposalNotFound",
		"proposal not found",
	)
	ErrUnlockRequestNotFound = newError(
		KindNotFound,
		"UnlockRequestNotFound",
		"emergency unlock request not found",
	)
	ErrDistributionNotFound = newError(
		KindNotFound,
		"DistributionNotFound",
		"prize distribution not found",
	)
	ErrAccessPassNotFound = newError(
		KindNotFound,
		"AccessPassNotFound",
		"access pass not found",
	)
)

// KindOf returns the classification of err, looking through wrapping.
// Unclassified errors are internal
func KindOf(err error) ErrorKind {
	var govErr *Error
	if errors.As(err, &govErr) {
		return govErr.Kind
	}
	return KindInternal
}

// CodeOf returns the stable error code for err, or "Internal"
func CodeOf(err error) string {
	var govErr *Error
	if errors.As(err, &govErr) {
		return govErr.Code
	}
	return "Internal"
}
