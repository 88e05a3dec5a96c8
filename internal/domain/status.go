package domain

import "strings"

// UnitStatus is the workflow state of a translation unit.
type UnitStatus string

const (
	UnitStatusMissing     UnitStatus = "missing"
	UnitStatusDraft       UnitStatus = "draft"
	UnitStatusPending     UnitStatus = "pending"
	UnitStatusInProgress  UnitStatus = "in_progress"
	UnitStatusNeedsReview UnitStatus = "needs_review"
	UnitStatusApproved    UnitStatus = "approved"
	UnitStatusRejected    UnitStatus = "rejected"
)

// unitTransitions lists operator-driven moves. The automatic
// approved -> needs_review demotion is modelled separately by
// StatusAfterSourceChange.
var unitTransitions = map[UnitStatus][]UnitStatus{
	UnitStatusMissing:     {UnitStatusDraft, UnitStatusRejected},
	UnitStatusDraft:       {UnitStatusPending, UnitStatusRejected},
	UnitStatusPending:     {UnitStatusInProgress, UnitStatusRejected},
	UnitStatusInProgress:  {UnitStatusNeedsReview, UnitStatusRejected},
	UnitStatusNeedsReview: {UnitStatusApproved, UnitStatusRejected},
	UnitStatusApproved:    {UnitStatusNeedsReview},
	UnitStatusRejected:    {UnitStatusDraft, UnitStatusInProgress},
}

// ParseUnitStatus normalises a raw status string. Unknown values report false.
func ParseUnitStatus(raw string) (UnitStatus, bool) {
	status := UnitStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := unitTransitions[status]; ok {
		return status, true
	}
	return "", false
}

// Valid reports whether the status is part of the closed set.
func (s UnitStatus) Valid() bool {
	_, ok := unitTransitions[s]
	return ok
}

func (s UnitStatus) String() string {
	return string(s)
}

// CanTransition reports whether an operator may move a unit from one status to another.
func CanTransition(from, to UnitStatus) bool {
	for _, next := range unitTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given status.
func AllowedTransitions(from UnitStatus) []UnitStatus {
	next := unitTransitions[from]
	out := make([]UnitStatus, len(next))
	copy(out, next)
	return out
}

// StatusAfterSourceChange computes the status a unit takes when its source
// snapshot is written. An unchanged source keeps the current status. A changed
// source demotes any unit carrying a target text to needs_review, while units
// without a target text stay missing.
func StatusAfterSourceChange(current UnitStatus, sourceChanged, hasTarget bool) UnitStatus {
	if !sourceChanged {
		return current
	}
	if !hasTarget {
		return UnitStatusMissing
	}
	return UnitStatusNeedsReview
}

// StatusAfterWrite extends StatusAfterSourceChange with edits to the target
// text. A new text lifts a missing unit to draft and reopens an approved one
// for review; other in-flight statuses are kept.
func StatusAfterWrite(current UnitStatus, sourceChanged, targetChanged, hasTarget bool) UnitStatus {
	status := StatusAfterSourceChange(current, sourceChanged, hasTarget)
	if !targetChanged {
		return status
	}
	switch status {
	case UnitStatusMissing:
		return UnitStatusDraft
	case UnitStatusApproved:
		return UnitStatusNeedsReview
	default:
		return status
	}
}

// InitialUnitStatus is the status assigned to a freshly created unit.
func InitialUnitStatus(hasTarget bool) UnitStatus {
	if hasTarget {
		return UnitStatusDraft
	}
	return UnitStatusMissing
}

// MessageStatus is the lighter workflow used by UI message translations.
type MessageStatus string

const (
	MessageStatusMissing  MessageStatus = "missing"
	MessageStatusDraft    MessageStatus = "draft"
	MessageStatusApproved MessageStatus = "approved"
	MessageStatusRejected MessageStatus = "rejected"
)

// ParseMessageStatus normalises a raw message status string.
func ParseMessageStatus(raw string) (MessageStatus, bool) {
	status := MessageStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case MessageStatusMissing, MessageStatusDraft, MessageStatusApproved, MessageStatusRejected:
		return status, true
	default:
		return "", false
	}
}

// Valid reports whether the status is part of the closed set.
func (s MessageStatus) Valid() bool {
	_, ok := ParseMessageStatus(string(s))
	return ok
}

func (s MessageStatus) String() string {
	return string(s)
}
