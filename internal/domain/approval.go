// Package domain – approval state machine.
//
// ExecuteApproval is a pure function of (article state, action, actor): it
// performs no I/O and mutates nothing. On success it returns the new states
// together with the history entry to append; persisting both atomically is
// the caller's job, guarded by a compare-and-swap on the article's previous
// approval status so that two concurrent decisions cannot both win.
package domain

import (
	"errors"
	"time"
)

// ApprovalAction is a command applied to an article's approval lifecycle.
type ApprovalAction string

// Approval actions.
const (
	ActionSubmit         ApprovalAction = "submit"
	ActionApprove        ApprovalAction = "approve"
	ActionReject         ApprovalAction = "reject"
	ActionRequestChanges ApprovalAction = "request_changes"
	ActionWithdraw       ApprovalAction = "withdraw"
)

// Approval rule violations. These are domain-level sentinels; the service
// layer returns them unchanged and handlers map them to HTTP results.
var (
	// ErrIllegalTransition means the action is not valid from the article's
	// current approval status.
	ErrIllegalTransition = errors.New("approval action not valid from current state")

	// ErrSelfApproval means the acting reviewer is the article's author.
	ErrSelfApproval = errors.New("authors cannot approve their own article")

	// ErrPermissionDenied means the actor may not perform the action on this
	// article (edit or approval permission missing).
	ErrPermissionDenied = errors.New("permission denied")
)

// ApprovalPolicy tunes the state machine. The zero value is the default
// single-approver workflow.
type ApprovalPolicy struct {
	// RequiredApprovers is the number of distinct reviewers who must approve
	// before the article transitions to approved. Values below 2 mean a
	// single approval suffices.
	RequiredApprovers int
}

// Transition is the outcome of a successful approval action: the states to
// store on the article and the history entry to append. Published reports
// whether the article became published by this transition (the caller stamps
// PublishedAt).
type Transition struct {
	ApprovalStatus ApprovalStatus
	ArticleStatus  ArticleStatus
	Published      bool
	Entry          ApprovalEntry
}

// ExecuteApproval validates action against the article's current state and
// actor permissions and computes the resulting transition.
//
// Rules:
//   - submit: from not_submitted, changes_requested, or rejected, by someone
//     allowed to edit; moves to pending_approval / pending_review.
//   - approve: only from pending_approval, never by the author. With a
//     multi-approver policy the article stays pending until priorApprovals+1
//     reaches the threshold; otherwise it becomes approved / published.
//   - reject: only from pending_approval, never by the author; becomes
//     rejected / rejected.
//   - request_changes: only from pending_approval, never by the author;
//     returns to changes_requested / draft so the author can resubmit.
//   - withdraw: only from pending_approval, by someone allowed to edit;
//     reverts to not_submitted / draft.
//
// priorApprovals is the number of distinct reviewers who already approved;
// it only matters when policy.RequiredApprovers > 1.
func ExecuteApproval(a *Article, action ApprovalAction, actorID, comment string, priorApprovals int, policy ApprovalPolicy, now time.Time) (*Transition, error) {
	var next ApprovalStatus
	var status ArticleStatus
	published := false

	switch action {
	case ActionSubmit:
		switch a.ApprovalStatus {
		case ApprovalNotSubmitted, ApprovalChangesRequested, ApprovalRejected:
		default:
			return nil, ErrIllegalTransition
		}
		if !a.CanEdit(actorID) {
			return nil, ErrPermissionDenied
		}
		next, status = ApprovalPending, StatusPendingReview

	case ActionApprove:
		if a.ApprovalStatus != ApprovalPending {
			return nil, ErrIllegalTransition
		}
		if actorID == a.AuthorID {
			return nil, ErrSelfApproval
		}
		if policy.RequiredApprovers > 1 && priorApprovals+1 < policy.RequiredApprovers {
			// Not enough approvals yet: record the decision, stay pending.
			next, status = ApprovalPending, a.Status
		} else {
			next, status, published = ApprovalApproved, StatusPublished, true
		}

	case ActionReject:
		if a.ApprovalStatus != ApprovalPending {
			return nil, ErrIllegalTransition
		}
		if actorID == a.AuthorID {
			return nil, ErrSelfApproval
		}
		next, status = ApprovalRejected, StatusRejected

	case ActionRequestChanges:
		if a.ApprovalStatus != ApprovalPending {
			return nil, ErrIllegalTransition
		}
		if actorID == a.AuthorID {
			return nil, ErrSelfApproval
		}
		next, status = ApprovalChangesRequested, StatusDraft

	case ActionWithdraw:
		if a.ApprovalStatus != ApprovalPending {
			return nil, ErrIllegalTransition
		}
		if !a.CanEdit(actorID) {
			return nil, ErrPermissionDenied
		}
		next, status = ApprovalNotSubmitted, StatusDraft

	default:
		return nil, ErrIllegalTransition
	}

	return &Transition{
		ApprovalStatus: next,
		ArticleStatus:  status,
		Published:      published,
		Entry: ApprovalEntry{
			TenantID:       a.TenantID,
			ArticleID:      a.ID,
			UserID:         actorID,
			Action:         string(action),
			Comment:        comment,
			PreviousStatus: a.ApprovalStatus,
			NewStatus:      next,
			CreatedAt:      now,
		},
	}, nil
}
