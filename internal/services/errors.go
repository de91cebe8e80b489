// Package services defines the business logic for articles, comments,
// ratings, and the inventory classification batch. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// Approval rule violations (illegal transition, self-approval, permission
// denied) are domain-level sentinels defined next to the state machine in
// the domain package; services propagate them unchanged. Translation of any
// of these errors into HTTP status codes is performed at the handler layer.
package services

import "errors"

// Validation errors.
var (
	// ErrInvalidTitle is returned when a title's trimmed length is outside
	// the allowed [3,200] range.
	ErrInvalidTitle = errors.New("title must be between 3 and 200 characters")

	// ErrInvalidContent is returned when content is shorter than 10 trimmed
	// characters.
	ErrInvalidContent = errors.New("content must be at least 10 characters")

	// ErrInvalidCategory is returned when a category is missing.
	ErrInvalidCategory = errors.New("category is required")

	// ErrInvalidScore is returned when a rating score (or a category
	// sub-score) is outside the 1-5 range.
	ErrInvalidScore = errors.New("score must be between 1 and 5")

	// ErrEmptyComment is returned when a comment has no content after
	// trimming.
	ErrEmptyComment = errors.New("comment is empty")

	// ErrInvalidReaction is returned when a reaction type is not recognized.
	ErrInvalidReaction = errors.New("unknown reaction type")

	// ErrInvalidModeration is returned when a moderation action is not one
	// of highlight, resolve, hide.
	ErrInvalidModeration = errors.New("unknown moderation action")

	// ErrInvalidPeriod is returned when a classification period is not a
	// YYYY-MM month.
	ErrInvalidPeriod = errors.New("period must be formatted as YYYY-MM")

	// ErrInvalidMovement is returned when a stock movement carries a
	// non-positive quantity or a negative unit cost.
	ErrInvalidMovement = errors.New("movement quantity must be positive and unit cost non-negative")
)

// Not-found and conflict errors.
var (
	// ErrArticleNotFound indicates the requested article does not exist
	// within the caller's tenant.
	ErrArticleNotFound = errors.New("article not found")

	// ErrCommentNotFound indicates the requested comment does not exist
	// within the caller's tenant (or belongs to a different article).
	ErrCommentNotFound = errors.New("comment not found")

	// ErrMaxDepthExceeded is returned when a reply would nest deeper than
	// the thread depth cap.
	ErrMaxDepthExceeded = errors.New("comment thread depth limit reached")

	// ErrDuplicateRating is returned when a user attempts to rate an
	// article they have already rated.
	ErrDuplicateRating = errors.New("rating already exists")
)
