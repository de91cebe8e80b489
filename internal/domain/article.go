// Package domain – article aggregate rules.
//
// These methods derive behavior from article state without touching storage.
// The service layer calls them before every mutation; the storage layer backs
// the same rules with constraints where concurrency could race them.
package domain

import "time"

// ArticleUpdate carries the mutable fields of an article update request.
// Nil pointers mean "leave unchanged".
type ArticleUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Tags     []string
	Summary  *string
	TagsSet  bool
}

// IsPublishable reports whether the article can be surfaced as published:
// non-empty title, content, and category, and an approved review state.
func (a *Article) IsPublishable() bool {
	if a.Title == "" || a.Content == "" || a.Category == "" {
		return false
	}
	return a.Status == StatusPublished || a.ApprovalStatus == ApprovalApproved
}

// CanEdit reports whether userID may modify the article. The author can
// always edit; anyone else only while the article is still a draft.
func (a *Article) CanEdit(userID string) bool {
	return userID == a.AuthorID || a.Status == StatusDraft
}

// CanApprove reports whether userID may take an approval decision on the
// article. Self-approval is forbidden, and the article must be waiting for
// review.
func (a *Article) CanApprove(userID string) bool {
	return userID != a.AuthorID && a.ApprovalStatus == ApprovalPending
}

// ShouldIncrementVersion reports whether applying upd bumps the article
// version. Only title, content, and category changes are versioned.
func (a *Article) ShouldIncrementVersion(upd ArticleUpdate) bool {
	return upd.Title != nil || upd.Content != nil || upd.Category != nil
}

// IsExpired reports whether the article has an expiry set in the past.
func (a *Article) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}
