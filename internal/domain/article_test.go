package domain

import (
	"testing"
	"time"
)

func TestIsPublishable(t *testing.T) {
	a := draftArticle()
	if a.IsPublishable() {
		t.Fatalf("draft with not_submitted approval must not be publishable")
	}

	a.ApprovalStatus = ApprovalApproved
	if !a.IsPublishable() {
		t.Fatalf("approved article with full content should be publishable")
	}

	a.Category = ""
	if a.IsPublishable() {
		t.Fatalf("missing category must block publishing")
	}

	b := draftArticle()
	b.Status = StatusPublished
	if !b.IsPublishable() {
		t.Fatalf("published status alone should satisfy publishability")
	}
}

func TestCanEdit(t *testing.T) {
	a := draftArticle()

	if !a.CanEdit("u1") {
		t.Fatalf("author must be able to edit")
	}
	if !a.CanEdit("u2") {
		t.Fatalf("anyone may edit a draft")
	}

	a.Status = StatusPublished
	if a.CanEdit("u2") {
		t.Fatalf("non-author must not edit a published article")
	}
	if !a.CanEdit("u1") {
		t.Fatalf("author keeps edit rights after publication")
	}
}

func TestCanApprove(t *testing.T) {
	a := draftArticle()
	a.ApprovalStatus = ApprovalPending

	if a.CanApprove("u1") {
		t.Fatalf("author must not approve")
	}
	if !a.CanApprove("u2") {
		t.Fatalf("reviewer should approve a pending article")
	}

	a.ApprovalStatus = ApprovalApproved
	if a.CanApprove("u2") {
		t.Fatalf("nothing to approve once already approved")
	}
}

func TestShouldIncrementVersion(t *testing.T) {
	a := draftArticle()
	title := "New title"
	summary := "s"

	if a.ShouldIncrementVersion(ArticleUpdate{Tags: []string{"go"}, TagsSet: true}) {
		t.Fatalf("tag-only update must not bump the version")
	}
	if a.ShouldIncrementVersion(ArticleUpdate{Summary: &summary}) {
		t.Fatalf("summary-only update must not bump the version")
	}
	if !a.ShouldIncrementVersion(ArticleUpdate{Title: &title}) {
		t.Fatalf("title change must bump the version")
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now().UTC()
	a := draftArticle()

	if a.IsExpired(now) {
		t.Fatalf("no expiry set: not expired")
	}

	past := now.Add(-time.Hour)
	a.ExpiresAt = &past
	if !a.IsExpired(now) {
		t.Fatalf("expiry in the past: expired")
	}

	future := now.Add(time.Hour)
	a.ExpiresAt = &future
	if a.IsExpired(now) {
		t.Fatalf("expiry in the future: not expired")
	}
}
