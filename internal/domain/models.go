// Package domain defines the persistence models and pure business rules for
// the knowledge-base backend: articles with their approval lifecycle,
// threaded comments, ratings, and the inventory ABC classification records.
// These types are mapped with GORM and form the core data layer of the
// application. Every row is scoped to a tenant; the tenant id acts as a
// partition key, not a display filter.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// ArticleStatus is the publication lifecycle state of an article.
type ArticleStatus string

// Publication lifecycle states.
const (
	StatusDraft         ArticleStatus = "draft"
	StatusPendingReview ArticleStatus = "pending_review"
	StatusPublished     ArticleStatus = "published"
	StatusArchived      ArticleStatus = "archived"
	StatusRejected      ArticleStatus = "rejected"
)

// ApprovalStatus is the review state of an article, advanced only by the
// approval state machine (see approval.go).
type ApprovalStatus string

// Approval workflow states.
const (
	ApprovalNotSubmitted     ApprovalStatus = "not_submitted"
	ApprovalPending          ApprovalStatus = "pending_approval"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
)

// Article is the knowledge-base content aggregate: the unit of authorship,
// approval, and versioning.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - TenantID: isolation key; every query must filter on it.
//   - Title / Slug / Content / Summary / Category / Tags: authored content.
//     Summary is derived from Content (rendered, tag-stripped, clipped).
//   - Status / ApprovalStatus: publication and review lifecycle states.
//   - Version: monotonically increasing, starts at 1, bumped only when
//     title, content, or category changes.
//   - AuthorID: creator and exclusive write owner while in draft.
//   - ReviewerID: last user who took an approval action other than the author.
//   - ViewCount / LastViewedAt: read-side analytics; the counter is bumped
//     with an atomic UPDATE, never read-modify-write.
//   - RatingAverage / RatingCount: maintained by the rating service.
//   - DeletedAt: soft deletion marker (rows are retained for tenant audit).
type Article struct {
	ID       string `json:"id"        gorm:"type:char(36);primaryKey"`
	TenantID string `json:"tenant_id" gorm:"type:varchar(64);not null;index:idx_tenant_articles"`

	Title    string   `json:"title"    gorm:"type:varchar(255);not null"`
	Slug     string   `json:"slug"     gorm:"type:varchar(255);not null;index"`
	Content  string   `json:"content"  gorm:"type:text;not null"`
	Summary  string   `json:"summary"  gorm:"type:varchar(255)"`
	Category string   `json:"category" gorm:"type:varchar(128);not null;index"`
	Tags     []string `json:"tags"     gorm:"serializer:json"`

	Status         ArticleStatus  `json:"status"          gorm:"type:varchar(32);not null;default:'draft'"`
	ApprovalStatus ApprovalStatus `json:"approval_status" gorm:"type:varchar(32);not null;default:'not_submitted'"`
	Version        int            `json:"version"         gorm:"not null;default:1"`

	AuthorID   string `json:"author_id"             gorm:"type:varchar(64);not null;index"`
	ReviewerID string `json:"reviewer_id,omitempty" gorm:"type:varchar(64)"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`

	ViewCount     int64      `json:"view_count"     gorm:"not null;default:0"`
	LastViewedAt  *time.Time `json:"last_viewed_at,omitempty"`
	RatingAverage float64    `json:"rating_average" gorm:"not null;default:0"`
	RatingCount   int64      `json:"rating_count"   gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Article.
func (Article) TableName() string { return "articles" }

// ApprovalEntry is one appended record of an approval transition. Entries are
// immutable once written and owned exclusively by their article.
type ApprovalEntry struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	TenantID  string `json:"tenant_id"  gorm:"type:varchar(64);not null;index"`
	ArticleID string `json:"article_id" gorm:"type:char(36);not null;index:idx_article_approvals"`
	UserID    string `json:"user_id"    gorm:"type:varchar(64);not null"`

	Action         string         `json:"action"            gorm:"type:varchar(32);not null"`
	Comment        string         `json:"comment,omitempty" gorm:"type:text"`
	PreviousStatus ApprovalStatus `json:"previous_status"   gorm:"type:varchar(32);not null"`
	NewStatus      ApprovalStatus `json:"new_status"        gorm:"type:varchar(32);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_article_approvals,priority:2"`

	// Article is the owning aggregate. History is cascade-deleted only if the
	// article row is ever physically removed.
	Article Article `json:"-" gorm:"foreignKey:ArticleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ApprovalEntry.
func (ApprovalEntry) TableName() string { return "approval_entries" }

// MaxThreadDepth caps comment nesting. A reply whose parent already sits at
// this depth is rejected.
const MaxThreadDepth = 3

// Comment belongs to exactly one article and may be nested under a parent
// comment up to MaxThreadDepth levels deep.
type Comment struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	TenantID  string `json:"tenant_id"  gorm:"type:varchar(64);not null;index"`
	ArticleID string `json:"article_id" gorm:"type:char(36);not null;index:idx_article_comments"`
	UserID    string `json:"user_id"    gorm:"type:varchar(64);not null"`

	ParentCommentID *string `json:"parent_comment_id,omitempty" gorm:"type:char(36);index"`
	ThreadDepth     int     `json:"thread_depth" gorm:"not null;default:0"`
	Content         string  `json:"content"      gorm:"type:varchar(2048);not null"`

	IsHighlighted bool `json:"is_highlighted" gorm:"not null;default:false"`
	IsResolved    bool `json:"is_resolved"    gorm:"not null;default:false"`
	IsHidden      bool `json:"is_hidden"      gorm:"not null;default:false"`

	Reactions []Reaction `json:"reactions,omitempty" gorm:"foreignKey:CommentID"`

	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_article_comments,priority:2"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Article Article `json:"-" gorm:"foreignKey:ArticleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// Reaction is a single user's reaction to a comment. At most one reaction per
// (comment, user) pair exists; re-reacting replaces the previous row.
type Reaction struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	CommentID string    `json:"comment_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_reaction_comment_user"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_reaction_comment_user"`
	Type      string    `json:"type"       gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at"`

	Comment Comment `json:"-" gorm:"foreignKey:CommentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Reaction.
func (Reaction) TableName() string { return "reactions" }

// RatingCategories are the optional per-dimension sub-scores of a rating.
// A zero value means the dimension was not scored.
type RatingCategories struct {
	Accuracy     int `json:"accuracy,omitempty"`
	Clarity      int `json:"clarity,omitempty"`
	Completeness int `json:"completeness,omitempty"`
	Usefulness   int `json:"usefulness,omitempty"`
}

// Rating is a user's 1-5 score of an article. A user can rate a given article
// only once (enforced by unique index).
type Rating struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	TenantID  string `json:"tenant_id"  gorm:"type:varchar(64);not null;index"`
	ArticleID string `json:"article_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_rating_article_user"`
	UserID    string `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_rating_article_user"`

	Score      int               `json:"score"                gorm:"not null;check:score BETWEEN 1 AND 5"`
	Categories *RatingCategories `json:"categories,omitempty" gorm:"serializer:json"`
	Review     string            `json:"review,omitempty"     gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Article Article `json:"-" gorm:"foreignKey:ArticleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Rating.
func (Rating) TableName() string { return "ratings" }

// StockMovement is a single consumption event for a part at a location. It is
// the raw input of the ABC classification batch.
type StockMovement struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	TenantID   string    `json:"tenant_id"   gorm:"type:varchar(64);not null;index:idx_tenant_movements"`
	PartID     string    `json:"part_id"     gorm:"type:varchar(64);not null;index"`
	LocationID string    `json:"location_id" gorm:"type:varchar(64);not null"`
	Quantity   float64   `json:"quantity"    gorm:"not null"`
	UnitCost   float64   `json:"unit_cost"   gorm:"not null"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index:idx_tenant_movements,priority:2"`
}

// TableName returns the database table name for StockMovement.
func (StockMovement) TableName() string { return "stock_movements" }

// AbcClassification is the stored result of one ABC batch run for a
// (part, location) pair within a period.
type AbcClassification struct {
	ID       string `json:"id"        gorm:"type:char(36);primaryKey"`
	TenantID string `json:"tenant_id" gorm:"type:varchar(64);not null;index:idx_tenant_abc"`
	Period   string `json:"period"    gorm:"type:varchar(32);not null;index:idx_tenant_abc,priority:2"`

	PartID     string `json:"part_id"     gorm:"type:varchar(64);not null"`
	LocationID string `json:"location_id" gorm:"type:varchar(64);not null"`

	TotalValueConsumed   float64 `json:"total_value_consumed"  gorm:"not null"`
	PercentageOfTotal    float64 `json:"percentage_of_total"   gorm:"not null"`
	CumulativePercentage float64 `json:"cumulative_percentage" gorm:"not null"`
	Classification       string  `json:"abc_classification"    gorm:"type:char(1);not null"`
	PredictedDemand      float64 `json:"predicted_demand"      gorm:"not null;default:0"`

	GeneratedAt time.Time `json:"generated_at" gorm:"not null"`
}

// TableName returns the database table name for AbcClassification.
func (AbcClassification) TableName() string { return "abc_classifications" }
