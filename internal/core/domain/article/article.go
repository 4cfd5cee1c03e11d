package article

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by the content store when an article does not exist or is soft-deleted.
var ErrNotFound = errors.New("article not found")

// Article is the content-store record the caching layer reads. It is never written by this service.
type Article struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Slug        string     `json:"slug" db:"slug"`
	Title       string     `json:"title" db:"title"`
	Summary     string     `json:"summary" db:"summary"`
	Tags        []string   `json:"tags" db:"-"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

// IsPublic reports whether the article is published and not soft-deleted.
func (a *Article) IsPublic() bool {
	return a.PublishedAt != nil && a.DeletedAt == nil
}

// Candidate is a row returned by the tag-overlap query.
type Candidate struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Tags        []string   `json:"tags"`
}

// PopularPost pairs an article with its all-time view count.
type PopularPost struct {
	Article
	Views int64 `json:"views"`
}

// RelatedPost is one entry of a cached related-articles list.
type RelatedPost struct {
	Slug           string     `json:"slug"`
	Title          string     `json:"title"`
	Summary        string     `json:"summary"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	CommonTagCount int        `json:"common_tag_count"`
	Similarity     float64    `json:"similarity"`
}

// Change describes an article create/update as seen by the content-mutation surface.
type Change struct {
	Slug    string   `json:"slug" validate:"required"`
	OldTags []string `json:"old_tags"`
	NewTags []string `json:"new_tags"`
}

// TagsChanged compares old and new tags as sets.
func (c Change) TagsChanged() bool {
	return !slices.Equal(NormalizeTags(c.OldTags), NormalizeTags(c.NewTags))
}

// Removal describes a soft-delete or unpublish.
type Removal struct {
	Slug string   `json:"slug" validate:"required"`
	Tags []string `json:"tags"`
}

// NormalizeTags trims, drops blanks, deduplicates and sorts tags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// UnionTags returns the normalized union of two tag lists.
func UnionTags(a, b []string) []string {
	all := make([]string, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return NormalizeTags(all)
}
