package stats

import (
	"errors"
	"strconv"
	"strings"
)

// ErrVisitorRequired is returned when a like is recorded without a visitor hash.
var ErrVisitorRequired = errors.New("visitor hash is required to record a like")

const (
	// ViewsField is the hash field holding the view counter.
	ViewsField = "views"
	// likeFieldPrefix prefixes per-visitor like counters inside the stats hash.
	likeFieldPrefix = "like:"
)

// PostStats holds the counters tracked for one article.
type PostStats struct {
	Slug        string           `json:"slug"`
	Views       int64            `json:"views"`
	LikesByUser map[string]int64 `json:"likes_by_user"`
}

// New returns zeroed stats for slug.
func New(slug string) PostStats {
	return PostStats{Slug: slug, LikesByUser: map[string]int64{}}
}

// TotalLikes sums likes across all visitors.
func (s PostStats) TotalLikes() int64 {
	var total int64
	for _, n := range s.LikesByUser {
		total += n
	}
	return total
}

// LikeResult is returned after recording a like.
type LikeResult struct {
	TotalLikes  int64 `json:"total_likes"`
	LikesByUser int64 `json:"likes_by_user"`
}

// LikeField returns the hash field for a visitor's like counter.
func LikeField(userHash string) string {
	return likeFieldPrefix + userHash
}

// FromHash decodes the stats hash layout. Fields that do not parse are returned in skipped.
func FromHash(slug string, fields map[string]string) (s PostStats, skipped []string) {
	s = New(slug)
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			skipped = append(skipped, field)
			continue
		}
		switch {
		case field == ViewsField:
			s.Views = n
		case strings.HasPrefix(field, likeFieldPrefix):
			if user := strings.TrimPrefix(field, likeFieldPrefix); user != "" {
				s.LikesByUser[user] = n
			}
		default:
			skipped = append(skipped, field)
		}
	}
	return s, skipped
}
