package stats_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avatarctic/blog-platform/internal/core/domain/stats"
)

func TestFromHash_DecodesCounters(t *testing.T) {
	st, skipped := stats.FromHash("post", map[string]string{
		"views":   "12",
		"like:u1": "2",
		"like:u2": "3",
	})
	require.Empty(t, skipped)
	require.EqualValues(t, 12, st.Views)
	require.Equal(t, map[string]int64{"u1": 2, "u2": 3}, st.LikesByUser)
	require.EqualValues(t, 5, st.TotalLikes())
}

func TestFromHash_SkipsMalformedFields(t *testing.T) {
	st, skipped := stats.FromHash("post", map[string]string{
		"views":   "oops",
		"like:u1": "-1",
		"like:":   "4",
		"other":   "1",
		"like:u2": "1",
	})
	require.ElementsMatch(t, []string{"views", "like:u1", "other"}, skipped)
	require.Zero(t, st.Views)
	require.Equal(t, map[string]int64{"u2": 1}, st.LikesByUser)
}

func TestLikeField(t *testing.T) {
	require.Equal(t, "like:abc", stats.LikeField("abc"))
}
