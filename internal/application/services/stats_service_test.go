package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/blog-platform/internal/application/services"
	"github.com/avatarctic/blog-platform/internal/core/domain/stats"
	"github.com/avatarctic/blog-platform/internal/mocks"
)

func newStats(store *mocks.CacheStore) (*impl.StatsService, *mocks.PopularityServiceMock) {
	pop := &mocks.PopularityServiceMock{}
	return impl.NewStatsService(store, pop, nil), pop
}

func TestGetStats_InitializesMissingRecord(t *testing.T) {
	store := mocks.NewCacheStore()
	svc, _ := newStats(store)

	st := svc.GetStats(context.Background(), "hello")
	require.Equal(t, "hello", st.Slug)
	require.Zero(t, st.Views)
	require.Empty(t, st.LikesByUser)
	require.True(t, store.Has(impl.PostStatsKey("hello")), "empty stats should be persisted")

	// A second read finds the persisted record and does not write again.
	store.ResetOps()
	_ = svc.GetStats(context.Background(), "hello")
	require.Equal(t, 0, store.OpCount("hincrby"))
}

func TestGetStats_StoreDownReturnsZero(t *testing.T) {
	store := mocks.NewCacheStore()
	store.SetDown(true)
	svc, _ := newStats(store)

	st := svc.GetStats(context.Background(), "hello")
	require.Equal(t, stats.New("hello"), st)
}

func TestIncrementViews_UpdatesStatsAndPopularity(t *testing.T) {
	store := mocks.NewCacheStore()
	store.SeedHash(impl.PostStatsKey("post"), map[string]int64{"views": 5, "like:u1": 2})
	svc, pop := newStats(store)

	st := svc.IncrementViews(context.Background(), "post")
	require.EqualValues(t, 6, st.Views)
	require.EqualValues(t, 2, st.LikesByUser["u1"])
	require.EqualValues(t, 6, pop.Updated["post"])

	again := svc.GetStats(context.Background(), "post")
	require.EqualValues(t, 6, again.Views)
}

func TestIncrementViews_ConcurrentCallsDoNotLoseUpdates(t *testing.T) {
	store := mocks.NewCacheStore()
	svc, _ := newStats(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.IncrementViews(context.Background(), "busy")
		}()
	}
	wg.Wait()

	require.EqualValues(t, 50, svc.GetStats(context.Background(), "busy").Views)
}

func TestIncrementViews_StoreDownSkipsRanking(t *testing.T) {
	store := mocks.NewCacheStore()
	store.SetDown(true)
	svc, pop := newStats(store)

	st := svc.IncrementViews(context.Background(), "post")
	require.EqualValues(t, 1, st.Views)
	require.Empty(t, pop.Updated)
}

func TestIncrementLikes_AggregatesAcrossVisitors(t *testing.T) {
	store := mocks.NewCacheStore()
	store.SeedHash(impl.PostStatsKey("post"), map[string]int64{"views": 1, "like:u1": 2, "like:u2": 3})
	svc, _ := newStats(store)

	res, err := svc.IncrementLikes(context.Background(), "post", "u1")
	require.NoError(t, err)
	require.Equal(t, stats.LikeResult{TotalLikes: 6, LikesByUser: 3}, res)
	require.EqualValues(t, 6, svc.GetTotalLikes(context.Background(), "post"))
}

func TestIncrementLikes_RequiresVisitor(t *testing.T) {
	store := mocks.NewCacheStore()
	svc, _ := newStats(store)

	_, err := svc.IncrementLikes(context.Background(), "post", "")
	require.ErrorIs(t, err, stats.ErrVisitorRequired)
	require.Empty(t, store.Ops())
}

func TestIncrementLikes_StoreDownIsBestEffort(t *testing.T) {
	store := mocks.NewCacheStore()
	store.SetDown(true)
	svc, _ := newStats(store)

	res, err := svc.IncrementLikes(context.Background(), "post", "u1")
	require.NoError(t, err)
	require.Equal(t, stats.LikeResult{TotalLikes: 1, LikesByUser: 1}, res)
}

func TestGetLikesByUser(t *testing.T) {
	store := mocks.NewCacheStore()
	store.SeedHash(impl.PostStatsKey("post"), map[string]int64{"like:u1": 4})
	svc, _ := newStats(store)

	require.EqualValues(t, 4, svc.GetLikesByUser(context.Background(), "post", "u1"))
	require.EqualValues(t, 0, svc.GetLikesByUser(context.Background(), "post", "u2"))

	store.ResetOps()
	require.EqualValues(t, 0, svc.GetLikesByUser(context.Background(), "post", ""))
	require.Empty(t, store.Ops(), "anonymous lookups must not touch the store")
}
