package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"filmogram-api/models"
	"filmogram-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir     *repositories.MemoryDirectory
	ledger  *LikeLedger
	graph   *FriendshipGraph
	ranking *PopularityRanking
	catalog *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := repositories.NewMemoryDirectory()
	ledger := NewLikeLedger(dir, repositories.NewMemoryLikeStore(), logger)
	return &testEnv{
		dir:     dir,
		ledger:  ledger,
		graph:   NewFriendshipGraph(dir, repositories.NewMemoryFriendshipStore(), logger),
		ranking: NewPopularityRanking(dir, ledger, logger),
		catalog: NewCatalogService(dir, ledger, logger),
	}
}

func (e *testEnv) user(t *testing.T, login string) int64 {
	t.Helper()
	u := models.User{Email: login + "@example.com", Login: login, Name: login, Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, e.catalog.CreateUser(context.Background(), &u))
	return u.ID
}

func (e *testEnv) film(t *testing.T, name string) int64 {
	t.Helper()
	f := models.Film{Name: name, Description: name, ReleaseDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), Duration: 100}
	require.NoError(t, e.catalog.CreateFilm(context.Background(), &f))
	return f.ID
}

func (e *testEnv) count(t *testing.T, filmID int64) int {
	t.Helper()
	n, err := e.ledger.CountLikes(context.Background(), filmID)
	require.NoError(t, err)
	return n
}

// =============================================================================
// Like ledger
// =============================================================================

func TestAddLike_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.film(t, "Solaris")
	u := env.user(t, "anna")

	n, err := env.ledger.AddLike(ctx, f, u)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.ledger.AddLike(ctx, f, u)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, env.count(t, f))
}

func TestLikeCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.film(t, "Stalker")
	u1 := env.user(t, "u1")
	u2 := env.user(t, "u2")

	_, err := env.ledger.AddLike(ctx, f, u1)
	require.NoError(t, err)
	n, err := env.ledger.AddLike(ctx, f, u2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, env.count(t, f))

	removed, n, err := env.ledger.RemoveLike(ctx, f, u1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, env.count(t, f))

	likers, err := env.ledger.LikedBy(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []int64{u2}, likers)
}

func TestRemoveLike_NeverLikedIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.film(t, "Mirror")
	u1 := env.user(t, "u1")
	u2 := env.user(t, "u2")
	_, err := env.ledger.AddLike(ctx, f, u1)
	require.NoError(t, err)

	removed, n, err := env.ledger.RemoveLike(ctx, f, u2)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, env.count(t, f))

	// unknown user: nothing can be recorded for it, so nothing is removed
	removed, n, err = env.ledger.RemoveLike(ctx, f, 999)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, n)
}

func TestLikeLedger_UnknownIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.film(t, "Nostalghia")
	u := env.user(t, "u")

	_, err := env.ledger.AddLike(ctx, 404, u)
	assert.True(t, models.IsNotFound(err))

	_, err = env.ledger.AddLike(ctx, f, 404)
	assert.True(t, models.IsNotFound(err))

	_, _, err = env.ledger.RemoveLike(ctx, 404, u)
	assert.True(t, models.IsNotFound(err))

	_, err = env.ledger.LikedBy(ctx, 404)
	assert.True(t, models.IsNotFound(err))

	n, err := env.ledger.CountLikes(ctx, 404)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddLike_ConcurrentSameUserCountsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.film(t, "Ivan's Childhood")
	users := make([]int64, 20)
	for i := range users {
		users[i] = env.user(t, "u"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for _, u := range users {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(u int64) {
				defer wg.Done()
				_, err := env.ledger.AddLike(ctx, f, u)
				assert.NoError(t, err)
			}(u)
		}
	}
	wg.Wait()

	assert.Equal(t, len(users), env.count(t, f))
	likers, err := env.ledger.LikedBy(ctx, f)
	require.NoError(t, err)
	assert.Len(t, likers, len(users))
}

// =============================================================================
// Friendship graph
// =============================================================================

func TestFriendshipHandshake(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a")
	b := env.user(t, "b")

	status, err := env.graph.RequestFriend(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestRequested, status.Outcome)
	assert.Equal(t, models.FriendshipStatePending, status.State)

	friends, err := env.graph.FriendsOf(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, friends)
	friends, err = env.graph.FriendsOf(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, friends)

	status, err = env.graph.RequestFriend(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestConfirmed, status.Outcome)
	assert.Equal(t, models.FriendshipStateMutual, status.State)

	friends, err = env.graph.FriendsOf(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, friends)
	friends, err = env.graph.FriendsOf(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, friends)

	status, err = env.graph.RequestFriend(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAlreadyRequested, status.Outcome)
	assert.Equal(t, models.FriendshipStateMutual, status.State)
}

func TestRequestFriend_RepeatedPendingIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a")
	b := env.user(t, "b")

	_, err := env.graph.RequestFriend(ctx, a, b)
	require.NoError(t, err)
	status, err := env.graph.RequestFriend(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, models.FriendRequestAlreadyRequested, status.Outcome)
	assert.Equal(t, models.FriendshipStatePending, status.State)

	f, err := env.graph.Status(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, a, f.RequestedBy)
}

func TestAsymmetricVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a")
	b := env.user(t, "b")
	x := env.user(t, "x")

	_, err := env.graph.RequestFriend(ctx, a, b)
	require.NoError(t, err)
	_, err = env.graph.RequestFriend(ctx, x, a)
	require.NoError(t, err)
	_, err = env.graph.RequestFriend(ctx, a, x) // confirms x's request
	require.NoError(t, err)

	ofA, err := env.graph.FriendsOf(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []int64{b, x}, ofA)

	ofB, err := env.graph.FriendsOf(ctx, b)
	require.NoError(t, err)
	assert.NotContains(t, ofB, a)

	common, err := env.graph.CommonFriends(ctx, b, x)
	require.NoError(t, err)
	assert.Empty(t, common)
}

func TestCommonFriends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a")
	b := env.user(t, "b")
	x := env.user(t, "x")
	y := env.user(t, "y")
	z := env.user(t, "z")

	for _, pair := range [][2]int64{{a, x}, {a, y}, {b, y}, {b, z}} {
		_, err := env.graph.RequestFriend(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	common, err := env.graph.CommonFriends(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []int64{y}, common)

	reversed, err := env.graph.CommonFriends(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, common, reversed)

	users, err := env.graph.CommonFriendUsers(ctx, a, b)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "y", users[0].Login)
}

func TestRemoveFriend(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(env *testEnv, a, b int64)
		remover   string // "a" or "b"
		wantState models.FriendshipState
	}{
		{
			name:      "withdraw own pending request",
			setup:     func(env *testEnv, a, b int64) { env.graph.RequestFriend(context.Background(), a, b) },
			remover:   "a",
			wantState: models.FriendshipStateNone,
		},
		{
			name:      "cannot withdraw someone else's request",
			setup:     func(env *testEnv, a, b int64) { env.graph.RequestFriend(context.Background(), a, b) },
			remover:   "b",
			wantState: models.FriendshipStatePending,
		},
		{
			name: "revoke mutual friendship",
			setup: func(env *testEnv, a, b int64) {
				env.graph.RequestFriend(context.Background(), a, b)
				env.graph.RequestFriend(context.Background(), b, a)
			},
			remover:   "b",
			wantState: models.FriendshipStateNone,
		},
		{
			name:      "no relationship",
			setup:     func(env *testEnv, a, b int64) {},
			remover:   "a",
			wantState: models.FriendshipStateNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			a := env.user(t, "a")
			b := env.user(t, "b")
			tt.setup(env, a, b)

			from, to := a, b
			if tt.remover == "b" {
				from, to = b, a
			}
			require.NoError(t, env.graph.RemoveFriend(ctx, from, to))

			f, err := env.graph.Status(ctx, a, b)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, f.State)
		})
	}
}

func TestRemoveFriend_MutualHidesBothSides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a")
	b := env.user(t, "b")
	_, _ = env.graph.RequestFriend(ctx, a, b)
	_, _ = env.graph.RequestFriend(ctx, b, a)

	require.NoError(t, env.graph.RemoveFriend(ctx, a, b))

	ofA, err := env.graph.FriendsOf(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, ofA)
	ofB, err := env.graph.FriendsOf(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, ofB)
}

func TestFriendship_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "a")

	_, err := env.graph.RequestFriend(ctx, a, 404)
	assert.True(t, models.IsNotFound(err))
	_, err = env.graph.RequestFriend(ctx, 404, a)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(env.graph.RemoveFriend(ctx, a, 404)))
	_, err = env.graph.FriendsOf(ctx, 404)
	assert.True(t, models.IsNotFound(err))
	_, err = env.graph.CommonFriends(ctx, a, 404)
	assert.True(t, models.IsNotFound(err))

	_, err = env.graph.RequestFriend(ctx, a, a)
	assert.True(t, models.IsInvalidArgument(err))
}

func TestRequestFriend_ConcurrentCrossRequestsBecomeMutual(t *testing.T) {
	for i := 0; i < 50; i++ {
		env := newTestEnv(t)
		ctx := context.Background()
		a := env.user(t, "a")
		b := env.user(t, "b")

		var wg sync.WaitGroup
		outcomes := make([]models.FriendRequestOutcome, 2)
		for j, pair := range [][2]int64{{a, b}, {b, a}} {
			wg.Add(1)
			go func(j int, from, to int64) {
				defer wg.Done()
				status, err := env.graph.RequestFriend(ctx, from, to)
				assert.NoError(t, err)
				outcomes[j] = status.Outcome
			}(j, pair[0], pair[1])
		}
		wg.Wait()

		f, err := env.graph.Status(ctx, a, b)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipStateMutual, f.State)
		assert.ElementsMatch(t, []models.FriendRequestOutcome{models.FriendRequestRequested, models.FriendRequestConfirmed}, outcomes)
	}
}

// =============================================================================
// Popularity ranking
// =============================================================================

func seedRanking(t *testing.T, env *testEnv, likes []int) []int64 {
	t.Helper()
	ctx := context.Background()
	maxLikes := 0
	for _, n := range likes {
		maxLikes = max(maxLikes, n)
	}
	users := make([]int64, maxLikes)
	for i := range users {
		users[i] = env.user(t, "fan"+string(rune('a'+i)))
	}

	films := make([]int64, len(likes))
	for i, n := range likes {
		films[i] = env.film(t, "film"+string(rune('A'+i)))
		for _, u := range users[:n] {
			_, err := env.ledger.AddLike(ctx, films[i], u)
			require.NoError(t, err)
		}
	}
	return films
}

func TestTopPopular_OrderAndTieBreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	films := seedRanking(t, env, []int{5, 2, 5, 0})

	top, err := env.ranking.TopPopular(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{films[0], films[2], films[1]}, top)

	again, err := env.ranking.TopPopular(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, top, again)

	all, err := env.ranking.AllRankedByPopularity(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{films[0], films[2], films[1], films[3]}, all)
}

func TestTopPopular_DefaultAndInvalidCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedRanking(t, env, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})

	top, err := env.ranking.TopPopular(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, DefaultPopularCount)

	films, err := env.ranking.TopPopularFilms(ctx, 2)
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, 12, films[0].LikesCount)
	assert.Equal(t, 11, films[1].LikesCount)

	_, err = env.ranking.TopPopular(ctx, -1)
	assert.True(t, models.IsInvalidArgument(err))
}

func TestTopPopular_CountLargerThanCatalog(t *testing.T) {
	env := newTestEnv(t)
	films := seedRanking(t, env, []int{0, 1})

	top, err := env.ranking.TopPopular(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{films[1], films[0]}, top)
}

func TestRanking_ReturnsIndependentCopies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedRanking(t, env, []int{1, 2})

	first, err := env.ranking.AllRankedFilms(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := env.ranking.AllRankedFilms(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[0].Name)
}

// gatedDir holds the first ListFilms call until release is closed.
type gatedDir struct {
	*repositories.MemoryDirectory
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedDir(dir *repositories.MemoryDirectory) *gatedDir {
	return &gatedDir{MemoryDirectory: dir, started: make(chan struct{}), release: make(chan struct{})}
}

func (d *gatedDir) ListFilms(ctx context.Context) ([]models.Film, error) {
	first := false
	d.once.Do(func() {
		first = true
		close(d.started)
	})
	if first {
		select {
		case <-d.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return d.MemoryDirectory.ListFilms(ctx)
}

func TestRanking_CancelledCallerDoesNotFailOthers(t *testing.T) {
	env := newTestEnv(t)
	films := seedRanking(t, env, []int{1, 2})
	dir := newGatedDir(env.dir)
	ranking := NewPopularityRanking(dir, env.ledger, nil)

	ctx1, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := make(chan error, 1)
	go func() {
		_, err := ranking.TopPopular(ctx1, 10)
		first <- err
	}()
	<-dir.started

	type result struct {
		ids []int64
		err error
	}
	second := make(chan result, 1)
	go func() {
		ids, err := ranking.TopPopular(context.Background(), 10)
		second <- result{ids, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(dir.release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, []int64{films[1], films[0]}, res.ids)
	case <-time.After(time.Second):
		t.Fatal("ranking did not complete")
	}
}

func TestRanking_IncludesLikeRecordedBeforeCall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	films := seedRanking(t, env, []int{1, 1})
	fan := env.user(t, "latecomer")
	dir := newGatedDir(env.dir)
	ranking := NewPopularityRanking(dir, env.ledger, nil)

	older := make(chan error, 1)
	go func() {
		_, err := ranking.TopPopular(ctx, 10)
		older <- err
	}()
	<-dir.started

	_, err := env.ledger.AddLike(ctx, films[1], fan)
	require.NoError(t, err)

	fresh := make(chan []models.Film, 1)
	go func() {
		got, err := ranking.TopPopularFilms(ctx, 10)
		assert.NoError(t, err)
		fresh <- got
	}()
	select {
	case got := <-fresh:
		require.Len(t, got, 2)
		assert.Equal(t, films[1], got[0].ID)
		assert.Equal(t, 2, got[0].LikesCount)
	case <-time.After(time.Second):
		t.Fatal("ranking joined a computation started before the like")
	}

	close(dir.release)
	assert.NoError(t, <-older)
}

func TestLikeLedger_GenerationAdvancesOnChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u")

	gen := env.ledger.Generation()
	f := env.film(t, "Zerkalo")
	assert.Greater(t, env.ledger.Generation(), gen)

	gen = env.ledger.Generation()
	_, err := env.ledger.AddLike(ctx, f, u)
	require.NoError(t, err)
	assert.Greater(t, env.ledger.Generation(), gen)

	gen = env.ledger.Generation()
	_, err = env.ledger.AddLike(ctx, f, u)
	require.NoError(t, err)
	assert.Equal(t, gen, env.ledger.Generation())

	_, _, err = env.ledger.RemoveLike(ctx, f, u)
	require.NoError(t, err)
	assert.Greater(t, env.ledger.Generation(), gen)
}

func TestSortByPopularity(t *testing.T) {
	films := []models.Film{
		{ID: 4, LikesCount: 0},
		{ID: 3, LikesCount: 5},
		{ID: 2, LikesCount: 2},
		{ID: 1, LikesCount: 5},
	}
	SortByPopularity(films)

	got := filmIDs(films)
	assert.Equal(t, []int64{1, 3, 2, 4}, got)
}

// =============================================================================
// Catalog
// =============================================================================

func TestCatalog_FilmCarriesLikeCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	f := env.film(t, "Andrei Rublev")
	u := env.user(t, "u")
	_, err := env.ledger.AddLike(ctx, f, u)
	require.NoError(t, err)

	film, err := env.catalog.GetFilm(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, film.LikesCount)

	films, err := env.catalog.ListFilms(ctx)
	require.NoError(t, err)
	require.Len(t, films, 1)
	assert.Equal(t, 1, films[0].LikesCount)
}

func TestCatalog_UpdateUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.catalog.UpdateUser(ctx, &models.User{ID: 7, Login: "ghost"})
	assert.True(t, models.IsNotFound(err))

	err = env.catalog.UpdateFilm(ctx, &models.Film{ID: 7, Name: "ghost"})
	assert.True(t, models.IsNotFound(err))

	_, err = env.catalog.GetUser(ctx, 7)
	assert.True(t, models.IsNotFound(err))
}

func TestCatalog_IdentifiersAreSequential(t *testing.T) {
	env := newTestEnv(t)
	first := env.user(t, "first")
	second := env.user(t, "second")
	assert.Equal(t, first+1, second)

	other := newTestEnv(t)
	assert.Equal(t, int64(1), other.user(t, "fresh"))
}
