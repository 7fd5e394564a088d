package repository

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSessionRepository(client, ttl), mini
}

func exerciseRepository(t *testing.T, repo SessionRepository) {
	ctx := context.Background()

	session := &models.Session{ID: "abc"}
	require.NoError(t, repo.Create(ctx, session))
	require.False(t, session.CreatedAt.IsZero())
	require.Error(t, repo.Create(ctx, &models.Session{ID: "abc"}))

	session.SelectGrade(models.GradeFourth)
	session.StoreRubric(models.Rubric{Sections: []models.Section{{Name: "Grammar", Criteria: []models.CriterionLevel{
		{Description: "a", Score: 0}, {Description: "b", Score: 1}, {Description: "c", Score: 2}, {Description: "d", Score: 3},
	}}}})
	session.StorePrompt("golf", "#### Introduction\ngolf")
	require.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, models.GradeFourth, loaded.Grade)
	require.NotNil(t, loaded.Rubric)
	require.Equal(t, 3, loaded.Rubric.MaxScore())
	topic, _, ok := loaded.ActivePrompt()
	require.True(t, ok)
	require.Equal(t, "golf", topic)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, repo.Save(ctx, &models.Session{ID: "missing"}), ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, "abc"))
	require.ErrorIs(t, repo.Delete(ctx, "abc"), ErrSessionNotFound)
}

func TestRedisSessionRepository(t *testing.T) {
	repo, _ := newRedisRepo(t, time.Hour)
	exerciseRepository(t, repo)
}

func TestMemorySessionRepository(t *testing.T) {
	exerciseRepository(t, NewMemorySessionRepository(0))
}

func TestRedisSessionRepositoryExpires(t *testing.T) {
	repo, mini := newRedisRepo(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "ttl"}))
	require.Equal(t, time.Minute, mini.TTL(sessionKey("ttl")))

	mini.FastForward(2 * time.Minute)
	_, err := repo.Get(ctx, "ttl")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepositoryExpiresIdleSessions(t *testing.T) {
	repo := NewMemorySessionRepository(time.Minute).(*memorySessionRepository)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "idle"}))
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "busy"}))

	clock = clock.Add(45 * time.Second)
	busy, err := repo.Get(ctx, "busy")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, &busy))

	clock = clock.Add(30 * time.Second)
	_, err = repo.Get(ctx, "idle")
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = repo.Get(ctx, "busy")
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "fresh"}))
	require.Len(t, repo.sessions, 1)
}
