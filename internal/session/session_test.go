// ABOUTME: Tests for session login, toggles, edits and the daily reset.
// ABOUTME: Runs against a real SQLite store and an in-memory badger cache.
package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/habito/internal/cache"
	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
	"github.com/harperreed/habito/internal/storage"
	habitosync "github.com/harperreed/habito/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var testToday = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	repo  *storage.DB
	cache *cache.Cache
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "habito.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	c, err := cache.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return &fixture{repo: db, cache: c, now: testToday}
}

func (f *fixture) seed(t *testing.T, name string, difficulty models.Difficulty, history ...string) models.Activity {
	t.Helper()
	ctx := context.Background()
	draft := models.NewActivityDraft(name)
	draft.Difficulty = difficulty
	draft.Frequency = calendar.EveryDay
	a, err := f.repo.InsertActivity(ctx, "u1", draft)
	require.NoError(t, err)
	if len(history) > 0 {
		a.History = history
		require.NoError(t, f.repo.UpdateActivity(ctx, a.ID.String(), models.CompletionPatch(*a)))
	}
	return *a
}

func (f *fixture) login(t *testing.T) *Session {
	t.Helper()
	return f.loginWith(t, f.repo)
}

func (f *fixture) loginWith(t *testing.T, repo storage.Repository) *Session {
	t.Helper()
	s, err := Login(context.Background(), "u1", Options{
		Repo:    repo,
		Resets:  f.cache,
		Tracker: habitosync.NewTracker(f.cache, nil),
		Now:     func() time.Time { return f.now },
	})
	require.NoError(t, err)
	t.Cleanup(s.Flush)
	return s
}

func TestLoginReconcilesAndSeedsXP(t *testing.T) {
	f := newFixture(t)
	// Stale caches from an earlier day: stored as completed with streak 9.
	a := f.seed(t, "Ler", models.DifficultyMedium, "2024-05-13", "2024-05-14")
	done, streak := true, 9
	require.NoError(t, f.repo.UpdateActivity(context.Background(), a.ID.String(),
		models.ActivityPatch{Completed: &done, Streak: &streak}))

	s := f.login(t)
	got, err := s.Get(a.ID.String())
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, 50, s.XP())
	assert.True(t, s.NewDay())
	assert.Equal(t, "2024-05-15", s.LastReset())

	last, err := f.cache.LastReset("u1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-15", last)
}

func TestSecondLoginSameDayIsNotNewDay(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	s := f.login(t)
	assert.False(t, s.NewDay())
}

func TestToggleRoundTrip(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyHard, "2024-05-14")
	s := f.login(t)
	ctx := context.Background()

	tr, err := s.Toggle(ctx, a.ID.String()[:8])
	require.NoError(t, err)
	assert.True(t, tr.Completing)
	assert.True(t, tr.Activity.Completed)
	assert.Equal(t, 2, tr.Activity.Streak)
	assert.Equal(t, 100, tr.XP)
	assert.Equal(t, 100, s.XP())

	s.Flush()
	stored, err := f.repo.GetActivity(ctx, "u1", a.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, []string{"2024-05-14", "2024-05-15"}, stored.History)

	rec, ok := s.Tracker().Status(a.ID.String())
	require.True(t, ok)
	assert.Equal(t, habitosync.StatusSynced, rec.Status)

	tr, err = s.Toggle(ctx, a.ID.String())
	require.NoError(t, err)
	assert.False(t, tr.Completing)
	assert.Equal(t, 1, tr.Activity.Streak)
	assert.Equal(t, 50, s.XP())
}

func TestToggleXPFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyEasy, "2024-05-15")
	s := f.login(t)
	ctx := context.Background()
	require.Equal(t, 10, s.XP())

	// Raising the reward leaves the ledger alone, so undoing costs more than was earned.
	hard := models.DifficultyHard
	_, err := s.Update(ctx, a.ID.String(), Edit{Difficulty: &hard})
	require.NoError(t, err)
	assert.Equal(t, 10, s.XP())

	tr, err := s.Toggle(ctx, a.ID.String())
	require.NoError(t, err)
	assert.False(t, tr.Completing)
	assert.Equal(t, 0, tr.XP)
	assert.Equal(t, 0, s.XP())
}

func TestToggleDate(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyEasy, "2024-05-15")
	s := f.login(t)
	ctx := context.Background()

	tr, err := s.ToggleDate(ctx, a.ID.String(), "2024-05-14")
	require.NoError(t, err)
	assert.True(t, tr.Completing)
	assert.Equal(t, 2, tr.Activity.Streak)
	assert.Equal(t, 20, s.XP())

	_, err = s.ToggleDate(ctx, a.ID.String(), "2024-05-16")
	assert.Error(t, err)
	_, err = s.ToggleDate(ctx, a.ID.String(), "15/05/2024")
	assert.Error(t, err)

	tr, err = s.ToggleDate(ctx, a.ID.String(), "2024-05-15")
	require.NoError(t, err)
	assert.False(t, tr.Activity.Completed)
	assert.Equal(t, 1, tr.Activity.Streak)
	assert.Equal(t, 10, s.XP())
}

func TestFailedWriteKeepsLocalState(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyMedium)
	s := f.login(t)

	// Closing the store makes every remote write fail.
	require.NoError(t, f.repo.Close())

	tr, err := s.Toggle(context.Background(), a.ID.String())
	require.NoError(t, err)
	s.Flush()

	assert.True(t, tr.Activity.Completed)
	got, _ := s.Get(a.ID.String())
	assert.True(t, got.Completed)

	rec, ok := s.Tracker().Status(a.ID.String())
	require.True(t, ok)
	assert.Equal(t, habitosync.StatusFailed, rec.Status)

	journaled, err := s.Tracker().Journaled()
	require.NoError(t, err)
	assert.Len(t, journaled, 1)
}

func TestAddValidatesBeforeInsert(t *testing.T) {
	f := newFixture(t)
	s := f.login(t)
	ctx := context.Background()

	_, err := s.Add(ctx, models.NewActivityDraft("   "))
	assert.ErrorIs(t, err, models.ErrEmptyName)

	draft := models.NewActivityDraft("Ler")
	draft.ReminderTimes = nil
	_, err = s.Add(ctx, draft)
	assert.ErrorIs(t, err, models.ErrNoReminderTimes)

	stored, err := f.repo.FetchActivities(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	created, err := s.Add(ctx, models.NewActivityDraft("Ler"))
	require.NoError(t, err)
	assert.Equal(t, 25, created.XP)
	assert.Len(t, s.Activities(), 1)
}

func TestUpdateRederivesXP(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyEasy)
	s := f.login(t)
	ctx := context.Background()

	hard := models.DifficultyHard
	name := "  Ler mais  "
	got, err := s.Update(ctx, a.ID.String(), Edit{Difficulty: &hard, Name: &name, ReminderTimes: []string{"21:00"}})
	require.NoError(t, err)
	assert.Equal(t, 50, got.XP)
	assert.Equal(t, "Ler mais", got.Name)
	assert.Equal(t, "21:00 - 21:00", got.TimeSlot)

	s.Flush()
	stored, err := f.repo.GetActivity(ctx, "u1", a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 50, stored.XP)
	assert.Equal(t, []string{"21:00"}, stored.ReminderTimes)

	empty := ""
	_, err = s.Update(ctx, a.ID.String(), Edit{Name: &empty})
	assert.ErrorIs(t, err, models.ErrEmptyName)
	_, err = s.Update(ctx, a.ID.String(), Edit{ReminderTimes: []string{}})
	assert.ErrorIs(t, err, models.ErrNoReminderTimes)
}

func TestDeleteIsImmediate(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyMedium, "2024-05-14")
	b := f.seed(t, "Correr", models.DifficultyMedium)
	s := f.login(t)
	xp := s.XP()

	removed, err := s.Delete(context.Background(), a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, a.ID, removed.ID)
	require.Len(t, s.Activities(), 1)
	assert.Equal(t, b.ID, s.Activities()[0].ID)
	assert.Equal(t, xp, s.XP())

	_, err = s.Toggle(context.Background(), a.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	s.Flush()
	_, err = f.repo.GetActivity(context.Background(), "u1", a.ID.String())
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLogoutClearsState(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyMedium, "2024-05-14")
	s := f.login(t)
	s.Logout()

	assert.Empty(t, s.Activities())
	assert.Equal(t, 0, s.XP())
	assert.Equal(t, "", s.LastReset())
	_, err := s.Toggle(context.Background(), a.ID.String())
	assert.ErrorIs(t, err, ErrLoggedOut)
}

func TestDayRolloverReconciles(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyMedium)
	s := f.login(t)

	_, err := s.Toggle(context.Background(), a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Today().Progress.Done)

	f.now = testToday.Add(24 * time.Hour)
	view := s.Today()
	assert.Equal(t, "2024-05-16", view.Date)
	assert.Equal(t, 0, view.Progress.Done)
	got, _ := s.Get(a.ID.String())
	assert.False(t, got.Completed)
	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, "2024-05-16", s.LastReset())
}

func TestReadsAfterMidnightReconcile(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyMedium)
	s := f.login(t)

	_, err := s.Toggle(context.Background(), a.ID.String())
	require.NoError(t, err)

	f.now = testToday.Add(24 * time.Hour)
	list := s.Activities()
	require.Len(t, list, 1)
	assert.False(t, list[0].Completed)
	assert.Equal(t, 1, list[0].Streak)
	assert.Equal(t, []string{"2024-05-15"}, list[0].History)
	assert.Equal(t, "2024-05-16", s.LastReset())

	f.now = testToday.Add(48 * time.Hour)
	got, err := s.Get(a.ID.String())
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, 0, got.Streak)
}

// slowCompleteRepo delays writes that mark an activity completed.
type slowCompleteRepo struct {
	*storage.DB
	delay time.Duration
}

func (r slowCompleteRepo) UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) error {
	if patch.Completed != nil && *patch.Completed {
		time.Sleep(r.delay)
	}
	return r.DB.UpdateActivity(ctx, id, patch)
}

func TestQuickToggleTwiceStoresLatestState(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "Ler", models.DifficultyMedium)
	s := f.loginWith(t, slowCompleteRepo{DB: f.repo, delay: 100 * time.Millisecond})
	ctx := context.Background()

	_, err := s.Toggle(ctx, a.ID.String())
	require.NoError(t, err)
	tr, err := s.Toggle(ctx, a.ID.String())
	require.NoError(t, err)
	require.False(t, tr.Activity.Completed)
	s.Flush()

	stored, err := f.repo.GetActivity(ctx, "u1", a.ID.String())
	require.NoError(t, err)
	assert.False(t, stored.Completed)
	assert.Empty(t, stored.History)
	assert.Equal(t, 0, stored.Streak)

	rec, ok := s.Tracker().Status(a.ID.String())
	require.True(t, ok)
	assert.Equal(t, habitosync.StatusSynced, rec.Status)

	again := f.login(t)
	assert.Equal(t, 0, again.XP())
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Ler", models.DifficultyMedium, "2024-05-13", "2024-05-14")
	f.seed(t, "Correr", models.DifficultyHard, "2024-05-13")
	s := f.login(t)

	today := s.Today()
	assert.Len(t, today.Due, 2)
	assert.Equal(t, 0, today.Progress.Done)
	assert.Equal(t, 2, today.Level)

	week := s.Week()
	assert.Equal(t, "2024-05-13", week.Start)
	assert.InDelta(t, 1.0, week.Days[0].Ratio, 1e-9)
	assert.InDelta(t, 0.5, week.Days[1].Ratio, 1e-9)

	stats := s.Stats()
	assert.Equal(t, 100, stats.TotalXP)
	assert.Equal(t, 3, stats.TotalCompletions)
	assert.Equal(t, 2, stats.BestStreak)
}

func TestConcurrentTogglesOnDifferentActivities(t *testing.T) {
	f := newFixture(t)
	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		ids = append(ids, f.seed(t, name, models.DifficultyEasy).ID.String())
	}
	s := f.login(t)

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.Toggle(context.Background(), id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()
	assert.Equal(t, 40, s.XP())
	for _, a := range s.Activities() {
		assert.True(t, a.Completed)
	}
}

func TestLoginRequiresRepo(t *testing.T) {
	_, err := Login(context.Background(), "u1", Options{})
	assert.Error(t, err)
}
