// ABOUTME: Per-user session state: the loaded activities and the running XP ledger.
// ABOUTME: Mutations apply locally first, then dispatch the remote write without waiting.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/habits"
	"github.com/harperreed/habito/internal/models"
	"github.com/harperreed/habito/internal/storage"
	habitosync "github.com/harperreed/habito/internal/sync"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("activity not found")
	ErrAmbiguous = errors.New("ambiguous activity prefix")
	ErrLoggedOut = errors.New("session is logged out")
)

// ResetStore keeps the day of the last daily reset. *cache.Cache satisfies it.
type ResetStore interface {
	LastReset(userID string) (string, error)
	SetLastReset(userID, date string) error
}

// Options wires a session to its collaborators. Only Repo is required.
type Options struct {
	Repo    storage.Repository
	Resets  ResetStore
	Tracker *habitosync.Tracker
	Logger  *zap.Logger
	Now     func() time.Time
}

// Session holds one user's activities between login and logout.
type Session struct {
	mu         stdsync.Mutex
	userID     string
	repo       storage.Repository
	resets     ResetStore
	tracker    *habitosync.Tracker
	logger     *zap.Logger
	now        func() time.Time
	activities []models.Activity
	xp         int
	lastReset  string
	newDay     bool
	active     bool
}

// Login loads userID's activities, reconciles them against today and seeds
// the XP ledger from history.
func Login(ctx context.Context, userID string, opts Options) (*Session, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("login: no activity store")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("login: empty user id")
	}
	s := &Session{
		userID:  userID,
		repo:    opts.Repo,
		resets:  opts.Resets,
		tracker: opts.Tracker,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tracker == nil {
		s.tracker = habitosync.NewTracker(nil, s.logger)
	}

	if s.resets != nil {
		last, err := s.resets.LastReset(userID)
		if err != nil {
			s.logger.Warn("read last reset", zap.Error(err))
		}
		s.lastReset = last
	}

	activities, err := s.repo.FetchActivities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	today := s.now()
	s.activities = habits.ReconcileAll(activities, today)
	s.xp = habits.TotalXP(s.activities)
	s.active = true
	s.rollDay(today)
	return s, nil
}

// rollDay reconciles the collection once per calendar day. The reset marker
// lives only in memory and the local cache.
func (s *Session) rollDay(today time.Time) {
	iso := calendar.ISODate(today)
	if s.lastReset == iso {
		return
	}
	s.activities = habits.ReconcileAll(s.activities, today)
	s.lastReset = iso
	s.newDay = true
	if s.resets != nil {
		if err := s.resets.SetLastReset(s.userID, iso); err != nil {
			s.logger.Warn("record daily reset", zap.String("date", iso), zap.Error(err))
		}
	}
	s.logger.Debug("daily reset", zap.String("user", s.userID), zap.String("date", iso))
}

// begin locks the session for a mutation and rolls the day if needed.
func (s *Session) begin() (time.Time, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return time.Time{}, ErrLoggedOut
	}
	today := s.now()
	s.rollDay(today)
	return today, nil
}

// rollIfActive is the read-path counterpart of begin. Callers hold s.mu.
func (s *Session) rollIfActive() {
	if s.active {
		s.rollDay(s.now())
	}
}

// Logout drops every piece of per-user state. Writes already dispatched still
// complete; call Flush to wait for them.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = nil
	s.xp = 0
	s.lastReset = ""
	s.newDay = false
	s.active = false
}

// Flush waits for every dispatched remote write.
func (s *Session) Flush() {
	s.tracker.Wait()
}

// Tracker exposes the sync state of dispatched writes.
func (s *Session) Tracker() *habitosync.Tracker {
	return s.tracker
}

// UserID returns the logged-in user.
func (s *Session) UserID() string {
	return s.userID
}

// NewDay reports whether this session performed today's daily reset.
func (s *Session) NewDay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newDay
}

// LastReset returns the ISO day of the last daily reset.
func (s *Session) LastReset() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReset
}

// XP returns the running ledger.
func (s *Session) XP() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xp
}

// Activities returns a copy of the collection, reconciled against today.
func (s *Session) Activities() []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollIfActive()
	out := make([]models.Activity, len(s.activities))
	for i, a := range s.activities {
		out[i] = a.Clone()
	}
	return out
}

// Get finds an activity by id or unique id prefix.
func (s *Session) Get(idOrPrefix string) (models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollIfActive()
	i, err := s.find(idOrPrefix)
	if err != nil {
		return models.Activity{}, err
	}
	return s.activities[i].Clone(), nil
}

func (s *Session) find(idOrPrefix string) (int, error) {
	idOrPrefix = strings.ToLower(strings.TrimSpace(idOrPrefix))
	if idOrPrefix == "" {
		return -1, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	match := -1
	for i, a := range s.activities {
		if strings.HasPrefix(a.ID.String(), idOrPrefix) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguous, idOrPrefix)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	return match, nil
}

// Toggle flips today's completion of one activity and moves the ledger.
func (s *Session) Toggle(ctx context.Context, idOrPrefix string) (habits.Transition, error) {
	today, err := s.begin()
	if err != nil {
		return habits.Transition{}, err
	}
	i, err := s.find(idOrPrefix)
	if err != nil {
		s.mu.Unlock()
		return habits.Transition{}, err
	}
	tr := habits.Toggle(s.activities[i], s.xp, today)
	s.activities[i] = tr.Activity
	s.xp = tr.XP
	s.mu.Unlock()

	habitosync.CountToggle(tr.Completing)
	s.dispatchUpdate(ctx, tr.Activity, models.CompletionPatch(tr.Activity))
	tr.Activity = tr.Activity.Clone()
	return tr, nil
}

// ToggleDate flips one calendar day of an activity's history. The ledger
// moves by the activity's XP in the same direction, floored at zero.
func (s *Session) ToggleDate(ctx context.Context, idOrPrefix, date string) (habits.Transition, error) {
	today, err := s.begin()
	if err != nil {
		return habits.Transition{}, err
	}
	i, err := s.find(idOrPrefix)
	if err != nil {
		s.mu.Unlock()
		return habits.Transition{}, err
	}
	before := s.activities[i]
	after, err := habits.ToggleDate(before, date, today)
	if err != nil {
		s.mu.Unlock()
		return habits.Transition{}, err
	}
	completing := !before.HasDate(date)
	if completing {
		s.xp += after.XP
	} else {
		s.xp -= after.XP
		if s.xp < 0 {
			s.xp = 0
		}
	}
	s.activities[i] = after
	tr := habits.Transition{Activity: after.Clone(), XP: s.xp, Completing: completing}
	s.mu.Unlock()

	habitosync.CountToggle(completing)
	s.dispatchUpdate(ctx, after, models.CompletionPatch(after))
	return tr, nil
}

// Add validates and inserts a new activity. Unlike the other mutations it
// waits for the store, which assigns the id.
func (s *Session) Add(ctx context.Context, draft models.ActivityDraft) (models.Activity, error) {
	if err := draft.Validate(); err != nil {
		return models.Activity{}, err
	}
	if _, err := s.begin(); err != nil {
		return models.Activity{}, err
	}
	s.mu.Unlock()

	created, err := s.repo.InsertActivity(ctx, s.userID, draft)
	if err != nil {
		return models.Activity{}, fmt.Errorf("add activity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return *created, nil
	}
	s.activities = append(s.activities, created.Clone())
	return created.Clone(), nil
}

// Edit is a user edit of an activity's definition. Nil fields are unchanged.
type Edit struct {
	Name             *string
	Category         *models.Category
	Icon             *string
	Color            *string
	Difficulty       *models.Difficulty
	Frequency        *calendar.WeekdaySet
	RemindersEnabled *bool
	ReminderTimes    []string
}

// IsEmpty reports whether the edit changes nothing.
func (e Edit) IsEmpty() bool {
	return e.Name == nil && e.Category == nil && e.Icon == nil && e.Color == nil &&
		e.Difficulty == nil && e.Frequency == nil && e.RemindersEnabled == nil && e.ReminderTimes == nil
}

// patch validates the edit and converts it, re-deriving XP and the time slot.
func (e Edit) patch() (models.ActivityPatch, error) {
	var p models.ActivityPatch
	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if name == "" {
			return p, models.ErrEmptyName
		}
		p.Name = &name
	}
	p.Category, p.Icon, p.Color, p.Frequency, p.RemindersEnabled = e.Category, e.Icon, e.Color, e.Frequency, e.RemindersEnabled
	if e.Difficulty != nil {
		d := *e.Difficulty
		xp := d.XP()
		p.Difficulty, p.XP = &d, &xp
	}
	if e.ReminderTimes != nil {
		if err := models.ValidateReminderTimes(e.ReminderTimes); err != nil {
			return p, err
		}
		p.ReminderTimes = append([]string{}, e.ReminderTimes...)
		slot := e.ReminderTimes[0] + " - " + e.ReminderTimes[0]
		p.TimeSlot = &slot
	}
	return p, nil
}

// Update applies an edit locally and dispatches it.
func (s *Session) Update(ctx context.Context, idOrPrefix string, edit Edit) (models.Activity, error) {
	patch, err := edit.patch()
	if err != nil {
		return models.Activity{}, err
	}
	if _, err := s.begin(); err != nil {
		return models.Activity{}, err
	}
	i, err := s.find(idOrPrefix)
	if err != nil {
		s.mu.Unlock()
		return models.Activity{}, err
	}
	a := s.activities[i].Clone()
	patch.Apply(&a)
	s.activities[i] = a
	s.mu.Unlock()

	s.dispatchUpdate(ctx, a, patch)
	return a.Clone(), nil
}

// Delete removes an activity locally at once and dispatches the remote delete.
func (s *Session) Delete(ctx context.Context, idOrPrefix string) (models.Activity, error) {
	if _, err := s.begin(); err != nil {
		return models.Activity{}, err
	}
	i, err := s.find(idOrPrefix)
	if err != nil {
		s.mu.Unlock()
		return models.Activity{}, err
	}
	removed := s.activities[i]
	s.activities = append(s.activities[:i:i], s.activities[i+1:]...)
	s.mu.Unlock()

	id := removed.ID.String()
	s.tracker.Dispatch(ctx, id, habitosync.OpDelete, nil, func(ctx context.Context) error {
		return s.repo.DeleteActivity(ctx, id)
	})
	return removed, nil
}

func (s *Session) dispatchUpdate(ctx context.Context, a models.Activity, patch models.ActivityPatch) {
	id := a.ID.String()
	s.tracker.Dispatch(ctx, id, habitosync.OpUpdate, &a, func(ctx context.Context) error {
		return s.repo.UpdateActivity(ctx, id, patch)
	})
}

// TodayView is the list of activities due today with their progress.
type TodayView struct {
	Date     string             `json:"date"`
	Progress habits.DayProgress `json:"progress"`
	Due      []models.Activity  `json:"due"`
	XP       int                `json:"xp"`
	Level    int                `json:"level"`
}

// Today returns what is due today.
func (s *Session) Today() TodayView {
	today, err := s.begin()
	if err != nil {
		return TodayView{}
	}
	defer s.mu.Unlock()
	due := habits.DueOn(s.activities, today)
	for i := range due {
		due[i] = due[i].Clone()
	}
	return TodayView{
		Date:     calendar.ISODate(today),
		Progress: habits.CompletionRatio(s.activities, today, today),
		Due:      due,
		XP:       s.xp,
		Level:    habits.Level(s.xp),
	}
}

// Week returns the Monday-start summary of the current week.
func (s *Session) Week() habits.WeekSummary {
	today, err := s.begin()
	if err != nil {
		return habits.WeekSummary{}
	}
	defer s.mu.Unlock()
	return habits.Week(s.activities, today)
}

// Stats returns the dashboard statistics.
func (s *Session) Stats() habits.Stats {
	today, err := s.begin()
	if err != nil {
		return habits.Stats{}
	}
	defer s.mu.Unlock()
	return habits.Summarize(s.activities, s.xp, today)
}

// Now returns the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}
