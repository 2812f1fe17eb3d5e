package quest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/herolock"
	"github.com/cory-johannsen/herobound/internal/game/item"
	"github.com/cory-johannsen/herobound/internal/game/monster"
	"github.com/cory-johannsen/herobound/internal/game/reward"
)

// DefaultRestHealCap is the flat health ceiling for rest encounters.
const DefaultRestHealCap = 100

// QuestCatalog looks up quest definitions.
type QuestCatalog interface {
	Quest(id string) (*Quest, error)
}

// HeroStore loads heroes. Hero returns a *gameerr.NotFoundError for an unknown id.
type HeroStore interface {
	Hero(ctx context.Context, id int64) (*hero.Hero, error)
}

// ProgressStore persists quest progress records.
//
// ActiveProgress and LatestProgress return ErrNoProgress when nothing matches.
// CreateProgress assigns p.ID and returns a *gameerr.DuplicateActiveQuestError
// when an active record already exists for the pair.
// CommitQuestStep saves h, adds itemIDs to h's inventory and updates p in one
// transaction: either all three writes land or none do.
type ProgressStore interface {
	ActiveProgress(ctx context.Context, heroID int64, questID string) (*Progress, error)
	LatestProgress(ctx context.Context, heroID int64, questID string) (*Progress, error)
	ActiveProgresses(ctx context.Context, heroID int64) ([]*Progress, error)
	CreateProgress(ctx context.Context, p *Progress) error
	UpdateProgress(ctx context.Context, p *Progress) error
	CommitQuestStep(ctx context.Context, h *hero.Hero, itemIDs []string, p *Progress) error
}

// MonsterCatalog looks up monster templates.
type MonsterCatalog interface {
	ByID(id string) (*monster.Template, error)
	NearestLevel(level int, src dice.Source) (*monster.Template, bool)
}

// ItemCatalog looks up item definitions. Resolve returns a
// *gameerr.NotFoundError for the first unknown id.
type ItemCatalog interface {
	Resolve(ids []string) ([]*item.Def, error)
	Random(src dice.Source) (string, bool)
}

// Narrator may replace the default log message for an encounter.
type Narrator interface {
	EncounterMessage(questID string, typ EncounterType, position int) (string, bool)
}

// Deps are the collaborators of a Tracker. All fields except Narrator are required.
type Deps struct {
	Quests    QuestCatalog
	Heroes    HeroStore
	Progress  ProgressStore
	Monsters  MonsterCatalog
	Items     ItemCatalog
	Generator *Generator
	Rewards   *reward.Calculator
	Locks     *herolock.Locker
	Source    dice.Source
	Narrator  Narrator
	Logger    *zap.Logger
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithRestHealCap sets the rest ceiling. Zero means the hero's derived base health.
func WithRestHealCap(n int) Option {
	return func(t *Tracker) { t.restHealCap = n }
}

// WithClock sets the timestamp source for log entries.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker advances heroes along quest boards. Every mutating call holds the
// hero's lock for its whole duration.
type Tracker struct {
	Deps
	restHealCap int
	now         func() time.Time
}

// NewTracker creates a Tracker.
//
// Precondition: every required field of deps is non-nil.
func NewTracker(deps Deps, opts ...Option) *Tracker {
	t := &Tracker{Deps: deps, restHealCap: DefaultRestHealCap, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartQuest begins questID for heroID.
//
// Postcondition: Returns the new active Progress holding a single start entry at
// position 0, a *gameerr.DuplicateActiveQuestError, or a *gameerr.NotFoundError.
func (t *Tracker) StartQuest(ctx context.Context, heroID int64, questID string) (*Progress, error) {
	unlock, err := t.Locks.Lock(ctx, heroID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := t.Quests.Quest(questID); err != nil {
		return nil, err
	}
	if _, err := t.Heroes.Hero(ctx, heroID); err != nil {
		return nil, fmt.Errorf("starting quest %q: %w", questID, err)
	}

	_, err = t.Deps.Progress.ActiveProgress(ctx, heroID, questID)
	switch {
	case err == nil:
		return nil, &gameerr.DuplicateActiveQuestError{HeroID: heroID, QuestID: questID}
	case !errors.Is(err, ErrNoProgress):
		return nil, fmt.Errorf("starting quest %q: %w", questID, err)
	}

	now := t.now()
	p := &Progress{
		HeroID:   heroID,
		QuestID:  questID,
		IsActive: true,
		Log: []LogEntry{{
			Position:      0,
			Message:       t.message(questID, EntryStart, 0, "You begin your quest."),
			EncounterType: EntryStart,
			Timestamp:     now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Deps.Progress.CreateProgress(ctx, p); err != nil {
		return nil, fmt.Errorf("starting quest %q: %w", questID, err)
	}
	t.Logger.Info("quest started", zap.Int64("hero_id", heroID), zap.String("quest_id", questID))
	return p, nil
}

// AdvanceQuest moves the hero one position forward and resolves what is found there.
//
// Postcondition: Exactly one log entry is appended. Reaching the board size
// completes the quest, grants its rewards and deactivates it. Returns a
// *gameerr.NoActiveQuestError when the quest is not active. A step that fails
// to save leaves the hero, inventory and progress unchanged.
func (t *Tracker) AdvanceQuest(ctx context.Context, heroID int64, questID string) (*StepResult, error) {
	unlock, err := t.Locks.Lock(ctx, heroID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := t.active(ctx, heroID, questID)
	if err != nil {
		return nil, err
	}
	q, err := t.Quests.Quest(questID)
	if err != nil {
		return nil, err
	}
	h, err := t.Heroes.Hero(ctx, heroID)
	if err != nil {
		return nil, fmt.Errorf("advancing quest %q: %w", questID, err)
	}

	p = p.Clone()
	p.CurrentPosition++
	res := &StepResult{Progress: p}

	var granted []string
	if p.CurrentPosition >= q.BoardSize {
		entry, items, err := t.complete(h, q, p.CurrentPosition)
		if err != nil {
			return nil, err
		}
		p.IsCompleted, p.IsActive = true, false
		res.Entry, res.Completed, granted = entry, true, items
	} else {
		var enc Encounter
		if authored, ok := q.EncounterAt(p.CurrentPosition); ok {
			enc = t.Generator.Fill(*authored, h.Level, t.Source)
		} else {
			enc = t.Generator.Generate(h.Level, p.CurrentPosition, t.Source)
		}
		entry, items, err := t.resolve(h, q, &enc)
		if err != nil {
			return nil, err
		}
		res.Entry, res.Encounter, granted = entry, &enc, items
	}

	p.Log = append(p.Log, res.Entry)
	p.UpdatedAt = res.Entry.Timestamp

	if err := t.Deps.Progress.CommitQuestStep(ctx, h, granted, p); err != nil {
		return nil, fmt.Errorf("saving quest step: %w", err)
	}

	t.Logger.Debug("quest advanced",
		zap.Int64("hero_id", heroID),
		zap.String("quest_id", questID),
		zap.Int("position", p.CurrentPosition),
		zap.String("encounter", string(res.Entry.EncounterType)),
		zap.Bool("completed", res.Completed),
	)
	return res, nil
}

// AbandonQuest deactivates an active quest without granting rewards. The
// position is left unchanged.
//
// Postcondition: Returns a *gameerr.NoActiveQuestError, without changing
// anything, when the quest is not active.
func (t *Tracker) AbandonQuest(ctx context.Context, heroID int64, questID string) error {
	unlock, err := t.Locks.Lock(ctx, heroID)
	if err != nil {
		return err
	}
	defer unlock()

	p, err := t.active(ctx, heroID, questID)
	if err != nil {
		return err
	}
	p = p.Clone()
	now := t.now()
	p.IsActive = false
	p.Log = append(p.Log, LogEntry{
		Position:      p.CurrentPosition,
		Message:       t.message(questID, EntryAbandon, p.CurrentPosition, "You abandoned the quest."),
		EncounterType: EntryAbandon,
		Timestamp:     now,
	})
	p.UpdatedAt = now
	if err := t.Deps.Progress.UpdateProgress(ctx, p); err != nil {
		return fmt.Errorf("abandoning quest %q: %w", questID, err)
	}
	t.Logger.Info("quest abandoned", zap.Int64("hero_id", heroID), zap.String("quest_id", questID))
	return nil
}

// Progress returns the most recent record for the pair, active or not.
//
// Postcondition: Returns a *gameerr.NotFoundError when the hero never started the quest.
func (t *Tracker) Progress(ctx context.Context, heroID int64, questID string) (*Progress, error) {
	p, err := t.Deps.Progress.LatestProgress(ctx, heroID, questID)
	if errors.Is(err, ErrNoProgress) {
		return nil, gameerr.NotFound("quest progress", progressKey(heroID, questID))
	}
	return p, err
}

// ActiveQuests lists every active quest of the hero.
func (t *Tracker) ActiveQuests(ctx context.Context, heroID int64) ([]ActiveQuest, error) {
	ps, err := t.Deps.Progress.ActiveProgresses(ctx, heroID)
	if err != nil {
		return nil, fmt.Errorf("listing active quests: %w", err)
	}
	out := make([]ActiveQuest, 0, len(ps))
	for _, p := range ps {
		q, err := t.Quests.Quest(p.QuestID)
		if err != nil {
			return nil, err
		}
		out = append(out, ActiveQuest{Progress: p, Quest: q})
	}
	return out, nil
}

func (t *Tracker) active(ctx context.Context, heroID int64, questID string) (*Progress, error) {
	p, err := t.Deps.Progress.ActiveProgress(ctx, heroID, questID)
	if errors.Is(err, ErrNoProgress) {
		return nil, &gameerr.NoActiveQuestError{HeroID: heroID, QuestID: questID}
	}
	if err != nil {
		return nil, fmt.Errorf("loading quest progress: %w", err)
	}
	return p, nil
}

func (t *Tracker) message(questID string, typ EncounterType, position int, fallback string) string {
	if t.Narrator != nil {
		if msg, ok := t.Narrator.EncounterMessage(questID, typ, position); ok && msg != "" {
			return msg
		}
	}
	return fallback
}

func progressKey(heroID int64, questID string) string {
	return strconv.FormatInt(heroID, 10) + "/" + questID
}
