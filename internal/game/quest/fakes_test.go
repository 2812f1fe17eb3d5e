package quest_test

import (
	"context"
	"errors"
	"sync"

	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

type heroStore struct {
	mu     sync.Mutex
	heroes map[int64]hero.Hero
}

func newHeroStore(hs ...*hero.Hero) *heroStore {
	s := &heroStore{heroes: make(map[int64]hero.Hero)}
	for _, h := range hs {
		s.heroes[h.ID] = *h
	}
	return s
}

func (s *heroStore) Hero(_ context.Context, id int64) (*hero.Hero, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.heroes[id]
	if !ok {
		return nil, gameerr.NotFound("hero", hero.CombatantID(id))
	}
	return &h, nil
}

func (s *heroStore) put(h *hero.Hero) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heroes[h.ID] = *h
}

func (s *heroStore) get(id int64) hero.Hero {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heroes[id]
}

// progressStore commits steps into heroes and inv. While failCommits is
// positive each CommitQuestStep fails without writing anything.
type progressStore struct {
	mu          sync.Mutex
	records     []*quest.Progress
	nextID      int64
	heroes      *heroStore
	inv         *inventory
	failCommits int
}

func (s *progressStore) ActiveProgress(_ context.Context, heroID int64, questID string) (*quest.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.records {
		if p.HeroID == heroID && p.QuestID == questID && p.IsActive {
			return p.Clone(), nil
		}
	}
	return nil, quest.ErrNoProgress
}

func (s *progressStore) LatestProgress(_ context.Context, heroID int64, questID string) (*quest.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		p := s.records[i]
		if p.HeroID == heroID && p.QuestID == questID {
			return p.Clone(), nil
		}
	}
	return nil, quest.ErrNoProgress
}

func (s *progressStore) ActiveProgresses(_ context.Context, heroID int64) ([]*quest.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*quest.Progress
	for _, p := range s.records {
		if p.HeroID == heroID && p.IsActive {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *progressStore) CreateProgress(_ context.Context, p *quest.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.HeroID == p.HeroID && r.QuestID == p.QuestID && r.IsActive {
			return &gameerr.DuplicateActiveQuestError{HeroID: p.HeroID, QuestID: p.QuestID}
		}
	}
	s.nextID++
	p.ID = s.nextID
	s.records = append(s.records, p.Clone())
	return nil
}

func (s *progressStore) UpdateProgress(_ context.Context, p *quest.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(p)
}

func (s *progressStore) CommitQuestStep(_ context.Context, h *hero.Hero, itemIDs []string, p *quest.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCommits > 0 {
		s.failCommits--
		return errors.New("disk full")
	}
	if err := s.update(p); err != nil {
		return err
	}
	s.heroes.put(h)
	s.inv.add(h.ID, itemIDs)
	return nil
}

func (s *progressStore) update(p *quest.Progress) error {
	for i, r := range s.records {
		if r.ID == p.ID {
			s.records[i] = p.Clone()
			return nil
		}
	}
	return quest.ErrNoProgress
}

type inventory struct {
	mu    sync.Mutex
	items map[int64][]string
}

func (i *inventory) add(heroID int64, ids []string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(ids) == 0 {
		return
	}
	if i.items == nil {
		i.items = make(map[int64][]string)
	}
	i.items[heroID] = append(i.items[heroID], ids...)
}

func (i *inventory) of(heroID int64) []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.items[heroID]
}

type narrator map[quest.EncounterType]string

func (n narrator) EncounterMessage(_ string, typ quest.EncounterType, _ int) (string, bool) {
	msg, ok := n[typ]
	return msg, ok
}
