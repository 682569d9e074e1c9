package state

import "github.com/Showrav193/Sportsworld/internal/domain/model"

// EventKind tells snapshot events from delta events.
type EventKind string

const (
	EventSnapshot EventKind = "snapshot"
	EventDelta    EventKind = "delta"
)

// ScoresEvent is delivered to watchers after each in-memory scores change.
// Snapshot events carry the full board; delta events carry the applied delta
// and the merged match. Events hold copies and are shared by every watcher, so
// watchers treat them as read-only.
type ScoresEvent struct {
	Kind   EventKind     `json:"type"`
	Scores []model.Match `json:"scores,omitempty"`
	Delta  *model.Delta  `json:"delta,omitempty"`
	Match  *model.Match  `json:"match,omitempty"`
}

type watcher struct {
	id uint64
	fn func(ScoresEvent)
}

// Watch registers fn for scores changes and returns a function that removes it.
// fn first receives a snapshot of the current board, then every later change
// in order with nothing missed in between. fn runs synchronously and must not
// call back into the Synchronizer.
func (s *Synchronizer) Watch(fn func(ScoresEvent)) (cancel func()) {
	s.mu.RLock()
	s.watchMu.Lock()
	board := model.CloneAll(s.scores)
	s.mu.RUnlock()
	defer s.watchMu.Unlock()

	s.watchSeq++
	id := s.watchSeq
	s.watchers = append(s.watchers, &watcher{id: id, fn: fn})
	fn(ScoresEvent{Kind: EventSnapshot, Scores: board})

	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		for i, w := range s.watchers {
			if w.id == id {
				s.watchers = append(s.watchers[:i:i], s.watchers[i+1:]...)
				return
			}
		}
	}
}

// unlockAndNotify releases s.mu and delivers ev. The watch lock is taken
// before s.mu is released so events reach watchers in the order they happened.
func (s *Synchronizer) unlockAndNotify(ev ScoresEvent) {
	s.watchMu.Lock()
	s.mu.Unlock()
	defer s.watchMu.Unlock()

	for _, w := range s.watchers {
		w.fn(ev)
	}
}
