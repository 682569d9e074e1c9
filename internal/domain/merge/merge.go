// Package merge folds live delta events into a scores snapshot.
package merge

import "github.com/Showrav193/Sportsworld/internal/domain/model"

// Outcome describes what Apply did with a delta.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeNoop     Outcome = "noop"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFrozen   Outcome = "frozen"
)

// Apply returns the snapshot with delta folded into the record whose id matches.
//
// The input slice and its records are never modified: when something changes a
// fresh slice is returned, otherwise the original slice is handed back as is.
// Records that are already Finished do not accept deltas. A minute increment
// that reaches FinalWhistle forces the match to Finished, whatever the score.
func Apply(snapshot []model.Match, delta model.Delta) ([]model.Match, Outcome) {
	idx := -1
	for i := range snapshot {
		if snapshot[i].ID == delta.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return snapshot, OutcomeNotFound
	}
	if delta.Empty() {
		return snapshot, OutcomeNoop
	}
	if snapshot[idx].Status == model.StatusFinished {
		return snapshot, OutcomeFrozen
	}

	next := make([]model.Match, len(snapshot))
	copy(next, snapshot)
	next[idx] = applyOne(snapshot[idx], delta)
	return next, OutcomeApplied
}

func applyOne(m model.Match, d model.Delta) model.Match {
	if d.MinuteIncrement > 0 {
		// fresh pointer so readers of the old record keep their minute
		minute := m.Minute() + d.MinuteIncrement
		m.CurrentMinute = &minute
		if minute >= model.FinalWhistle {
			m.Status = model.StatusFinished
		}
	}
	if d.ScoreAIncrement > 0 {
		m.ScoreA += d.ScoreAIncrement
	}
	if d.ScoreBIncrement > 0 {
		m.ScoreB += d.ScoreBIncrement
	}
	if d.LastEvent != "" {
		m.LastEvent = d.LastEvent
	}
	return m
}
