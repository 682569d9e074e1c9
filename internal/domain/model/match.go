// Package model contains the records shared by the store, the synchronizer and
// the HTTP surfaces. JSON names follow the storefront wire format.
package model

import "time"

// Status is the lifecycle state of a tracked match.
type Status string

const (
	StatusUpcoming Status = "Upcoming"
	StatusLive     Status = "Live"
	StatusFinished Status = "Finished"
)

func (s Status) rank() int {
	switch s {
	case StatusUpcoming:
		return 0
	case StatusLive:
		return 1
	case StatusFinished:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return s.rank() >= 0 }

// Regresses reports whether moving from s to next goes backwards.
func (s Status) Regresses(next Status) bool { return next.rank() < s.rank() }

// FinalWhistle is the elapsed minute at which a live match is forced to Finished.
const FinalWhistle = 95

// MatchStats holds optional per-side statistics.
type MatchStats struct {
	PossessionA int `json:"possessionA"`
	PossessionB int `json:"possessionB"`
	ShotsA      int `json:"shotsA"`
	ShotsB      int `json:"shotsB"`
}

// Match is a tracked fixture on the live-score board.
type Match struct {
	ID            string      `json:"id"`
	TeamA         string      `json:"teamA"`
	TeamALogo     string      `json:"teamALogo,omitempty"`
	TeamB         string      `json:"teamB"`
	TeamBLogo     string      `json:"teamBLogo,omitempty"`
	ScoreA        int         `json:"scoreA"`
	ScoreB        int         `json:"scoreB"`
	Status        Status      `json:"status"`
	Sport         string      `json:"sport,omitempty"`
	StartTime     time.Time   `json:"startTime,omitzero"`
	Venue         string      `json:"venue"`
	Stats         *MatchStats `json:"stats,omitempty"`
	CurrentMinute *int        `json:"currentMinute,omitempty"`
	LastEvent     string      `json:"lastEvent,omitempty"`
}

// Minute returns the elapsed minute, 0 when unset.
func (m Match) Minute() int {
	if m.CurrentMinute == nil {
		return 0
	}
	return *m.CurrentMinute
}

// Validate checks the fields an administrator must provide.
func (m Match) Validate() error {
	switch {
	case m.ID == "":
		return invalid("match id is required")
	case m.TeamA == "" || m.TeamB == "":
		return invalid("match %s: both teams are required", m.ID)
	case m.Venue == "":
		return invalid("match %s: venue is required", m.ID)
	case !m.Status.Valid():
		return invalid("match %s: unknown status %q", m.ID, m.Status)
	case m.ScoreA < 0 || m.ScoreB < 0:
		return invalid("match %s: scores must not be negative", m.ID)
	case m.Minute() < 0:
		return invalid("match %s: minute must not be negative", m.ID)
	}
	return nil
}

// Delta is a partial, additive update for one match emitted by the live feed.
// Zero increments and an empty label mean "not set".
type Delta struct {
	ID              string `json:"id"`
	MinuteIncrement int    `json:"minuteIncrement,omitempty"`
	ScoreAIncrement int    `json:"scoreAIncrement,omitempty"`
	ScoreBIncrement int    `json:"scoreBIncrement,omitempty"`
	LastEvent       string `json:"lastEvent,omitempty"`
}

// Empty reports whether the delta carries no change.
func (d Delta) Empty() bool {
	return d.MinuteIncrement == 0 && d.ScoreAIncrement == 0 && d.ScoreBIncrement == 0 && d.LastEvent == ""
}

// Validate enforces additive-only increments and a single scoring side.
func (d Delta) Validate() error {
	switch {
	case d.ID == "":
		return invalid("delta has no target id")
	case d.MinuteIncrement < 0 || d.ScoreAIncrement < 0 || d.ScoreBIncrement < 0:
		return invalid("delta %s: increments must not be negative", d.ID)
	case d.ScoreAIncrement > 0 && d.ScoreBIncrement > 0:
		return invalid("delta %s: a goal belongs to exactly one side", d.ID)
	}
	return nil
}
