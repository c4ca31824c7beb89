package models

import (
	"time"

	"github.com/lib/pq"
)

// Tournament statuses. Transitions are monotonic:
// abierto → en curso → finalizado. Only "abierto" gates joining.
const (
	StatusOpen       = "abierto"
	StatusInProgress = "en curso"
	StatusFinished   = "finalizado"
)

// Tournament is a signup sheet for one event. Participants is an ordered
// set of user uids; insertion order is preserved but carries no meaning
// beyond "who joined". The store-level add-if-absent update guarantees no
// duplicates; it does NOT enforce MaxParticipants, so concurrent joins
// racing on the last slot can overshoot the cap (see service docs).
type Tournament struct {
	ID              string         `json:"id" gorm:"primaryKey"`
	Name            string         `json:"name" gorm:"not null"`
	Slug            string         `json:"slug" gorm:"index"`
	GameName        string         `json:"gameName" gorm:"not null"`
	MaxParticipants int            `json:"maxParticipants" gorm:"not null"`
	Date            time.Time      `json:"date" gorm:"not null"`
	CreatorUID      string         `json:"creatorUid" gorm:"not null;index"`
	Participants    pq.StringArray `json:"participants" gorm:"type:text[]"`
	Status          string         `json:"status" gorm:"default:'abierto'"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (t *Tournament) IsOpen() bool {
	return t.Status == StatusOpen
}

func (t *Tournament) IsFull() bool {
	return len(t.Participants) >= t.MaxParticipants
}

func (t *Tournament) HasParticipant(uid string) bool {
	for _, p := range t.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// statusRank orders statuses for the monotonic-transition check.
var statusRank = map[string]int{
	StatusOpen:       0,
	StatusInProgress: 1,
	StatusFinished:   2,
}

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether a tournament may move from one status to
// the next. The chain is abierto → en curso → finalizado, one step at a
// time; going backwards or skipping a stage is rejected.
func CanTransition(from, to string) bool {
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr == fr+1
}
