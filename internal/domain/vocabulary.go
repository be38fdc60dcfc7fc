package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Vocabulary is the configuration-time enumeration of rooms and statuses shared
// with the store schema. Two deployments of this app have used different status
// sets (want/candidate/purchased/eliminated vs candidate/want/decided/purchased),
// so the set is a parameter rather than a literal list.
type Vocabulary struct {
	Rooms           []string
	Statuses        []Status
	InitialStatus   Status
	PurchasedStatus Status
	CountedStatus   Status
	DefaultCurrency string
}

// DefaultVocabulary returns the canonical vocabulary: the six rooms of the
// original household and the want/candidate/purchased/eliminated workflow.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Rooms:           []string{"客廳", "廚房", "電腦房", "小房間", "主臥室", "浴室"},
		Statuses:        []Status{"want", "candidate", "purchased", "eliminated"},
		InitialStatus:   "want",
		PurchasedStatus: "purchased",
		CountedStatus:   "purchased",
		DefaultCurrency: "TWD",
	}
}

// NewVocabulary builds and validates a vocabulary from configuration values.
func NewVocabulary(rooms, statuses []string, initial, purchased, counted, currency string) (Vocabulary, error) {
	v := Vocabulary{
		InitialStatus:   Status(initial),
		PurchasedStatus: Status(purchased),
		CountedStatus:   Status(counted),
		DefaultCurrency: currency,
	}
	for _, r := range rooms {
		if r = strings.TrimSpace(r); r != "" {
			v.Rooms = append(v.Rooms, r)
		}
	}
	for _, s := range statuses {
		if s = strings.TrimSpace(s); s != "" {
			v.Statuses = append(v.Statuses, Status(s))
		}
	}
	if len(v.Rooms) == 0 {
		return Vocabulary{}, fmt.Errorf("vocabulary: at least one room is required")
	}
	if len(v.Statuses) == 0 {
		return Vocabulary{}, fmt.Errorf("vocabulary: at least one status is required")
	}
	if !v.ValidStatus(v.InitialStatus) {
		return Vocabulary{}, fmt.Errorf("vocabulary: initial status %q is not in the status set", initial)
	}
	if !v.ValidStatus(v.PurchasedStatus) {
		return Vocabulary{}, fmt.Errorf("vocabulary: purchased status %q is not in the status set", purchased)
	}
	if !v.ValidStatus(v.CountedStatus) {
		return Vocabulary{}, fmt.Errorf("vocabulary: counted status %q is not in the status set", counted)
	}
	if len(v.DefaultCurrency) != 3 {
		return Vocabulary{}, fmt.Errorf("vocabulary: default currency %q must be a 3-letter code", currency)
	}
	return v, nil
}

// ValidRoom reports whether room is part of the fixed room set.
func (v Vocabulary) ValidRoom(room string) bool {
	return slices.Contains(v.Rooms, room)
}

// ValidStatus reports whether s is part of the configured status set.
func (v Vocabulary) ValidStatus(s Status) bool {
	return slices.Contains(v.Statuses, s)
}
