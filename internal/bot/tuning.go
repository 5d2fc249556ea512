package bot

import (
	"fmt"
	"time"
)

// Difficulty selects a bot's tuning.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty maps a room setting to a Difficulty. Empty means Easy.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case "", Easy:
		return Easy, nil
	case Medium:
		return Medium, nil
	case Hard:
		return Hard, nil
	}
	return "", fmt.Errorf("unknown bot difficulty: %q", s)
}

// Tuning holds the knobs of one difficulty.
type Tuning struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	// Trump keep: probability of keeping the trump card, nudged up for a
	// face card and for every trump already held.
	KeepBase         float64
	KeepFaceBonus    float64
	KeepPerHeldTrump float64

	// Knock-in strength is a weighted count of trumps and face cards plus
	// noise, compared against KnockThreshold.
	KnockThreshold float64
	TrumpWeight    float64
	FaceWeight     float64
	DealerBias     float64 // subtracted from the threshold when dealing
	RiskAversion   float64 // added to the threshold when the pot exceeds the balance

	// Discard: cards scoring below DiscardBelow are exchanged, at most
	// MaxDiscard of them.
	DiscardBelow float64
	MaxDiscard   int

	// Jitter is the amplitude of random noise added to every score.
	Jitter float64
	// LeadStrong leads the best card instead of the cheapest.
	LeadStrong bool
}

// Card score bonuses shared by every difficulty.
const (
	trumpBonus = 6.0
	faceBonus  = 1.5
	aceBonus   = 2.0
	sevenBonus = 0.5 // a 7 might complete three sevens
)

// Tunings is indexed by difficulty.
var Tunings = map[Difficulty]Tuning{
	Easy: {
		MinDelay:         2 * time.Second,
		MaxDelay:         3 * time.Second,
		KeepBase:         0.35,
		KeepFaceBonus:    0.2,
		KeepPerHeldTrump: 0.1,
		KnockThreshold:   1.5,
		TrumpWeight:      1.0,
		FaceWeight:       0.5,
		DealerBias:       0.5,
		RiskAversion:     0,
		DiscardBelow:     4.0,
		MaxDiscard:       2,
		Jitter:           1.5,
	},
	Medium: {
		MinDelay:         1500 * time.Millisecond,
		MaxDelay:         2500 * time.Millisecond,
		KeepBase:         0.3,
		KeepFaceBonus:    0.3,
		KeepPerHeldTrump: 0.15,
		KnockThreshold:   1.8,
		TrumpWeight:      1.2,
		FaceWeight:       0.5,
		DealerBias:       0.6,
		RiskAversion:     0.5,
		DiscardBelow:     5.0,
		MaxDiscard:       3,
		Jitter:           0.8,
		LeadStrong:       true,
	},
	Hard: {
		MinDelay:         1 * time.Second,
		MaxDelay:         2 * time.Second,
		KeepBase:         0.2,
		KeepFaceBonus:    0.4,
		KeepPerHeldTrump: 0.2,
		KnockThreshold:   2.0,
		TrumpWeight:      1.4,
		FaceWeight:       0.6,
		DealerBias:       0.8,
		RiskAversion:     1.0,
		DiscardBelow:     5.5,
		MaxDiscard:       3,
		Jitter:           0.3,
		LeadStrong:       true,
	},
}
