// internal/game/house_rules.go
package game

import (
	"fmt"
	"time"
)

// HouseRules holds the tunable constants of a room. The card rules themselves
// are fixed; these only cover money, table size and pacing.
type HouseRules struct {
	MinPlayers      int   `json:"minPlayers"`      // players needed to start a hand
	MaxPlayers      int   `json:"maxPlayers"`      // seats at the table
	StartingMoney   int   `json:"startingMoney"`   // balance given to every joining player
	DefaultAnte     int   `json:"defaultAnte"`     // ante used until a dealer picks another
	AnteOptions     []int `json:"anteOptions"`     // amounts a dealer may choose from
	DealerSurcharge int   `json:"dealerSurcharge"` // extra paid by the dealer every hand
	MaxDiscard      int   `json:"maxDiscard"`      // cards a player may exchange

	ReadyCountdownSec    int `json:"readyCountdownSec"`    // delay between all-ready and the deal
	DealingDelaySec      int `json:"dealingDelaySec"`      // how long the deal is shown
	TrickDelaySec        int `json:"trickDelaySec"`        // how long a finished trick stays on the table
	SpecialHandDelaySec  int `json:"specialHandDelaySec"`  // how long a special hand or dealer auto-win is shown
	EndBaseDelaySec      int `json:"endBaseDelaySec"`      // base results display time
	EndPerPlayerDelaySec int `json:"endPerPlayerDelaySec"` // extra results time per player
	SetDisplayDelaySec   int `json:"setDisplayDelaySec"`   // extra results time when anyone went set
	InactivityTimeoutSec int `json:"inactivityTimeoutSec"` // time a required actor has before the default applies
	ReconnectGraceSec    int `json:"reconnectGraceSec"`    // time a disconnected player keeps their seat
}

// DefaultHouseRules returns the standard table settings.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		MinPlayers:      3,
		MaxPlayers:      6,
		StartingMoney:   100,
		DefaultAnte:     3,
		AnteOptions:     []int{3, 6, 9, 12, 15},
		DealerSurcharge: 3,
		MaxDiscard:      3,

		ReadyCountdownSec:    3,
		DealingDelaySec:      2,
		TrickDelaySec:        2,
		SpecialHandDelaySec:  3,
		EndBaseDelaySec:      3,
		EndPerPlayerDelaySec: 1,
		SetDisplayDelaySec:   4,
		InactivityTimeoutSec: 30,
		ReconnectGraceSec:    30,
	}
}

// ValidAnte reports whether amount is one of the allowed ante options.
func (rules HouseRules) ValidAnte(amount int) bool {
	for _, a := range rules.AnteOptions {
		if a == amount {
			return true
		}
	}
	return false
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Update will update the house rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string, minVal, maxVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		var n int
		switch v := val.(type) {
		case float64:
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if n < minVal || n > maxVal {
			return fmt.Errorf("%s must be between %d and %d", key, minVal, maxVal)
		}
		*field = n
		return nil
	}

	fields := []struct {
		field    *int
		key      string
		min, max int
	}{
		{&rules.StartingMoney, "startingMoney", 1, 1_000_000},
		{&rules.DealerSurcharge, "dealerSurcharge", 0, 1000},
		{&rules.ReadyCountdownSec, "readyCountdownSec", 0, 60},
		{&rules.DealingDelaySec, "dealingDelaySec", 0, 60},
		{&rules.TrickDelaySec, "trickDelaySec", 0, 60},
		{&rules.SpecialHandDelaySec, "specialHandDelaySec", 0, 60},
		{&rules.EndBaseDelaySec, "endBaseDelaySec", 0, 60},
		{&rules.EndPerPlayerDelaySec, "endPerPlayerDelaySec", 0, 60},
		{&rules.SetDisplayDelaySec, "setDisplayDelaySec", 0, 60},
		{&rules.InactivityTimeoutSec, "inactivityTimeoutSec", 1, 600},
		{&rules.ReconnectGraceSec, "reconnectGraceSec", 0, 3600},
	}
	for _, f := range fields {
		if err := assignInt(f.field, f.key, f.min, f.max); err != nil {
			return err
		}
	}

	ante := rules.DefaultAnte
	if err := assignInt(&ante, "defaultAnte", 1, 1000); err != nil {
		return err
	}
	if !rules.ValidAnte(ante) {
		return fmt.Errorf("defaultAnte must be one of %v", rules.AnteOptions)
	}
	rules.DefaultAnte = ante
	return nil
}

// ParseRules applies rules on top of current without mutating it.
func ParseRules(rules map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	houseRules.AnteOptions = append([]int(nil), current.AnteOptions...)
	err := houseRules.Update(rules)
	return houseRules, err
}
