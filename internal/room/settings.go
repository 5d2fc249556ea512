package room

import (
	"fmt"

	"github.com/jason-s-yu/swick/internal/bot"
	"github.com/jason-s-yu/swick/internal/game"
)

// BotSeat asks for a bot at the table.
type BotSeat struct {
	Difficulty string `json:"difficulty"`
}

// Settings are fixed when a room is created.
type Settings struct {
	Name             string          `json:"name"`
	Private          bool            `json:"private"`
	Passcode         string          `json:"passcode,omitempty"`
	SeatCount        int             `json:"seatCount"`
	Bots             []BotSeat       `json:"bots"`
	AllowMidGameJoin bool            `json:"allowMidGameJoin"`
	Rules            game.HouseRules `json:"houseRules"`
}

// validate fills defaults and checks the seat layout.
func (s *Settings) validate() error {
	if s.Rules.MaxPlayers == 0 {
		s.Rules = game.DefaultHouseRules()
	}
	if s.SeatCount == 0 {
		s.SeatCount = s.Rules.MaxPlayers
	}
	if s.SeatCount < s.Rules.MinPlayers || s.SeatCount > game.DefaultHouseRules().MaxPlayers {
		return fmt.Errorf("seat count %d out of range %d-%d", s.SeatCount, s.Rules.MinPlayers, game.DefaultHouseRules().MaxPlayers)
	}
	s.Rules.MaxPlayers = s.SeatCount
	if len(s.Bots) > s.SeatCount-1 {
		return fmt.Errorf("%d bots leave no seat for a human", len(s.Bots))
	}
	for i, b := range s.Bots {
		d, err := bot.ParseDifficulty(b.Difficulty)
		if err != nil {
			return fmt.Errorf("bot seat %d: %w", i, err)
		}
		s.Bots[i].Difficulty = string(d)
	}
	if s.Name == "" {
		s.Name = "Swick table"
	}
	return nil
}
