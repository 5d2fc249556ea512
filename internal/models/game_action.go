package models

// Intent types a client (or a bot) may submit to a room.
const (
	ActionSetReady        = "set_ready"
	ActionSetAutoReady    = "set_auto_ready"
	ActionSetAnte         = "set_ante"
	ActionChangeName      = "change_name"
	ActionKeepTrump       = "keep_trump"
	ActionKnockIn         = "knock_in"
	ActionToggleDiscard   = "toggle_discard"
	ActionConfirmPlayAsIs = "confirm_play_as_is"
	ActionConfirmDiscard  = "confirm_discard_draw"
	ActionDealerGoSet     = "dealer_go_set"
	ActionPlayCard        = "play_card"
	ActionKick            = "kick"
	ActionLeave           = "leave"
)

// GameAction captures a player's intent. Payload keys depend on the type:
// "value" (bool) for toggles and decisions, "amount" for set_ante, "idx" for
// card indexes, "name" for change_name and "target" for kick.
type GameAction struct {
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload"`
}

// Bool reads a boolean payload field.
func (a GameAction) Bool(key string) (bool, bool) {
	v, ok := a.Payload[key].(bool)
	return v, ok
}

// Int reads an integer payload field. JSON numbers arrive as float64.
func (a GameAction) Int(key string) (int, bool) {
	switch v := a.Payload[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// String reads a string payload field.
func (a GameAction) String(key string) (string, bool) {
	v, ok := a.Payload[key].(string)
	return v, ok
}
