package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseRulesUpdate(t *testing.T) {
	rules := DefaultHouseRules()
	err := rules.Update(map[string]interface{}{
		"defaultAnte":          float64(9),
		"inactivityTimeoutSec": float64(45),
		"unknownKey":           "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, rules.DefaultAnte)
	assert.Equal(t, 45, rules.InactivityTimeoutSec)
	assert.Equal(t, 100, rules.StartingMoney)
}

func TestHouseRulesUpdateRejects(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"ante not an option": {"defaultAnte": float64(4)},
		"out of range":       {"inactivityTimeoutSec": float64(0)},
		"wrong type":         {"startingMoney": "lots"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			rules := DefaultHouseRules()
			assert.Error(t, rules.Update(in))
		})
	}
}

func TestParseRulesLeavesCurrentAlone(t *testing.T) {
	cur := DefaultHouseRules()
	next, err := ParseRules(map[string]interface{}{"startingMoney": float64(250)}, cur)
	require.NoError(t, err)
	assert.Equal(t, 250, next.StartingMoney)
	assert.Equal(t, 100, cur.StartingMoney)
	next.AnteOptions[0] = 99
	assert.Equal(t, 3, cur.AnteOptions[0])
}
