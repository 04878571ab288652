// Package turn assigns turn numbers to a session's ordered action log.
package turn

// Step is the part of an action the sequencer looks at
type Step struct {
	ID     int64
	Player string
	Type   string
}

// Classifier tells the sequencer which action types skip turn bookkeeping
type Classifier interface {
	IsSpecial(actionType string) bool
}

// Compute returns the turn number of every step, keyed by step ID.
//
// Steps must already be in log order. The turn advances when a primary
// action is performed by a different player than the last primary action.
// Special actions take the current turn and never change the last player.
func Compute(steps []Step, c Classifier) map[int64]int {
	turns := make(map[int64]int, len(steps))
	turn := 1
	lastPlayer := ""
	haveLast := false

	for _, s := range steps {
		special := c.IsSpecial(s.Type)
		if haveLast && s.Player != lastPlayer && !special {
			turn++
		}

		turns[s.ID] = turn

		if !special {
			lastPlayer = s.Player
			haveLast = true
		}
	}

	return turns
}

// NextPlayer returns the player who should act after current.
// When rotate is false, or fewer than two players are known, or current
// is not one of them, current is returned unchanged.
func NextPlayer(players []string, current string, rotate bool) string {
	if !rotate || len(players) < 2 {
		return current
	}
	for i, p := range players {
		if p == current {
			return players[(i+1)%len(players)]
		}
	}
	return current
}
