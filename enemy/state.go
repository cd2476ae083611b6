package enemy

import "fmt"

type State int

const (
	Idle State = iota
	Investigating
	Chasing
	Attacking
	Stunned
	Dead
)

var stateNames = [...]string{
	Idle:          "idle",
	Investigating: "investigating",
	Chasing:       "chasing",
	Attacking:     "attacking",
	Stunned:       "stunned",
	Dead:          "dead",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return Idle, fmt.Errorf("enemy: unknown state %q", name)
}
