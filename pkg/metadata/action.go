package metadata

import (
	"fmt"
	"strings"
)

// Action is a stock movement direction.
type Action string

const (
	ActionTake   Action = "take"
	ActionReturn Action = "return"
)

func NewAction(value string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(value)))
	switch action {
	case ActionTake, ActionReturn:
		return action, nil
	default:
		return "", fmt.Errorf("must be '%s' or '%s', got %q", ActionTake, ActionReturn, value)
	}
}

func (a Action) String() string {
	return string(a)
}
