package records

import (
	"fmt"
	"strings"
)

// Action is one of the single-row operations a record supports.
type Action int

const (
	Store Action = iota
	Insert
	Update
	Merge
	Delete
)

var actionNames = [...]string{
	Store:  "STORE",
	Insert: "INSERT",
	Update: "UPDATE",
	Merge:  "MERGE",
	Delete: "DELETE",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Actions returns every action in declaration order.
func Actions() []Action {
	return []Action{Store, Insert, Update, Merge, Delete}
}

// ParseAction maps a case-insensitive action name to its Action.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if strings.EqualFold(s, name) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("records: unknown action %q", s)
}
