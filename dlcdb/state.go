// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dlcdb

import (
	"fmt"
	"strings"
)

// State is the negotiation state of a contract.
type State uint8

// The negotiation states.  A contract is Offered when first stored, and
// ends Executed or Refunded.
const (
	StateOffered State = iota + 1
	StateAccepted
	StateSigned
	StateFinalized
	StateExecuted
	StateRefunded
)

var stateStrings = map[State]string{
	StateOffered:   "Offered",
	StateAccepted:  "Accepted",
	StateSigned:    "Signed",
	StateFinalized: "Finalized",
	StateExecuted:  "Executed",
	StateRefunded:  "Refunded",
}

// String returns the state name.
func (s State) String() string {
	if str, ok := stateStrings[s]; ok {
		return str
	}
	return fmt.Sprintf("Unknown State (%d)", uint8(s))
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	_, ok := stateStrings[s]
	return ok
}

// IsFinal reports whether no transition leaves s.
func (s State) IsFinal() bool {
	return s == StateExecuted || s == StateRefunded
}

// CanTransition reports whether a contract in state s may move to next.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateOffered:
		return next == StateAccepted
	case StateAccepted:
		return next == StateSigned
	case StateSigned:
		return next == StateFinalized
	case StateFinalized:
		return next == StateExecuted || next == StateRefunded
	default:
		return false
	}
}

// ParseState returns the state with the given name, ignoring case.
func ParseState(name string) (State, error) {
	for s, str := range stateStrings {
		if strings.EqualFold(str, name) {
			return s, nil
		}
	}
	return 0, storeError(ErrUnknownState, fmt.Sprintf("unknown state %q",
		name), nil)
}
