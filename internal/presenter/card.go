package presenter

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

type CardState string

const (
	CardCollapsed CardState = "collapsed"
	CardExpanded  CardState = "expanded"
)

type CardEvent string

const (
	EventReveal   CardEvent = "reveal"
	EventMinimize CardEvent = "minimize"
)

// EventIgnored labels every event the state machine does not know.
const EventIgnored CardEvent = "ignored"

var ErrUnknownCard = errors.New("presenter: unknown card")

// Known maps an event to itself when it drives the state machine and to
// EventIgnored otherwise.
func (e CardEvent) Known() CardEvent {
	switch e {
	case EventReveal, EventMinimize:
		return e
	default:
		return EventIgnored
	}
}

// Transition is the card state machine. Only reveal on a collapsed card and
// minimize on an expanded card change state; every other event is a no-op.
func Transition(state CardState, event CardEvent) CardState {
	switch {
	case state == CardCollapsed && event == EventReveal:
		return CardExpanded
	case state == CardExpanded && event == EventMinimize:
		return CardCollapsed
	default:
		return state
	}
}

// CardStore keeps the state of every card, keyed by card id. Cards start
// collapsed.
type CardStore struct {
	mu     sync.Mutex
	states map[string]CardState
}

func NewCardStore(ids ...string) *CardStore {
	states := make(map[string]CardState, len(ids))
	for _, id := range ids {
		states[id] = CardCollapsed
	}
	return &CardStore{states: states}
}

func (s *CardStore) State(id string) (CardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	return state, nil
}

// Apply runs event against the card and returns the resulting state.
func (s *CardStore) Apply(id string, event CardEvent) (CardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	next := Transition(state, event)
	s.states[id] = next
	return next, nil
}

func (s *CardStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
