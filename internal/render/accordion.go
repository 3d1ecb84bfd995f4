package render

import "sync"

// State is the display state of one detail row.
type State int

const (
	Collapsed State = iota
	Expanding
	Expanded
	Collapsing
)

func (s State) String() string {
	switch s {
	case Expanding:
		return "expanding"
	case Expanded:
		return "expanded"
	case Collapsing:
		return "collapsing"
	default:
		return "collapsed"
	}
}

// Accordion tracks detail rows so that at most one is open at a time.
// Rows are identified by key, usually the résumé filename.
type Accordion struct {
	mu     sync.Mutex
	states map[string]State
}

func NewAccordion() *Accordion {
	return &Accordion{states: make(map[string]State)}
}

// Toggle starts opening a closed row or closing an open one. Opening a row
// collapses any other open row at once, without a transition.
func (a *Accordion) Toggle(key string) State {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.states == nil {
		a.states = make(map[string]State)
	}

	switch a.states[key] {
	case Expanding, Expanded:
		a.states[key] = Collapsing
	default:
		for other, state := range a.states {
			if other != key && state != Collapsed {
				a.states[other] = Collapsed
			}
		}
		a.states[key] = Expanding
	}

	return a.states[key]
}

// Settle finishes a running transition of the row.
func (a *Accordion) Settle(key string) State {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.states[key] {
	case Expanding:
		a.states[key] = Expanded
	case Collapsing:
		a.states[key] = Collapsed
	}

	return a.states[key]
}

func (a *Accordion) State(key string) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.states[key]
}

// Open returns the row that is expanded or expanding.
func (a *Accordion) Open() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, state := range a.states {
		if state == Expanding || state == Expanded {
			return key, true
		}
	}
	return "", false
}

// Reset collapses every row.
func (a *Accordion) Reset() {
	a.mu.Lock()
	a.states = make(map[string]State)
	a.mu.Unlock()
}
