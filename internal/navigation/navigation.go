// Package navigation holds the single-active-view state of the driver app:
// which screen is shown and whether the side panel covers it.
package navigation

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownView = errors.New("unknown view")

type View string

const (
	ViewDashboard  View = "dashboard"
	ViewRoute      View = "route"
	ViewTrips      View = "trips"
	ViewPassengers View = "passengers"
	ViewSchedule   View = "schedule"
	ViewEarnings   View = "earnings"
	ViewRatings    View = "ratings"
	ViewEmergency  View = "emergency"
	ViewProfile    View = "profile"
	ViewSettings   View = "settings"
)

// Views lists every screen in side-panel order.
var Views = []View{
	ViewDashboard,
	ViewRoute,
	ViewTrips,
	ViewPassengers,
	ViewSchedule,
	ViewEarnings,
	ViewRatings,
	ViewEmergency,
	ViewProfile,
	ViewSettings,
}

func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

// State is the whole navigation state. There is no history stack.
type State struct {
	CurrentView View `json:"currentView"`
	PanelOpen   bool `json:"panelOpen"`
}

// BackResult says what a back press did.
type BackResult int

const (
	BackClosedPanel BackResult = iota
	BackToDashboard
	// BackExitConfirmation means the app is on the dashboard with the panel
	// closed; the caller must confirm before exiting. State is unchanged.
	BackExitConfirmation
)

func (r BackResult) String() string {
	switch r {
	case BackClosedPanel:
		return "closed_panel"
	case BackToDashboard:
		return "to_dashboard"
	case BackExitConfirmation:
		return "exit_confirmation"
	}
	return fmt.Sprintf("BackResult(%d)", int(r))
}

type Navigator struct {
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

func New() *Navigator {
	return &Navigator{
		state:     State{CurrentView: ViewDashboard},
		listeners: make(map[int]func(State)),
	}
}

func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Select shows view and closes the panel.
func (n *Navigator) Select(view View) error {
	if !view.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	n.update(func(s *State) {
		s.CurrentView = view
		s.PanelOpen = false
	})
	return nil
}

func (n *Navigator) OpenPanel()  { n.update(func(s *State) { s.PanelOpen = true }) }
func (n *Navigator) ClosePanel() { n.update(func(s *State) { s.PanelOpen = false }) }

func (n *Navigator) TogglePanel() {
	n.update(func(s *State) { s.PanelOpen = !s.PanelOpen })
}

// Back handles the hardware back button.
func (n *Navigator) Back() BackResult {
	var result BackResult
	n.update(func(s *State) {
		switch {
		case s.PanelOpen:
			s.PanelOpen = false
			result = BackClosedPanel
		case s.CurrentView != ViewDashboard:
			s.CurrentView = ViewDashboard
			result = BackToDashboard
		default:
			result = BackExitConfirmation
		}
	})
	return result
}

// OnChange registers fn to receive every new state. It returns a function
// that removes the listener.
func (n *Navigator) OnChange(fn func(State)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *Navigator) update(mutate func(*State)) {
	n.mu.Lock()
	before := n.state
	mutate(&n.state)
	after := n.state
	listeners := make([]func(State), 0, len(n.listeners))
	for _, fn := range n.listeners {
		listeners = append(listeners, fn)
	}
	n.mu.Unlock()

	if before == after {
		return
	}
	for _, fn := range listeners {
		fn(after)
	}
}
