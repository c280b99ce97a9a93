package navigation

import (
	"errors"
	"testing"
)

func TestNavigator_Initial(t *testing.T) {
	n := New()
	if got := n.State(); got != (State{CurrentView: ViewDashboard, PanelOpen: false}) {
		t.Fatalf("unexpected initial state: %+v", got)
	}
}

func TestNavigator_Back(t *testing.T) {
	testCases := []struct {
		name   string
		start  State
		want   State
		result BackResult
	}{
		{
			name:   "route goes home",
			start:  State{CurrentView: ViewRoute},
			want:   State{CurrentView: ViewDashboard},
			result: BackToDashboard,
		},
		{
			name:   "dashboard asks to exit",
			start:  State{CurrentView: ViewDashboard},
			want:   State{CurrentView: ViewDashboard},
			result: BackExitConfirmation,
		},
		{
			name:   "open panel closes first",
			start:  State{CurrentView: ViewSchedule, PanelOpen: true},
			want:   State{CurrentView: ViewSchedule},
			result: BackClosedPanel,
		},
		{
			name:   "open panel on dashboard closes",
			start:  State{CurrentView: ViewDashboard, PanelOpen: true},
			want:   State{CurrentView: ViewDashboard},
			result: BackClosedPanel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := New()
			n.state = tc.start

			if got := n.Back(); got != tc.result {
				t.Errorf("expected %s, got %s", tc.result, got)
			}
			if got := n.State(); got != tc.want {
				t.Errorf("expected state %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestNavigator_PanelDoesNotChangeView(t *testing.T) {
	n := New()
	n.Select(ViewEarnings)

	n.OpenPanel()
	if got := n.State(); got.CurrentView != ViewEarnings || !got.PanelOpen {
		t.Fatalf("unexpected state after opening panel: %+v", got)
	}
	n.TogglePanel()
	if got := n.State(); got.CurrentView != ViewEarnings || got.PanelOpen {
		t.Fatalf("unexpected state after toggling panel: %+v", got)
	}
}

func TestNavigator_SelectClosesPanel(t *testing.T) {
	n := New()
	n.OpenPanel()

	if err := n.Select(ViewRatings); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := n.State(); got != (State{CurrentView: ViewRatings, PanelOpen: false}) {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestNavigator_SelectUnknown(t *testing.T) {
	n := New()
	n.OpenPanel()

	if err := n.Select("wallet"); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
	if got := n.State(); got != (State{CurrentView: ViewDashboard, PanelOpen: true}) {
		t.Errorf("expected state unchanged, got %+v", got)
	}
}

func TestNavigator_OnChange(t *testing.T) {
	n := New()
	var seen []State
	remove := n.OnChange(func(s State) { seen = append(seen, s) })

	n.Select(ViewRoute)
	n.Select(ViewRoute) // no change, no callback
	n.Back()
	remove()
	n.Select(ViewTrips)

	if len(seen) != 2 || seen[0].CurrentView != ViewRoute || seen[1].CurrentView != ViewDashboard {
		t.Errorf("unexpected notifications: %+v", seen)
	}
}
