package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"fleetsync-backend/internal/auth"
	"fleetsync-backend/internal/location"
	"fleetsync-backend/internal/navigation"
)

const helpText = `commands:
  menu | close | toggle     open, close or toggle the side panel
  go <view>                 switch view (dashboard, route, trips, passengers,
                            schedule, earnings, ratings, emergency, profile, settings)
  back                      hardware back
  status                    session, pusher and view state
  signout                   end the session
  quit                      exit`

// console drives the navigation state machine from line commands.
type console struct {
	nav     *navigation.Navigator
	manager *auth.Manager
	pusher  *location.Pusher
	out     io.Writer
}

func newConsole(nav *navigation.Navigator, manager *auth.Manager, pusher *location.Pusher) *console {
	return &console{nav: nav, manager: manager, pusher: pusher, out: log.Writer()}
}

// Run reads commands until quit, EOF, an exit-confirmed back or ctx ends.
func (c *console) Run(ctx context.Context, in io.Reader) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(c.out, helpText)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if c.Exec(ctx, line) {
				return
			}
		}
	}
}

// Exec runs one command and reports whether the agent should exit.
func (c *console) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "menu":
		c.nav.OpenPanel()
	case "close":
		c.nav.ClosePanel()
	case "toggle":
		c.nav.TogglePanel()
	case "go":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: go <view>")
			return false
		}
		if err := c.nav.Select(navigation.View(fields[1])); err != nil {
			fmt.Fprintf(c.out, "%v: %s\n", err, fields[1])
		}
	case "back":
		result := c.nav.Back()
		fmt.Fprintln(c.out, "back:", result)
		if result == navigation.BackExitConfirmation {
			return true
		}
	case "status":
		who := "signed out"
		if id := c.manager.Current(); id != nil {
			who = id.Email
		}
		s := c.nav.State()
		fmt.Fprintf(c.out, "session: %s | pusher: %s | view: %s (panel open: %v)\n", who, c.pusher.State(), s.CurrentView, s.PanelOpen)
	case "signout":
		if err := c.manager.SignOut(ctx); err != nil {
			fmt.Fprintf(c.out, "sign out failed: %v\n", err)
		}
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(c.out, helpText)
	default:
		fmt.Fprintf(c.out, "unknown command %q (try help)\n", fields[0])
	}
	return false
}
