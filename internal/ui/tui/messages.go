// Package tui provides a Bubble Tea terminal UI that watches the certificate
// and load balancer of a service become ready.
package tui

import "github.com/imamik/runway/internal/provisioning/status"

// PollMsg carries one status poll.
type PollMsg struct {
	Poll status.Poll
}

// TargetDoneMsg reports that waiting for one target finished.
type TargetDoneMsg struct {
	Type  status.ResourceType
	Ready bool
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that every target finished.
type DoneMsg struct{}
