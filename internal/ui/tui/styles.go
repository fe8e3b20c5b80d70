package tui

import "github.com/charmbracelet/lipgloss"

// targetState is how a watched resource is drawn.
type targetState int

const (
	stateQueued targetState = iota
	statePolling
	stateRetrying
	stateReady
	stateTimedOut
)

// Palette. Adaptive so the watch view stays legible on light terminals.
var (
	runwaySky   = lipgloss.AdaptiveColor{Light: "#0369a1", Dark: "#7dd3fc"}
	runwayTeal  = lipgloss.AdaptiveColor{Light: "#0f766e", Dark: "#2dd4bf"}
	runwayAmber = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"}
	runwayCoral = lipgloss.AdaptiveColor{Light: "#be123c", Dark: "#fb7185"}
	runwayMuted = lipgloss.AdaptiveColor{Light: "#57534e", Dark: "#a8a29e"}
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(runwaySky)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(runwayMuted).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(runwayMuted)
	footerStyle  = mutedStyle.MarginTop(1)

	barFilled = lipgloss.NewStyle().Foreground(runwayTeal)
	barEmpty  = mutedStyle
)

type look struct {
	mark  string
	style lipgloss.Style
}

// looks holds the mark and colour per state. Polling targets draw a
// spinner frame instead of a mark.
var looks = map[targetState]look{
	stateQueued:   {mark: "·", style: mutedStyle},
	statePolling:  {style: lipgloss.NewStyle().Bold(true).Foreground(runwaySky)},
	stateRetrying: {mark: "!", style: lipgloss.NewStyle().Foreground(runwayAmber)},
	stateReady:    {mark: "✔", style: lipgloss.NewStyle().Foreground(runwayTeal)},
	stateTimedOut: {mark: "✘", style: lipgloss.NewStyle().Bold(true).Foreground(runwayCoral)},
}

var spinnerFrames = []string{"◜", "◝", "◞", "◟"}
