package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/runway/internal/provisioning/status"
)

// Waiter is the part of the status inspector the watcher drives.
type Waiter interface {
	WaitForReady(ctx context.Context, kind status.ResourceType, name string, maxWait time.Duration) bool
}

// RunWatch shows m while the inspector polls each target in turn. It reports
// whether every target became ready.
func RunWatch(ctx context.Context, inspector *status.Inspector, m Model, opts ...tea.ProgramOption) (bool, error) {
	p := tea.NewProgram(m, opts...)

	inspector.OnPoll = func(poll status.Poll) { p.Send(PollMsg{Poll: poll}) }
	go watchTargets(ctx, inspector, m.Targets, m.MaxWait, p.Send)

	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	if fm.Err != nil {
		return false, fm.Err
	}
	return fm.AllReady(), nil
}

// watchTargets waits for each target and reports progress through send. The
// budget is shared across targets.
func watchTargets(ctx context.Context, w Waiter, targets []Target, maxWait time.Duration, send func(tea.Msg)) {
	deadline := time.Now().Add(maxWait)
	for _, t := range targets {
		remaining := max(time.Until(deadline), 0)
		ready := w.WaitForReady(ctx, t.Type, t.Name, remaining)
		send(TargetDoneMsg{Type: t.Type, Ready: ready})
		if err := ctx.Err(); err != nil {
			send(ErrMsg{Err: err})
			return
		}
	}
	send(DoneMsg{})
}
