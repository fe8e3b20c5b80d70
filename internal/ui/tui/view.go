package tui

import (
	"fmt"
	"strings"
	"time"
)

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderTargets(&b, m)
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := fmt.Sprintf("runway: %s", m.Service)
	if m.Domain != "" {
		title += fmt.Sprintf(" (%s)", m.Domain)
	}
	b.WriteString(headerStyle.Render(title))

	state := " "
	switch {
	case m.Err != nil:
		state += looks[stateTimedOut].style.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.AllReady():
		state += looks[stateReady].style.Render("Ready")
	case m.Done:
		state += looks[stateRetrying].style.Render("Not ready")
	default:
		state += looks[statePolling].style.Render(currentSpinner(m.SpinnerFrame)+" ") + mutedStyle.Render("Waiting...")
	}
	b.WriteString(state)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := calculateProgress(m)
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	bar := barFilled.Render(strings.Repeat("━", filled)) +
		barEmpty.Render(strings.Repeat("─", barWidth-filled))

	fmt.Fprintf(b, "  %s %d%%\n", bar, int(progress*100))
}

func renderTargets(b *strings.Builder, m Model) {
	b.WriteString(headingStyle.Render("  Resources"))
	b.WriteString("\n")

	for _, t := range m.Targets {
		l := looks[stateOf(t)]
		icon := l.mark
		if icon == "" {
			icon = currentSpinner(m.SpinnerFrame)
		}
		value := t.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(b, "    %s %-16s %-24s %s\n", l.style.Render(icon), t.Type, t.Name, l.style.Render(value))

		switch {
		case t.LastErr != nil:
			fmt.Fprintf(b, "         %s\n", looks[stateRetrying].style.Render(t.LastErr.Error()))
		case t.Detail != "":
			fmt.Fprintf(b, "         %s\n", mutedStyle.Render(t.Detail))
		}
		if t.Attempts > 0 {
			fmt.Fprintf(b, "         %s\n", mutedStyle.Render(fmt.Sprintf("poll %d, %s", t.Attempts, formatDuration(t.Elapsed))))
		}
	}
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{fmt.Sprintf("elapsed: %s", formatDuration(time.Since(m.StartTime)))}
	if m.MaxWait > 0 {
		parts = append(parts, fmt.Sprintf("timeout: %s", formatDuration(m.MaxWait)))
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

func stateOf(t Target) targetState {
	switch {
	case t.Ready:
		return stateReady
	case t.Finished:
		return stateTimedOut
	case t.LastErr != nil:
		return stateRetrying
	case t.Active:
		return statePolling
	default:
		return stateQueued
	}
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

// calculateProgress is the share of ready targets.
func calculateProgress(m Model) float64 {
	if len(m.Targets) == 0 {
		return 0
	}
	ready := 0
	for _, t := range m.Targets {
		if t.Ready {
			ready++
		}
	}
	return float64(ready) / float64(len(m.Targets))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
