package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/runway/internal/provisioning/status"
)

func newModel() Model {
	return NewWatchModel("web", "app.example.com", "web-ssl-cert", "web-https-rule", 15*time.Minute)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{3600 * time.Second, "1h0m"},
		{3661 * time.Second, "1h1m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d), "formatDuration(%v)", tt.d)
	}
}

func TestCalculateProgress(t *testing.T) {
	m := newModel()
	assert.Zero(t, calculateProgress(m))

	m.Targets[0].Ready = true
	assert.InDelta(t, 0.5, calculateProgress(m), 0.001)

	m.Targets[1].Ready = true
	assert.InDelta(t, 1.0, calculateProgress(m), 0.001)
	assert.True(t, m.AllReady())

	assert.Zero(t, calculateProgress(Model{}))
	assert.False(t, Model{}.AllReady())
}

func TestModelUpdate_Poll(t *testing.T) {
	m := newModel()

	next, _ := m.Update(PollMsg{Poll: status.Poll{
		Attempt: 3,
		Elapsed: time.Minute,
		Status:  status.Status{Type: status.SSLCertificate, Name: "web-ssl-cert", Value: "PROVISIONING", Detail: "app.example.com=PROVISIONING"},
	}})
	m = next.(Model)

	cert := m.Targets[0]
	assert.True(t, cert.Active)
	assert.Equal(t, 3, cert.Attempts)
	assert.Equal(t, "PROVISIONING", cert.Value)
	assert.False(t, cert.Ready)

	next, _ = m.Update(PollMsg{Poll: status.Poll{
		Attempt: 4,
		Status:  status.Status{Type: status.SSLCertificate},
		Err:     errors.New("HTTPError 503"),
	}})
	m = next.(Model)
	assert.Equal(t, "PROVISIONING", m.Targets[0].Value, "an error keeps the last known value")
	assert.Error(t, m.Targets[0].LastErr)
}

func TestModelUpdate_TargetDoneAndQuit(t *testing.T) {
	m := newModel()

	next, _ := m.Update(TargetDoneMsg{Type: status.LoadBalancer, Ready: true})
	m = next.(Model)
	assert.True(t, m.Targets[1].Finished)
	assert.True(t, m.Targets[1].Ready)

	next, cmd := m.Update(DoneMsg{})
	m = next.(Model)
	assert.True(t, m.Done)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	next, _ = m.Update(ErrMsg{Err: context.Canceled})
	assert.ErrorIs(t, next.(Model).Err, context.Canceled)
}

func TestRenderView(t *testing.T) {
	m := newModel()
	m.Targets[0].Ready = true
	m.Targets[0].Value = "ACTIVE"
	m.Targets[1].Finished = true
	m.Targets[1].Value = "PENDING"
	m.Done = true

	out := renderView(m)

	assert.Contains(t, out, "runway: web (app.example.com)")
	assert.Contains(t, out, "Not ready")
	assert.Contains(t, out, "web-ssl-cert")
	assert.Contains(t, out, "web-https-rule")
	assert.Contains(t, out, "50%")
	assert.True(t, strings.Contains(out, looks[stateReady].mark) && strings.Contains(out, looks[stateTimedOut].mark))
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   targetState
	}{
		{name: "untouched", target: Target{}, want: stateQueued},
		{name: "polling", target: Target{Active: true}, want: statePolling},
		{name: "poll error", target: Target{Active: true, LastErr: errors.New("503")}, want: stateRetrying},
		{name: "ready wins", target: Target{Ready: true, Finished: true, LastErr: errors.New("503")}, want: stateReady},
		{name: "gave up", target: Target{Finished: true}, want: stateTimedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stateOf(tt.target))
			if tt.want != statePolling {
				assert.NotEmpty(t, looks[tt.want].mark)
			}
		})
	}
}

type stubWaiter struct {
	ready   map[status.ResourceType]bool
	budgets []time.Duration
}

func (s *stubWaiter) WaitForReady(_ context.Context, kind status.ResourceType, _ string, maxWait time.Duration) bool {
	s.budgets = append(s.budgets, maxWait)
	return s.ready[kind]
}

func TestWatchTargets(t *testing.T) {
	w := &stubWaiter{ready: map[status.ResourceType]bool{status.SSLCertificate: true}}
	var msgs []tea.Msg

	watchTargets(context.Background(), w, newModel().Targets, time.Minute, func(msg tea.Msg) { msgs = append(msgs, msg) })

	require.Len(t, msgs, 3)
	assert.Equal(t, TargetDoneMsg{Type: status.SSLCertificate, Ready: true}, msgs[0])
	assert.Equal(t, TargetDoneMsg{Type: status.LoadBalancer, Ready: false}, msgs[1])
	assert.Equal(t, DoneMsg{}, msgs[2])
	require.Len(t, w.budgets, 2)
	assert.LessOrEqual(t, w.budgets[1], w.budgets[0], "the budget is shared")
}

func TestWatchTargets_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var msgs []tea.Msg

	watchTargets(ctx, &stubWaiter{}, newModel().Targets, time.Minute, func(msg tea.Msg) { msgs = append(msgs, msg) })

	require.Len(t, msgs, 2)
	assert.IsType(t, ErrMsg{}, msgs[1])
}
