package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/runway/internal/provisioning/status"
)

// Target is one resource being watched.
type Target struct {
	Type status.ResourceType
	Name string

	Value    string
	Detail   string
	Attempts int
	Elapsed  time.Duration
	LastErr  error

	Active   bool
	Finished bool
	Ready    bool
}

// Model is the Bubble Tea model of the status watcher.
type Model struct {
	Service string
	Domain  string
	MaxWait time.Duration

	Targets []Target

	StartTime    time.Time
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewWatchModel creates a model watching the certificate, then the load
// balancer of a service.
func NewWatchModel(service, domain, certificate, forwardingRule string, maxWait time.Duration) Model {
	return Model{
		Service:   service,
		Domain:    domain,
		MaxWait:   maxWait,
		StartTime: time.Now(),
		Targets: []Target{
			{Type: status.SSLCertificate, Name: certificate},
			{Type: status.LoadBalancer, Name: forwardingRule},
		},
	}
}

// AllReady reports whether every target became ready.
func (m Model) AllReady() bool {
	for _, t := range m.Targets {
		if !t.Ready {
			return false
		}
	}
	return len(m.Targets) > 0
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case PollMsg:
		m.applyPoll(msg.Poll)

	case TargetDoneMsg:
		if t := m.target(msg.Type); t != nil {
			t.Active = false
			t.Finished = true
			t.Ready = msg.Ready
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyPoll(p status.Poll) {
	t := m.target(p.Status.Type)
	if t == nil {
		return
	}
	t.Active = true
	t.Attempts = p.Attempt
	t.Elapsed = p.Elapsed
	t.LastErr = p.Err
	if p.Err == nil {
		t.Value = p.Status.Value
		t.Detail = p.Status.Detail
		t.Ready = p.Status.Ready
	}
}

func (m *Model) target(kind status.ResourceType) *Target {
	for i := range m.Targets {
		if m.Targets[i].Type == kind {
			return &m.Targets[i]
		}
	}
	return nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
