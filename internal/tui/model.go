// Package tui provides the Bubble Tea training interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/logging"
	"github.com/verte-zerg/seqtrain/internal/model"
	"github.com/verte-zerg/seqtrain/internal/shell"
	statsPkg "github.com/verte-zerg/seqtrain/internal/stats"
	"github.com/verte-zerg/seqtrain/internal/store"
	"github.com/verte-zerg/seqtrain/internal/text"
	"github.com/verte-zerg/seqtrain/internal/trainer"
)

const (
	defaultTickRate = 60
	contentRatio    = 0.70
)

type tickMsg time.Time

// Model implements the Bubble Tea training UI.
type Model struct {
	config   model.Config
	store    *store.Store
	log      *slog.Logger
	session  *shell.Session
	printer  *trainer.Printer
	reserved input.Reserved
	interval time.Duration

	feedback    strings.Builder
	renderedLen int
	viewport    viewport.Model
	ready       bool

	width  int
	height int

	// keys typed since the last tick; a terminal reports no key-up, so each
	// reads as held for exactly one tick
	pending map[int]bool
	// keys fed as held on the previous tick
	held map[int]bool

	lastAcc float64
	lastGap float64
	hasLast bool

	allHits   int
	allMisses int
}

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	missStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	gapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a training TUI model. opener may be nil for keyboard
// only; st may be nil to skip persistence.
func NewModel(cfg model.Config, dt text.DisplayText, opener input.Opener, st *store.Store, log *slog.Logger) *Model {
	if log == nil {
		log = logging.Discard()
	}
	rate := cfg.TickRate
	if rate <= 0 {
		rate = defaultTickRate
	}
	m := &Model{
		config:   cfg,
		store:    st,
		log:      log,
		reserved: shell.Reserved(cfg.ConfirmKey, cfg.ResetKey),
		interval: time.Second / time.Duration(rate),
		pending:  map[int]bool{},
		held:     map[int]bool{},
		viewport: viewport.New(0, 0),
	}

	m.printer = trainer.NewPrinter(&m.feedback, dt, nil)
	save := shell.AttemptSaver(context.Background(), st, log)
	recorder := trainer.NewRecorder(nil, func(a trainer.Attempt) {
		save(a)
		m.recordAttempt(a.Stats)
	})
	tr := trainer.New(trainer.Options{
		Timeout:     cfg.TimeoutTicks,
		LatchDevice: cfg.LatchDevice,
	}, trainer.Sinks{m.printer, recorder})
	m.session = shell.NewSession(opener, m.reserved, tr, log)

	m.printer.Start(tr.Mode())
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil
	case tickMsg:
		m.step()
		return m, m.tickCmd()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		for _, key := range keysForMsg(msg) {
			m.pending[key] = true
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return renderFeedback(m.feedback.String(), 0)
	}
	footer := m.renderFooter()
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Top, m.viewport.View())
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

// Close releases the devices held by the session.
func (m *Model) Close() error {
	return m.session.Close()
}

// Err returns the first feedback write error.
func (m *Model) Err() error {
	return m.printer.Err()
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) step() {
	keys := make([]bool, input.KeyCount)
	var cmds trainer.Commands
	prev := m.held
	m.held = map[int]bool{}
	for key := range m.pending {
		if prev[key] {
			// held last tick; stays pending so the repeat reads as a new press
			continue
		}
		delete(m.pending, key)
		m.held[key] = true
		if key >= 0 && key < len(keys) {
			keys[key] = true
		}
		switch key {
		case m.reserved.Confirm:
			cmds.Confirm = true
		case m.reserved.Reset:
			cmds.Reset = true
		}
	}

	m.session.Step(keys, cmds)
	if m.feedback.Len() != m.renderedLen {
		m.refreshViewport()
	}
}

func (m *Model) resizeViewport() {
	if m.width == 0 || m.height < 3 {
		m.ready = false
		return
	}
	m.viewport.Width = max(int(float64(m.width)*contentRatio), 1)
	m.viewport.Height = m.height - 1
	m.ready = true
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.renderedLen = m.feedback.Len()
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderFeedback(m.feedback.String(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	attempts, err := m.store.ListAttempts(context.Background(), model.StatsConfig{})
	if err != nil {
		m.log.Error("failed to load attempt stats", "err", err)
		return
	}
	if len(attempts) == 0 {
		return
	}
	last := attempts[len(attempts)-1]
	m.lastAcc, m.lastGap = statsPkg.AttemptMetrics(last.Hits, last.Misses, last.GapTicks, last.Steps)
	m.hasLast = true
	for _, a := range attempts {
		m.allHits += a.Hits
		m.allMisses += a.Misses
	}
}

func (m *Model) recordAttempt(s model.AttemptStats) {
	steps := s.Hits + s.Misses
	m.lastAcc, m.lastGap = statsPkg.AttemptMetrics(s.Hits, s.Misses, s.GapTicks, steps)
	m.hasLast = true
	m.allHits += s.Hits
	m.allMisses += s.Misses
}

func (m *Model) renderFooter() string {
	tr := m.session.Trainer()
	segments := []string{fmt.Sprintf("Mode %s", tr.Mode())}
	if device, ok := tr.LatchedDevice(); ok {
		segments = append(segments, fmt.Sprintf("Joystick %d", device))
	}
	if n := len(tr.Sequence()); n > 0 {
		segments = append(segments, fmt.Sprintf("Sequence %d", n))
		if tr.Mode() == trainer.ModePracticing {
			segments = append(segments, fmt.Sprintf("Next %s", trainer.Label(tr.NextExpected())))
		}
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%% · %.1f ticks", m.lastAcc*100, m.lastGap))
	}
	if total := m.allHits + m.allMisses; total > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f%%", float64(m.allHits)/float64(total)*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// keysForMsg maps a terminal key message to the scancodes it stands for.
func keysForMsg(msg tea.KeyMsg) []int {
	switch msg.Type {
	case tea.KeyEnter:
		return []int{input.KeyReturn}
	case tea.KeyBackspace, tea.KeyDelete:
		return []int{input.KeyBackspace}
	case tea.KeyTab:
		return []int{input.KeyTab}
	case tea.KeySpace:
		return []int{input.KeySpace}
	case tea.KeyUp:
		return []int{input.KeyUp}
	case tea.KeyDown:
		return []int{input.KeyDown}
	case tea.KeyLeft:
		return []int{input.KeyLeft}
	case tea.KeyRight:
		return []int{input.KeyRight}
	case tea.KeyRunes:
		keys := make([]int, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			if key, ok := input.KeyForRune(r); ok {
				keys = append(keys, key)
			}
		}
		return keys
	default:
		return nil
	}
}
