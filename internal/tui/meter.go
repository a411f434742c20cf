// SPDX-License-Identifier: MIT

// Package tui renders the interactive tuning meter in the terminal.
// It polls the session's latest published reading on a timer and never
// touches pipeline state directly, except for target note selection.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tuner/internal/audio"
	"tuner/internal/tuner"
)

// refreshInterval paces the meter redraw. The pipeline produces a
// reading every hop (~23ms at defaults), so ~30Hz keeps up.
const refreshInterval = 33 * time.Millisecond

// meterSpanCents is the half-range of the needle display. Readings
// beyond it pin to the edge.
const meterSpanCents = 50.0

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	inTuneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065")).Bold(true)
	closeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4A017")).Bold(true)
	offStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#D04545")).Bold(true)
	noSignalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
)

type keyMap struct {
	PrevNote key.Binding
	NextNote key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevNote: key.NewBinding(key.WithKeys("left", "h")),
		NextNote: key.NewBinding(key.WithKeys("right", "l")),
		Reset:    key.NewBinding(key.WithKeys("r")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	}
}

type tickMsg time.Time

// MeterModel is the Bubble Tea model for the tuning meter.
type MeterModel struct {
	session *tuner.Session
	meter   *audio.Meter
	keys    keyMap

	noteIndex int
	reading   tuner.Reading
	have      bool
	width     int
}

// NewMeterModel builds the meter bound to a running session. The
// session's target, if set, seeds the note selection.
func NewMeterModel(session *tuner.Session, meter *audio.Meter) MeterModel {
	m := MeterModel{
		session: session,
		meter:   meter,
		keys:    defaultKeyMap(),
		width:   80,
	}

	notes := tuner.Notes()
	if target, set := session.Target(); set {
		for i, n := range notes {
			if n == target {
				m.noteIndex = i
				break
			}
		}
	} else {
		session.SetTarget(notes[0])
	}
	return m
}

func (m MeterModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m MeterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		if r, ok := m.session.Latest(); ok {
			m.reading = r
			m.have = true
		}
		return m, tick()

	case tea.KeyMsg:
		notes := tuner.Notes()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.PrevNote):
			if m.noteIndex > 0 {
				m.noteIndex--
				m.session.SetTarget(notes[m.noteIndex])
			}

		case key.Matches(msg, m.keys.NextNote):
			if m.noteIndex < len(notes)-1 {
				m.noteIndex++
				m.session.SetTarget(notes[m.noteIndex])
			}

		case key.Matches(msg, m.keys.Reset):
			m.session.Reset()
			m.have = false

		default:
			// Digits select a string directly.
			if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '6' {
				m.noteIndex = int(s[0] - '1')
				m.session.SetTarget(notes[m.noteIndex])
			}
		}
	}

	return m, nil
}

func (m MeterModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Guitar Tuner"))
	sb.WriteString("\n\n")
	sb.WriteString(m.renderNoteRow())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderNeedle())
	sb.WriteString("\n")
	sb.WriteString(m.renderReadout())
	sb.WriteString("\n")
	sb.WriteString(m.renderLevel())
	sb.WriteString("\n\n")
	sb.WriteString(infoStyle.Render("←/→ or 1-6: String • r: Reset • q: Quit"))
	sb.WriteString("\n")

	return sb.String()
}

// renderNoteRow shows all six strings with the target highlighted.
func (m MeterModel) renderNoteRow() string {
	var parts []string
	for i, n := range tuner.Notes() {
		label := fmt.Sprintf("%d:%s", i+1, n)
		if i == m.noteIndex {
			label = noteStyle.Render("[" + label + "]")
		} else {
			label = " " + label + " "
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}

// renderNeedle draws the cents scale with a needle at the smoothed
// deviation. The center tick marks zero.
func (m MeterModel) renderNeedle() string {
	const cells = 41 // odd, so zero sits on a cell
	center := cells / 2

	pos := center
	if m.have && m.reading.Status != tuner.StatusNoSignal {
		offset := m.reading.Cents / meterSpanCents * float64(center)
		if offset > float64(center) {
			offset = float64(center)
		}
		if offset < -float64(center) {
			offset = -float64(center)
		}
		pos = center + int(offset+0.5*sign(offset))
	}

	var sb strings.Builder
	sb.WriteString("  ♭ ")
	for i := range cells {
		switch {
		case m.have && m.reading.Status != tuner.StatusNoSignal && i == pos:
			sb.WriteString(m.statusStyle().Render("█"))
		case i == center:
			sb.WriteString("┼")
		default:
			sb.WriteString("─")
		}
	}
	sb.WriteString(" ♯")
	return sb.String()
}

func (m MeterModel) renderReadout() string {
	notes := tuner.Notes()
	target := notes[m.noteIndex]

	if !m.have || m.reading.Status == tuner.StatusNoSignal {
		return fmt.Sprintf("  %s (%.2f Hz)  %s",
			target, target.Frequency(), noSignalStyle.Render("no signal"))
	}

	return fmt.Sprintf("  %s (%.2f Hz)  %+.1f cents at %.2f Hz  %s",
		target, target.Frequency(), m.reading.Cents, m.reading.Freq,
		m.statusStyle().Render(m.reading.Status.String()))
}

// renderLevel draws the input peak level bar.
func (m MeterModel) renderLevel() string {
	const cells = 30
	level := float64(m.meter.Peak())
	filled := int(level * cells)
	if filled > cells {
		filled = cells
	}
	return "  level " + strings.Repeat("▮", filled) + strings.Repeat("·", cells-filled)
}

func (m MeterModel) statusStyle() lipgloss.Style {
	switch m.reading.Status {
	case tuner.StatusInTune:
		return inTuneStyle
	case tuner.StatusClose:
		return closeStyle
	case tuner.StatusSharp, tuner.StatusFlat:
		return offStyle
	default:
		return noSignalStyle
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// StartMeterUI runs the meter until the user quits.
func StartMeterUI(session *tuner.Session, meter *audio.Meter) error {
	p := tea.NewProgram(
		NewMeterModel(session, meter),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
