package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-vocal/engine"
	"github.com/cwbudde/algo-vocal/internal/config"
)

// snapshotMsg delivers one engine snapshot to the UI loop.
type snapshotMsg engine.Snapshot

type model struct {
	cfg  config.Config
	tone *tonePlayer

	snap    engine.Snapshot
	have    bool
	toneOn  bool
	toneErr error
}

func newModel(cfg config.Config, tone *tonePlayer) model {
	return model{cfg: cfg, tone: tone}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = engine.Snapshot(msg)
		m.have = true
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.tone.Close()

			return m, tea.Quit
		case "r":
			m.toneOn, m.toneErr = m.tone.Toggle()
		}
	}

	return m, nil
}

// barWidth is odd so the in-tune mark sits on a single center cell.
const barWidth = 41

func (m model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n  vocaltuner   A4 = %.1f Hz\n\n", m.cfg.Tuner.ReferenceHz)

	if !m.have {
		b.WriteString("  listening...\n\n")
		b.WriteString(m.footer())

		return b.String()
	}

	if m.snap.Voiced {
		fmt.Fprintf(&b, "       %s%d   %+d cents\n\n", m.snap.Note, m.snap.Octave, m.snap.CentsOffset)
		fmt.Fprintf(&b, "  %s\n\n", centsBar(m.snap.CentsOffset, true))
	} else {
		b.WriteString("       --\n\n")
		fmt.Fprintf(&b, "  %s\n\n", centsBar(0, false))
	}

	fmt.Fprintf(&b, "  frequency   %8.2f Hz\n", m.snap.FrequencyHz)
	fmt.Fprintf(&b, "  smoothed    %8.2f Hz\n", m.snap.SmoothedFrequencyHz)
	fmt.Fprintf(&b, "  volume      %s %5.1f\n", meterBar(m.snap.Volume, 100, 20), m.snap.Volume)
	fmt.Fprintf(&b, "  confidence  %s %5.2f\n\n", meterBar(m.snap.Confidence, 1, 20), m.snap.Confidence)
	fmt.Fprintf(&b, "  %s\n\n", m.status())

	b.WriteString(m.footer())

	return b.String()
}

func (m model) status() string {
	inTune := m.snap.CentsOffset > -m.cfg.Analysis.ToleranceCents &&
		m.snap.CentsOffset < m.cfg.Analysis.ToleranceCents

	switch {
	case !m.snap.Voiced:
		return "no voice"
	case m.snap.Stable && inTune:
		return "stable, in tune"
	case m.snap.Stable:
		return "stable"
	default:
		return "unstable"
	}
}

func (m model) footer() string {
	toneState := "off"
	if m.toneOn {
		toneState = "on"
	}

	footer := fmt.Sprintf("  [r] reference tone: %s   [q] quit\n", toneState)
	if m.toneErr != nil {
		footer += fmt.Sprintf("  tone error: %v\n", m.toneErr)
	}

	return footer
}

// centsBar renders the -50..+50 cents scale with a center in-tune mark.
func centsBar(cents int, voiced bool) string {
	cells := make([]rune, barWidth)
	for i := range cells {
		cells[i] = '-'
	}
	cells[barWidth/2] = '|'

	if voiced {
		pos := (cents + 50) * (barWidth - 1) / 100
		if pos < 0 {
			pos = 0
		}
		if pos > barWidth-1 {
			pos = barWidth - 1
		}
		cells[pos] = '*'
	}

	return "-50 [" + string(cells) + "] +50"
}

// meterBar renders value on a 0..max scale as a fixed-width bar.
func meterBar(value, max float64, width int) string {
	filled := int(value / max * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
