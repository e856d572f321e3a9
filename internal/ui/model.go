// SPDX-License-Identifier: EPL-2.0

// Package ui is the terminal front end of the voxmix command.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ik5/voxmix/engine"
)

const (
	refreshInterval = 100 * time.Millisecond
	volumeStep      = 0.05
	speedStep       = 0.1
	minSpeed        = 0.1
	maxSpeed        = 4
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type tickMsg time.Time

// Model shows the engine's voices and maps keys onto voice controls.
type Model struct {
	eng *engine.Engine

	voices    []engine.VoiceInfo
	selected  int
	master    float32
	renders   uint64
	avgRender time.Duration
	running   bool
	status    string

	durations []time.Duration
	width     int
}

func NewModel(eng *engine.Engine) Model {
	m := Model{
		eng:       eng,
		durations: make([]time.Duration, 64),
	}
	m.refresh()

	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

// refresh pulls a fresh snapshot from the engine.
func (m *Model) refresh() {
	m.voices = m.eng.Voices()
	m.selected = min(m.selected, max(len(m.voices)-1, 0))
	m.master = m.eng.MasterVolume()
	m.renders = m.eng.RenderCount()
	m.running = m.eng.IsStreamRunning()

	n := m.eng.RecentRenderDurations(m.durations)
	var total time.Duration
	for _, d := range m.durations[:n] {
		total += d
	}
	m.avgRender = 0
	if n > 0 {
		m.avgRender = total / time.Duration(n)
	}
}

func (m Model) current() (engine.Voice, bool) {
	if m.selected >= len(m.voices) {
		return engine.Voice{}, false
	}
	return m.eng.Voice(m.voices[m.selected].Handle), true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.selected = max(m.selected-1, 0)
		return m, nil
	case "down", "j":
		m.selected = min(m.selected+1, max(len(m.voices)-1, 0))
		return m, nil
	case "+", "=":
		m.eng.SetMasterVolume(m.eng.MasterVolume() + volumeStep)
	case "-", "_":
		m.eng.SetMasterVolume(m.eng.MasterVolume() - volumeStep)
	}

	if v, ok := m.current(); ok {
		m.status = ""
		if err := m.voiceKey(v, key); err != nil {
			m.status = err.Error()
		}
	}

	m.refresh()

	return m, nil
}

func (m Model) voiceKey(v engine.Voice, key string) error {
	switch key {
	case " ", "p":
		return v.SetIsPlaying(!v.IsPlaying())
	case "l":
		return v.SetIsLooping(!v.IsLooping())
	case "r":
		return v.SetPosition(0)
	case "]":
		return v.SetPlaybackSpeed(stepSpeed(v.PlaybackSpeed(), speedStep))
	case "[":
		return v.SetPlaybackSpeed(stepSpeed(v.PlaybackSpeed(), -speedStep))
	case "0":
		return v.SetPlaybackSpeed(1)
	case "o":
		_, err := m.eng.PlayOneShotSound(v.Source(), "one-shot", v.Volume())
		return err
	}

	return nil
}

// stepSpeed moves speed by delta, rounded to one decimal so repeated steps
// land back on exactly 1.
func stepSpeed(speed, delta float64) float64 {
	s := math.Round((speed+delta)*10) / 10
	return min(max(s, minSpeed), maxSpeed)
}

func (m Model) View() string {
	var b strings.Builder

	state := "stopped"
	if m.running {
		state = m.eng.ShareMode().String()
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("voxmix  %d Hz  stream: %s", m.eng.OutputSampleRate(), state)))
	b.WriteString("\n\n")

	if len(m.voices) == 0 {
		b.WriteString(dimStyle.Render("  no voices"))
		b.WriteString("\n")
	}

	for i, v := range m.voices {
		line := m.renderVoice(v)
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n master [%s] %3.0f%%   renders %d   avg %v\n",
		renderBar(float64(m.master), 20), m.master*100, m.renders, m.avgRender.Round(time.Microsecond))

	if m.status != "" {
		b.WriteString(errorStyle.Render(" " + m.status))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(" space:play/pause  ↑/↓:select  +/-:master  [/]:speed  0:speed 1  l:loop  r:rewind  o:one-shot  q:quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderVoice(v engine.VoiceInfo) string {
	icon := "‖"
	if v.Playing {
		icon = "▶"
	}

	loop := ""
	if v.Looping {
		loop = " loop"
	}

	total := m.eng.Voice(v.Handle).SourceDuration()

	return fmt.Sprintf(" %s %-24s %s / %s  vol %.2f  x%.2f%s",
		icon, truncate(v.Name, 24), clock(v.Position), clock(total.Seconds()), v.Volume, v.Speed, loop)
}

func renderBar(value float64, width int) string {
	filled := int(math.Round(min(max(value, 0), 1) * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func clock(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return fmt.Sprintf("%02d:%04.1f", int(d.Minutes()), math.Mod(d.Seconds(), 60))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
