package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"murmur/session"
	"murmur/store"
)

// TUI message types
type SnapshotMsg session.Snapshot
type StatusMsg struct{ Text string }
type PromptsMsg struct{ Prompts []store.Prompt }
type tickMsg time.Time

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	styleTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	styleMode     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleRec      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleEdit     = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	styleDraft    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	stylePartial  = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	stylePrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	styleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleHelpBold = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

var recFrames = []string{"●", "●", "●", "○"}

type tuiModel struct {
	app *App

	snap          session.Snapshot
	editBuf       string
	prompts       []store.Prompt
	status        string
	modeLine      string
	frame         int
	width, height int
}

// newTUIModel builds the initial model. The mode line is baked in here
// rather than sent as a message: Program.Send blocks until Run's event loop
// is receiving, so nothing may be sent before Run is underway.
func newTUIModel(app *App, modeLine string) tuiModel {
	return tuiModel{
		app:      app,
		modeLine: modeLine,
		snap:     session.Snapshot{State: session.StateIdle},
	}
}

func NewTUIProgram(app *App, modeLine string) *tea.Program {
	return tea.NewProgram(newTUIModel(app, modeLine), tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case SnapshotMsg:
		snap := session.Snapshot(msg)
		if snap.State == session.StateEditing && m.snap.State != session.StateEditing {
			m.editBuf = snap.Draft
		}
		if snap.Status != "" {
			m.status = snap.Status
		} else if snap.State == session.StateRecording && m.snap.State != session.StateRecording {
			// A fresh recording starts with a clean status line.
			m.status = ""
		}
		m.snap = snap

	case StatusMsg:
		m.status = msg.Text

	case PromptsMsg:
		m.prompts = msg.Prompts
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.snap.State == session.StateEditing {
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			buf := m.editBuf
			go m.app.EndEdit(buf)
		case tea.KeyEnter:
			m.editBuf += "\n"
		case tea.KeySpace:
			m.editBuf += " "
		case tea.KeyBackspace:
			if len(m.editBuf) > 0 {
				runes := []rune(m.editBuf)
				m.editBuf = string(runes[:len(runes)-1])
			}
		case tea.KeyRunes:
			m.editBuf += string(msg.Runes)
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		// Toggle: the session core exposes explicit start/stop, the key
		// inspects current state.
		if m.snap.State == session.StateRecording {
			go m.app.StopRecording()
		} else {
			go m.app.StartRecording()
		}
	case "e":
		go m.app.BeginEdit()
	case "ctrl+s":
		go m.app.SavePrompt()
	case "ctrl+l":
		go m.app.LaunchAssistant()
	case "ctrl+y":
		go m.app.CopyDraft()
	case "ctrl+n":
		go m.app.NewDraft()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		go m.app.LoadPrompt(idx)
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	wrapWidth := m.width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var b strings.Builder

	b.WriteString(styleTitle.Render("murmur "+version) + "\n")
	if m.modeLine != "" {
		b.WriteString(styleMode.Render(m.modeLine) + "\n")
	}
	b.WriteString("\n")

	// State line
	switch m.snap.State {
	case session.StateRecording:
		b.WriteString(styleRec.Render(recFrames[m.frame%len(recFrames)]+" REC") + "\n")
	case session.StateEditing:
		b.WriteString(styleEdit.Render("✎ EDIT") + "\n")
	default:
		b.WriteString(styleIdle.Render("○ IDLE") + "\n")
	}
	b.WriteString("\n")

	// Draft panel
	switch m.snap.State {
	case session.StateEditing:
		for _, line := range strings.Split(m.editBuf+"█", "\n") {
			for _, wrapped := range wrapLines(line, wrapWidth) {
				b.WriteString("  " + styleDraft.Render(wrapped) + "\n")
			}
		}
	default:
		text := m.snap.Draft
		if text == "" && m.snap.Partial == "" {
			b.WriteString("  " + styleIdle.Render("(empty draft, press r to dictate)") + "\n")
		} else {
			for _, raw := range strings.Split(text, "\n") {
				for _, line := range wrapLines(raw, wrapWidth) {
					b.WriteString("  " + styleDraft.Render(line) + "\n")
				}
			}
			if m.snap.Partial != "" {
				for _, line := range wrapLines(m.snap.Partial, wrapWidth) {
					b.WriteString("  " + stylePartial.Render(line) + "\n")
				}
			}
		}
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(styleStatus.Render(m.status) + "\n\n")
	}

	// Recent prompts
	if len(m.prompts) > 0 && m.snap.State != session.StateEditing {
		b.WriteString(stylePrompt.Render("Recent prompts:") + "\n")
		for i, p := range m.prompts {
			if i >= 9 {
				break
			}
			b.WriteString(stylePrompt.Render(fmt.Sprintf("  %d. %s", i+1, firstLine(p.Text, wrapWidth-6))) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.helpLine())
	return b.String()
}

func (m tuiModel) helpLine() string {
	key := func(k, label string) string {
		return styleHelpBold.Render(k) + styleHelp.Render(" "+label)
	}
	sep := styleHelp.Render("  ")
	if m.snap.State == session.StateEditing {
		return key("esc", "done") + sep + key("enter", "newline")
	}
	parts := []string{
		key("r", "record"),
		key("e", "edit"),
		key("^s", "save"),
		key("^l", "launch"),
		key("^y", "copy"),
		key("^n", "new"),
		key("q", "quit"),
	}
	if len(m.prompts) > 0 {
		parts = append(parts, key("1-9", "load"))
	}
	return strings.Join(parts, sep)
}

// firstLine truncates text to a single display line.
func firstLine(text string, width int) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	runes := []rune(text)
	if width > 1 && len(runes) > width {
		return string(runes[:width-1]) + "…"
	}
	return text
}

// wrapLines word-wraps text to the given width.
func wrapLines(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}
