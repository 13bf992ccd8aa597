package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/AvengeMedia/automate/internal/orchestrator"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) viewInstalling() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render("Installing AutoMate"))
	b.WriteString("\n\n")

	step := m.current.Message
	if step == "" {
		step = "Preparing..."
	}
	b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Normal.Render(step)))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(float64(m.current.Percent) / 100))
	b.WriteString("\n\n")

	m.writeCompleted(&b, m.current.Completed)

	if len(m.installationLogs) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Subtle.Render("Live Output:"))
		b.WriteString("\n")
		m.writeLogs(&b, 8)
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Subtle.Render("Press ctrl+c to abort"))
	return b.String()
}

func (m Model) viewInstallComplete() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")
	b.WriteString(m.styles.Success.Render("✓ " + orchestrator.CompleteMessage))
	b.WriteString("\n\n")

	m.writeCompleted(&b, m.current.Completed)

	b.WriteString("\n")
	info := fmt.Sprintf("AutoMate is installed in %s\nOpen http://localhost:3000 to start chatting.", m.installPath)
	b.WriteString(m.styles.Normal.Render(info))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Subtle.Render("Press ") + m.styles.Key.Render("Enter") + m.styles.Subtle.Render(" to exit"))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(m.renderBanner())
	b.WriteString("\n")
	b.WriteString(m.styles.Error.Render("Installation Failed"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("✗ " + m.err.Error()))
		b.WriteString("\n\n")
	}

	var stepErr *errdefs.StepError
	if errors.As(m.err, &stepErr) && len(stepErr.Completed) > 0 {
		m.writeCompleted(&b, stepErr.Completed)
		b.WriteString("\n")
	}

	if len(m.installationLogs) > 0 {
		b.WriteString(m.styles.Warning.Render("Installation Logs (last 15 lines):"))
		b.WriteString("\n")
		m.writeLogs(&b, 15)
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Subtle.Render("Press ") + m.styles.Key.Render("Enter") + m.styles.Subtle.Render(" to exit"))
	return b.String()
}

func (m Model) writeCompleted(b *strings.Builder, completed []string) {
	for _, name := range completed {
		b.WriteString(m.styles.Success.Render("  ✓ "))
		b.WriteString(m.styles.Subtle.Render(name))
		b.WriteString("\n")
	}
}

func (m Model) writeLogs(b *strings.Builder, maxLines int) {
	start := 0
	if len(m.installationLogs) > maxLines {
		start = len(m.installationLogs) - maxLines
	}
	for _, line := range m.installationLogs[start:] {
		b.WriteString(m.styles.Subtle.Render("  " + line))
		b.WriteString("\n")
	}
}

func (m Model) updateInstallingState(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.current = msg.event
		return m, m.listenForProgress()
	case installDoneMsg:
		m.err = msg.err
		if msg.err != nil {
			m.state = StateError
			return m, nil
		}
		m.state = StateInstallComplete
		// the trailing event may still be queued behind this message
		if m.current.Message != orchestrator.CompleteMessage {
			m.current.Percent = 100
			m.current.Message = orchestrator.CompleteMessage
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateInstallCompleteState(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.current = msg.event
	case tea.KeyMsg:
		if msg.String() == "enter" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) updateErrorState(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "q":
			return m, tea.Quit
		}
	}
	return m, nil
}
