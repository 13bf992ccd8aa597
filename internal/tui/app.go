// Package tui renders installation progress and the capability checklist.
package tui

import (
	"github.com/AvengeMedia/automate/internal/orchestrator"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const maxLogLines = 50

type Model struct {
	state  ApplicationState
	theme  AppTheme
	styles Styles
	width  int

	spinner  spinner.Model
	progress progress.Model

	eventChan <-chan orchestrator.ProgressEvent
	logChan   <-chan string
	doneChan  <-chan error
	cancel    func()

	current          orchestrator.ProgressEvent
	installationLogs []string
	installPath      string
	err              error
	interrupted      bool
}

// NewModel follows an installation that reports on events and logs and
// delivers its result on done. cancel is invoked when the user aborts.
func NewModel(installPath string, events <-chan orchestrator.ProgressEvent, logs <-chan string, done <-chan error, cancel func()) Model {
	theme := DefaultTheme()
	styles := NewStyles(theme)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return Model{
		state:       StateInstalling,
		theme:       theme,
		styles:      styles,
		spinner:     s,
		progress:    NewThemedProgress(theme, 50),
		eventChan:   events,
		logChan:     logs,
		doneChan:    done,
		cancel:      cancel,
		installPath: installPath,
	}
}

// Err is the installation result once the program has exited.
func (m Model) Err() error {
	return m.err
}

// Interrupted reports whether the user aborted a running installation.
func (m Model) Interrupted() bool {
	return m.interrupted
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForProgress(), m.listenForLogs(), m.waitForDone())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-10, 20), 80)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.state == StateInstalling {
				m.interrupted = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.state != StateInstalling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case logMsg:
		m.appendLog(msg.message)
		return m, m.listenForLogs()
	}

	switch m.state {
	case StateInstalling:
		return m.updateInstallingState(msg)
	case StateInstallComplete:
		return m.updateInstallCompleteState(msg)
	case StateError:
		return m.updateErrorState(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case StateInstallComplete:
		return m.viewInstallComplete()
	case StateError:
		return m.viewError()
	default:
		return m.viewInstalling()
	}
}

func (m *Model) appendLog(line string) {
	if line == "" {
		return
	}
	m.installationLogs = append(m.installationLogs, line)
	if len(m.installationLogs) > maxLogLines {
		m.installationLogs = m.installationLogs[len(m.installationLogs)-maxLogLines:]
	}
}

func (m Model) listenForProgress() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.eventChan
		if !ok {
			return channelClosedMsg{}
		}
		return progressMsg{event: ev}
	}
}

func (m Model) listenForLogs() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-m.logChan
		if !ok {
			return channelClosedMsg{}
		}
		return logMsg{message: line}
	}
}

func (m Model) waitForDone() tea.Cmd {
	return func() tea.Msg {
		return installDoneMsg{err: <-m.doneChan}
	}
}
