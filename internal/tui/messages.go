package tui

import "github.com/AvengeMedia/automate/internal/orchestrator"

type logMsg struct {
	message string
}

type progressMsg struct {
	event orchestrator.ProgressEvent
}

type installDoneMsg struct {
	err error
}

type channelClosedMsg struct{}
