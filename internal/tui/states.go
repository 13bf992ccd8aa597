package tui

type ApplicationState int

const (
	StateInstalling ApplicationState = iota
	StateInstallComplete
	StateError
)
