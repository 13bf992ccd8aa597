package installer

type InstallPhase int

const (
	PhaseProbe InstallPhase = iota
	PhaseBootstrap
	PhasePackages
	PhaseComplete
)

func (p InstallPhase) String() string {
	switch p {
	case PhaseProbe:
		return "Checking system"
	case PhaseBootstrap:
		return "Installing package manager"
	case PhasePackages:
		return "Installing packages"
	case PhaseComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

type InstallProgressMsg struct {
	Phase      InstallPhase
	Progress   float64
	Step       string
	IsComplete bool
	Packages   []string
	Error      error
}
