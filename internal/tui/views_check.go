package tui

import (
	"fmt"
	"strings"

	"github.com/AvengeMedia/automate/internal/deps"
)

// RenderChecklist formats probe results one per line. Optional failures are
// shown as warnings.
func RenderChecklist(checks []deps.Check) string {
	styles := NewStyles(DefaultTheme())
	width := 0
	for _, c := range checks {
		width = max(width, len(c.Name))
	}

	var b strings.Builder
	for _, c := range checks {
		glyph := styles.Success.Render("✓")
		switch {
		case c.Passed:
		case c.Required:
			glyph = styles.Error.Render("✗")
		default:
			glyph = styles.Warning.Render("!")
		}
		name := styles.Bold.Render(fmt.Sprintf("%-*s", width, c.Name))
		b.WriteString(fmt.Sprintf("%s %s  %s\n", glyph, name, styles.Subtle.Render(c.Message)))
	}

	missing := deps.Missing(checks)
	b.WriteString("\n")
	if len(missing) == 0 {
		b.WriteString(styles.Success.Render("All requirements met"))
	} else {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = c.Name
		}
		b.WriteString(styles.Error.Render(fmt.Sprintf("Missing: %s", strings.Join(names, ", "))))
		b.WriteString("\n")
		b.WriteString(styles.Subtle.Render("Run 'automate install-deps' to install them"))
	}
	b.WriteString("\n")
	return b.String()
}
