package repo

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-git/go-git/v5"
)

// GitCloner clones over the network with go-git, so the host needs no git
// binary for this step.
type GitCloner struct {
	logChan chan<- string
}

func NewGitCloner(logChan chan<- string) *GitCloner {
	return &GitCloner{logChan: logChan}
}

func (g *GitCloner) Clone(ctx context.Context, url, dest string) error {
	opts := &git.CloneOptions{URL: url}
	if g.logChan != nil {
		opts.Progress = &progressWriter{logChan: g.logChan}
	}
	_, err := git.PlainCloneContext(ctx, dest, false, opts)
	return err
}

// progressWriter forwards complete lines of sideband progress to logChan.
// Carriage-return updates are collapsed to their final state.
type progressWriter struct {
	logChan chan<- string
	buf     bytes.Buffer
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			w.buf.Reset()
			w.buf.WriteString(line)
			return len(p), nil
		}
		if i := strings.LastIndexByte(strings.TrimRight(line, "\r\n"), '\r'); i >= 0 {
			line = line[i+1:]
		}
		if line = strings.TrimSpace(line); line != "" {
			w.logChan <- line
		}
	}
}

var _ Cloner = (*GitCloner)(nil)
