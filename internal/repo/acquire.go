// Package repo places the AutoMate sub-projects into the install directory,
// preferring a copy bundled next to the installer over a network clone.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AvengeMedia/automate/internal/config"
	"github.com/spf13/afero"
)

// Cloner fetches url into dest, which must not already hold a repository.
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

type Acquirer struct {
	fs         afero.Fs
	bundledDir string
	cloner     Cloner
	logChan    chan<- string
}

func NewAcquirer(fs afero.Fs, bundledDir string, cloner Cloner, logChan chan<- string) *Acquirer {
	return &Acquirer{
		fs:         fs,
		bundledDir: bundledDir,
		cloner:     cloner,
		logChan:    logChan,
	}
}

// Acquire copies <bundledDir>/<repo.Dir> to dest when it exists and clones
// repo.URL otherwise. Exactly one of the two happens.
func (a *Acquirer) Acquire(ctx context.Context, repo config.Repository, dest string) error {
	if a.bundledDir != "" {
		src := filepath.Join(a.bundledDir, repo.Dir)
		if info, err := a.fs.Stat(src); err == nil && info.IsDir() {
			a.log(fmt.Sprintf("Using bundled %s...", repo.Dir))
			if err := copyTree(ctx, a.fs, src, dest); err != nil {
				return fmt.Errorf("failed to copy bundled %s: %w", repo.Name, err)
			}
			return nil
		}
	}

	a.log(fmt.Sprintf("Cloning %s from %s...", repo.Name, repo.URL))
	if err := a.cloner.Clone(ctx, repo.URL, dest); err != nil {
		return fmt.Errorf("failed to clone %s: %w", repo.Name, err)
	}
	return nil
}

func copyTree(ctx context.Context, fs afero.Fs, src, dest string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return copySymlink(fs, path, target)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		return afero.WriteFile(fs, target, data, info.Mode().Perm())
	})
}

// copySymlink recreates the link at target with the same, unresolved
// destination so relative links such as node_modules/.bin entries keep working.
func copySymlink(fs afero.Fs, path, target string) error {
	reader, canRead := fs.(afero.LinkReader)
	linker, canLink := fs.(afero.Linker)
	if !canRead || !canLink {
		return fmt.Errorf("cannot copy symlink %s: filesystem does not support symlinks", path)
	}

	link, err := reader.ReadlinkIfPossible(path)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return linker.SymlinkIfPossible(link, target)
}

func (a *Acquirer) log(message string) {
	if a.logChan != nil {
		a.logChan <- message
	}
}
