// Package viewer launches an external program on a rendered plot and waits
// for it to exit.
//
// Lookup follows the usual opener conventions: an explicit command wins,
// otherwise a streamplot-viewer binary is searched for, then the desktop
// opener for the platform.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// BinaryName is the viewer binary searched for next to streamplot and in
// ~/.streamplot/.
const BinaryName = "streamplot-viewer"

// ErrViewerNotFound is returned when no viewer binary can be located.
var ErrViewerNotFound = errors.New("viewer not found")

// DefaultOpeners returns the desktop openers tried, in order, for goos.
func DefaultOpeners(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"explorer.exe"}
	default:
		return []string{"xdg-open", "gio", "open"}
	}
}

// ExitError reports a viewer that exited with a non-zero status.
type ExitError struct {
	Viewer string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("viewer %s exited with status %d", filepath.Base(e.Viewer), e.Code)
}

// Viewer is a resolved viewer program.
type Viewer struct {
	// Path is the resolved executable.
	Path string

	// Args are passed before the file name.
	Args []string

	// Stdout and Stderr receive the viewer's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// New resolves command (or the default search order if empty) into a Viewer.
func New(command string, args []string) (*Viewer, error) {
	path, err := Find(command)
	if err != nil {
		return nil, err
	}
	return &Viewer{Path: path, Args: args}, nil
}

// Find locates a viewer executable.
// A non-empty command is resolved as a path if it contains a separator, else
// through PATH. An empty command searches, in order:
//  1. streamplot-viewer next to the streamplot binary
//  2. ~/.streamplot/streamplot-viewer
//  3. the platform's desktop opener in PATH
func Find(command string) (string, error) {
	if command != "" {
		if strings.ContainsRune(command, os.PathSeparator) {
			if isExecutable(command) {
				return command, nil
			}
			return "", fmt.Errorf("%w: %s is not executable", ErrViewerNotFound, command)
		}
		path, err := exec.LookPath(command)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrViewerNotFound, command)
		}
		return path, nil
	}

	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), BinaryName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(homeDir, ".streamplot", BinaryName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	for _, opener := range DefaultOpeners(runtime.GOOS) {
		if path, err := exec.LookPath(opener); err == nil {
			return path, nil
		}
	}

	return "", ErrViewerNotFound
}

// Open runs the viewer on file and blocks until it exits.
// Cancelling ctx kills the viewer.
func (v *Viewer) Open(ctx context.Context, file string) error {
	args := append(append([]string{}, v.Args...), file)
	cmd := exec.CommandContext(ctx, v.Path, args...)
	cmd.Stdout = v.Stdout
	cmd.Stderr = v.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Viewer: v.Path, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("running viewer %s: %w", v.Path, err)
	}
	return nil
}

// NotFoundMessage returns a hint for configuring a viewer.
func NotFoundMessage(command string) string {
	var sb strings.Builder

	if command != "" {
		sb.WriteString(fmt.Sprintf("viewer %q not found\n", command))
	} else {
		sb.WriteString("no viewer found\n")
	}

	sb.WriteString("\nSet viewer.command in the config file, or install one of:\n")
	sb.WriteString(fmt.Sprintf("  - %s in the same directory as streamplot\n", BinaryName))
	sb.WriteString(fmt.Sprintf("  - ~/.streamplot/%s\n", BinaryName))
	sb.WriteString(fmt.Sprintf("  - %s anywhere in your PATH\n", strings.Join(DefaultOpeners(runtime.GOOS), ", ")))

	sb.WriteString("\nThe plot files are written either way.")

	return sb.String()
}

// isExecutable checks if a file exists and is executable.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
