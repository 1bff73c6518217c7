package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestFind_ExplicitPath(t *testing.T) {
	script := writeScript(t, t.TempDir(), "myviewer", "exit 0")

	found, err := Find(script)
	require.NoError(t, err)
	assert.Equal(t, script, found)
}

func TestFind_ExplicitPathNotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Find(path)
	assert.ErrorIs(t, err, ErrViewerNotFound)
}

func TestFind_CommandInPath(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "plotview", "exit 0")
	t.Setenv("PATH", dir)

	found, err := Find("plotview")
	require.NoError(t, err)
	assert.Equal(t, script, found)
}

func TestFind_CommandMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Find("nonexistent-viewer-xyz")
	assert.ErrorIs(t, err, ErrViewerNotFound)
}

func TestFind_HomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATH", t.TempDir())

	dir := filepath.Join(home, ".streamplot")
	require.NoError(t, os.MkdirAll(dir, 0755))
	script := writeScript(t, dir, BinaryName, "exit 0")

	found, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, script, found)
}

func TestFind_DefaultOpener(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv("PATH", dir)
	opener := writeScript(t, dir, DefaultOpeners("linux")[0], "exit 0")

	if found, err := Find(""); err == nil {
		assert.Equal(t, filepath.Base(opener), filepath.Base(found))
	}
}

func TestViewer_OpenPassesArgsAndFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "args.txt")
	script := writeScript(t, dir, "recorder", `echo "$@" > "`+out+`"`)

	v, err := New(script, []string{"--title", "Output"})
	require.NoError(t, err)
	require.NoError(t, v.Open(context.Background(), "plot.svg"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "--title Output plot.svg", strings.TrimSpace(string(data)))
}

func TestViewer_OpenExitCode(t *testing.T) {
	script := writeScript(t, t.TempDir(), "failing", "exit 3")

	v, err := New(script, nil)
	require.NoError(t, err)

	err = v.Open(context.Background(), "plot.svg")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Error(), "failing exited with status 3")
}

func TestViewer_OpenCancelled(t *testing.T) {
	script := writeScript(t, t.TempDir(), "slow", "sleep 5")

	v, err := New(script, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = v.Open(ctx, "plot.svg")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNotFoundMessage(t *testing.T) {
	msg := NotFoundMessage("feh")
	assert.Contains(t, msg, `viewer "feh" not found`)
	assert.Contains(t, msg, "viewer.command")
	assert.Contains(t, msg, BinaryName)

	assert.True(t, strings.HasPrefix(NotFoundMessage(""), "no viewer found"))
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := writeScript(t, dir, "exe", "exit 0")
	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0644))

	assert.True(t, isExecutable(exe))
	assert.False(t, isExecutable(plain))
	assert.False(t, isExecutable(dir))
	assert.False(t, isExecutable(filepath.Join(dir, "missing")))
}
