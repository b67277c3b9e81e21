//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// hideInterruptEcho clears ECHOCTL on stdin while watching, so stopping the watcher with
// Ctrl+C leaves no "^C" in front of the last report. the returned func restores the tty.
func hideInterruptEcho() (restore func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	state, err := unix.IoctlGetTermios(fd, getTermios)
	if err != nil {
		return func() {}
	}
	saved := *state
	state.Lflag &^= unix.ECHOCTL
	if err := unix.IoctlSetTermios(fd, setTermios, state); err != nil {
		return func() {}
	}

	return func() {
		_ = unix.IoctlSetTermios(fd, setTermios, &saved)
	}
}
