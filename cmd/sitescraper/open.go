package main

import (
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/mattn/go-isatty"
)

// isInteractive reports whether r is a terminal. Piped or redirected input
// never gets the open prompt.
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// openCommand returns the program and arguments that open path with the
// desktop's default application on goos.
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// openFile opens path without waiting for the viewer to exit.
func openFile(path string) error {
	name, args := openCommand(runtime.GOOS, path)
	cmd := exec.Command(name, args...) //nolint:gosec // path is the file we just wrote
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck // the viewer's exit status is irrelevant
	return nil
}
