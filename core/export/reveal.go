package export

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

var startFunc = defaultStart // mockable

func defaultStart(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Reveal opens dir in the file browser of the OS.
func Reveal(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating directory")
	}
	var name string
	switch runtime.GOOS {
	case "windows":
		name = "explorer"
	case "darwin":
		name = "open"
	default:
		name = "xdg-open"
	}
	return errors.Wrapf(startFunc(name, dir), "opening %s", dir)
}
