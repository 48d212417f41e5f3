package validator

import (
	"fmt"
	"os"
	"os/exec"
)

// ResolvePath turns a configured validator setting into an executable path.
//
// A setting naming an existing regular file must be executable; it is not
// looked up on PATH. Anything else is resolved through PATH. An empty
// setting means DefaultCommand.
func ResolvePath(configured string) (string, error) {
	if configured == "" {
		configured = DefaultCommand
	}

	if info, err := os.Stat(configured); err == nil && info.Mode().IsRegular() {
		if info.Mode().Perm()&0111 == 0 {
			return "", fmt.Errorf("%w: %s is not executable", ErrValidatorPathInvalid, configured)
		}
		return configured, nil
	}

	path, err := exec.LookPath(configured)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrValidatorPathInvalid, configured, err)
	}
	return path, nil
}
