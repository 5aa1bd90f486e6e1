package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath checks a configuration file path given on the command line or
// in settings. Pseudo filesystems are refused along with shell
// metacharacters, which only appear in a path pasted from a command.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">"}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	cleanPath := filepath.Clean(path)
	restrictedPaths := []string{"/proc/", "/sys/", "/dev/"}
	for _, restricted := range restrictedPaths {
		if strings.HasPrefix(cleanPath, restricted) {
			return fmt.Errorf("access to restricted path denied: %s", path)
		}
	}

	return nil
}
