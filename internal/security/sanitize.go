package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// projectNameRegex validates project names (DNS-compatible)
	// Allows: lowercase letters, numbers, hyphens (not at start/end)
	// Length: 1-63 characters
	projectNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

	// unixUserRegex validates Unix usernames
	unixUserRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
)

// ValidateProjectName validates a derived project name. The name is
// reused as a Docker container name, a directory name, and an nginx
// site identifier, so it must be DNS-compatible.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("project name too long (max 63 characters)")
	}
	if !projectNameRegex.MatchString(name) {
		return fmt.Errorf("project name must contain only lowercase letters, numbers, and hyphens (not at start/end)")
	}
	return nil
}

// ValidateUnixUser validates a Unix username.
func ValidateUnixUser(user string) error {
	if user == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(user) > 32 {
		return fmt.Errorf("username too long (max 32 characters)")
	}
	if !unixUserRegex.MatchString(user) {
		return fmt.Errorf("username must start with a lowercase letter or underscore, followed by lowercase letters, numbers, underscores, or hyphens")
	}
	return nil
}

// ShellEscape escapes a string for safe use in shell commands by wrapping it
// in single quotes and escaping any internal single quotes using the POSIX
// pattern: ' → '\''
func ShellEscape(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// MaskSecrets replaces every occurrence of the given secret values in
// a message with ****. Applied to every console and log-file line so a
// token can never appear in output even if a command string embeds it.
func MaskSecrets(msg string, secrets []string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, "****")
	}
	return msg
}
