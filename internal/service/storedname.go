package service

import (
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	tokenLength        = 10
	maxExtensionLength = 16
	defaultExtension   = "bin"
	unnamedFile        = "unnamed"
)

var storedNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10}\.[A-Za-z0-9]{1,16}$`)

// newToken draws a token from [A-Za-z0-9_-] using crypto/rand.
func newToken() (string, error) {
	return gonanoid.New(tokenLength)
}

// baseName strips any directory part, whichever separator the client used.
func baseName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return unnamedFile
	}
	return name
}

// extension returns the sanitized, lower-cased extension of a base name.
func extension(base string) string {
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return defaultExtension
	}
	var b strings.Builder
	for _, r := range base[i+1:] {
		if b.Len() == maxExtensionLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	if b.Len() == 0 {
		return defaultExtension
	}
	return b.String()
}

func isStoredName(s string) bool {
	return storedNamePattern.MatchString(s)
}
