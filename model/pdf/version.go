// Package pdf holds document level enumerations shared by parameters and the engine.
package pdf

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownVersion = errors.New("unknown pdf version")

// Version is a PDF header version. The zero value means "not set".
type Version int

const (
	VersionUnset Version = iota
	Version10
	Version11
	Version12
	Version13
	Version14
	Version15
	Version16
	Version17
)

var versionNames = []string{"", "1.0", "1.1", "1.2", "1.3", "1.4", "1.5", "1.6", "1.7"}

func (v Version) String() string {
	if v < VersionUnset || int(v) >= len(versionNames) {
		return fmt.Sprintf("Version(%d)", int(v))
	}
	return versionNames[v]
}

// IsSet reports whether v names a concrete version.
func (v Version) IsSet() bool { return v > VersionUnset && int(v) < len(versionNames) }

// ParseVersion accepts "1.6", "PDF-1.6" or "%PDF-1.6".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "%"), "PDF-")
	for i, name := range versionNames {
		if i > 0 && name == s {
			return Version(i), nil
		}
	}
	return VersionUnset, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
}

// Max returns the higher of two versions.
func Max(a, b Version) Version {
	if a > b {
		return a
	}
	return b
}
