// Package output delivers generated images to files or standard output.
package output

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// StdoutFlag selects standard output as the destination.
const StdoutFlag = "-"

// MaxSlugLength caps the prompt-derived part of auto-generated names.
const MaxSlugLength = 50

// Mode is the destination policy of a Target.
type Mode int

const (
	// ModeStdout writes the first image to standard output.
	ModeStdout Mode = iota + 1
	// ModeFile writes to a name chosen by the user.
	ModeFile
	// ModeAuto writes to a name derived from the prompt and the time.
	ModeAuto
)

func (m Mode) String() string {
	switch m {
	case ModeStdout:
		return "stdout"
	case ModeFile:
		return "file"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Target is the output policy for one invocation. It is decided once and
// applied to every image of the response.
type Target struct {
	mode Mode
	base string
}

// StdoutTarget writes the first image to standard output and drops the rest.
func StdoutTarget() Target {
	return Target{mode: ModeStdout}
}

// FileTarget writes to name, then name_2.ext, name_3.ext and so on.
func FileTarget(name string) Target {
	return Target{mode: ModeFile, base: name}
}

// AutoTarget names files after the prompt and the time now.
func AutoTarget(prompt string, now time.Time) Target {
	return Target{mode: ModeAuto, base: AutoName(prompt, now)}
}

// ParseTarget maps the -o flag value to a Target: "-" is stdout, empty is
// an auto-generated name and anything else is a file name.
func ParseTarget(flag, prompt string, now time.Time) Target {
	switch flag {
	case StdoutFlag:
		return StdoutTarget()
	case "":
		return AutoTarget(prompt, now)
	default:
		return FileTarget(flag)
	}
}

// Mode returns the destination policy.
func (t Target) Mode() Mode { return t.mode }

// IsStdout reports whether images go to standard output.
func (t Target) IsStdout() bool { return t.mode == ModeStdout }

// Base returns the name of the first file, or "" for stdout.
func (t Target) Base() string { return t.base }

// Filename returns the file name for the zero-based image index i.
func (t Target) Filename(i int) string {
	if t.mode == ModeStdout {
		return ""
	}
	if i == 0 {
		return t.base
	}
	ext := filepath.Ext(t.base)
	// A leading dot names a hidden file, not an extension.
	if ext == filepath.Base(t.base) {
		ext = ""
	}
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(t.base, ext), i+1, ext)
}

func (t Target) String() string {
	if t.mode == ModeStdout {
		return "<stdout>"
	}
	return t.base
}

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}-]`)
	separators  = regexp.MustCompile(`[\s\p{Z}-]+`)
)

// Slug turns a prompt into a file-name-safe fragment: punctuation is
// dropped, runs of whitespace and hyphens become one underscore and the
// result is cut to MaxSlugLength characters.
func Slug(prompt string) string {
	s := unsafeChars.ReplaceAllString(prompt, "")
	s = separators.ReplaceAllString(s, "_")
	if r := []rune(s); len(r) > MaxSlugLength {
		s = string(r[:MaxSlugLength])
	}
	return s
}

// AutoName returns graft_<YYYYMMDD_HHMMSS>_<slug>.png.
func AutoName(prompt string, now time.Time) string {
	return fmt.Sprintf("graft_%s_%s.png", now.Format("20060102_150405"), Slug(prompt))
}
