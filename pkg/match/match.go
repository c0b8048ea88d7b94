package match

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Errors
var (
	ErrNoPattern    = errors.New("must specify at least one of prefix or suffix")
	ErrEmptyPattern = errors.New("pattern must not be empty")
	ErrNotHex       = errors.New("pattern must contain only hexadecimal characters (0-9, a-f)")
)

type kind int

const (
	kindPrefix kind = iota
	kindSuffix
	kindBoth
)

// Mode encodes the target address pattern. It is immutable after
// construction and safe to copy into every worker.
type Mode struct {
	kind   kind
	prefix string // lowercase, includes the "0x" marker
	suffix string // lowercase
}

// New builds a Mode from optional prefix and suffix strings. At least
// one must be non-empty. Patterns are raw hex without the "0x" marker;
// a leading "0x" is tolerated and stripped.
func New(prefix, suffix string) (Mode, error) {
	switch {
	case prefix != "" && suffix != "":
		return NewBoth(prefix, suffix)
	case prefix != "":
		return NewPrefix(prefix)
	case suffix != "":
		return NewSuffix(suffix)
	default:
		return Mode{}, ErrNoPattern
	}
}

// NewPrefix builds a prefix-only Mode. The stored pattern carries the
// "0x" marker so it can be compared against full address strings.
func NewPrefix(prefix string) (Mode, error) {
	p, err := normalizePattern(prefix)
	if err != nil {
		return Mode{}, fmt.Errorf("prefix: %w", err)
	}
	return Mode{kind: kindPrefix, prefix: "0x" + p}, nil
}

// NewSuffix builds a suffix-only Mode.
func NewSuffix(suffix string) (Mode, error) {
	s, err := normalizePattern(suffix)
	if err != nil {
		return Mode{}, fmt.Errorf("suffix: %w", err)
	}
	return Mode{kind: kindSuffix, suffix: s}, nil
}

// NewBoth builds a Mode requiring both a prefix and a suffix match.
func NewBoth(prefix, suffix string) (Mode, error) {
	p, err := normalizePattern(prefix)
	if err != nil {
		return Mode{}, fmt.Errorf("prefix: %w", err)
	}
	s, err := normalizePattern(suffix)
	if err != nil {
		return Mode{}, fmt.Errorf("suffix: %w", err)
	}
	return Mode{kind: kindBoth, prefix: "0x" + p, suffix: s}, nil
}

// normalizePattern lowers the pattern, strips an optional "0x" marker
// and rejects empty or non-hex input.
func normalizePattern(pattern string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if len(p) > 2 && p[:2] == "0x" {
		p = p[2:]
	}
	if p == "" {
		return "", ErrEmptyPattern
	}
	for _, c := range p {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", ErrNotHex
		}
	}
	return p, nil
}

// Matches reports whether the address satisfies the pattern. The
// address is re-lowered on every call since generators may emit mixed
// case.
func (m Mode) Matches(address string) bool {
	addr := strings.ToLower(address)
	switch m.kind {
	case kindPrefix:
		return strings.HasPrefix(addr, m.prefix)
	case kindSuffix:
		return strings.HasSuffix(addr, m.suffix)
	default:
		return strings.HasPrefix(addr, m.prefix) && strings.HasSuffix(addr, m.suffix)
	}
}

// Difficulty returns the expected number of attempts until one random
// address matches: 16 per constrained hex position. The "0x" marker is
// not a constrained position. Saturates at MaxUint64 for long patterns.
func (m Mode) Difficulty() uint64 {
	switch m.kind {
	case kindPrefix:
		return pow16(len(m.prefix) - 2)
	case kindSuffix:
		return pow16(len(m.suffix))
	default:
		return satMul(pow16(len(m.prefix)-2), pow16(len(m.suffix)))
	}
}

// Description returns a human-readable label for reporting.
func (m Mode) Description() string {
	switch m.kind {
	case kindPrefix:
		return "Prefix: " + m.prefix
	case kindSuffix:
		return "Suffix: " + m.suffix
	default:
		return "Prefix: " + m.prefix + " / Suffix: " + m.suffix
	}
}

// pow16 returns 16^n, saturating at MaxUint64. 16^16 is the first
// power past the uint64 range.
func pow16(n int) uint64 {
	if n >= 16 {
		return math.MaxUint64
	}
	return 1 << (4 * uint(n))
}

func satMul(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}
