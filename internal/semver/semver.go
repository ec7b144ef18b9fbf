// Package semver implements parsing and matching of release tag names.
//
// A release tag has the form v<major>.<minor>.<patch> optionally followed
// by a suffix, e.g. v1.2.3, v0.4.0-rc.1, v2.0.0-beta+build.7. This mirrors
// the trigger pattern CI uses to decide whether a tag push is a release.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// Tag is a parsed release tag.
type Tag struct {
	Major  uint64
	Minor  uint64
	Patch  uint64
	Suffix string // everything after the patch number, including any leading '-'
}

// String returns the canonical tag name, including the leading 'v'.
func (t Tag) String() string {
	return fmt.Sprintf("v%d.%d.%d%s", t.Major, t.Minor, t.Patch, t.Suffix)
}

// IsPrerelease reports whether the tag carries a pre-release suffix
// (a suffix beginning with '-', e.g. v1.0.0-rc.1).
func (t Tag) IsPrerelease() bool {
	return strings.HasPrefix(t.Suffix, "-")
}

// Version returns the numeric version without the leading 'v' or suffix.
func (t Tag) Version() string {
	return fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// Parse parses a tag name of the form v<major>.<minor>.<patch>[suffix].
// It returns a TagMismatchError (matching errors.ErrTagMismatch) for
// anything that does not fit the pattern.
func Parse(name string) (Tag, error) {
	rest, ok := strings.CutPrefix(name, "v")
	if !ok {
		return Tag{}, shipiterrors.NewTagMismatchError(name, "missing 'v' prefix")
	}

	var nums [3]uint64
	for i := 0; i < 3; i++ {
		digits := leadingDigits(rest)
		if digits == "" {
			return Tag{}, shipiterrors.NewTagMismatchError(name, fmt.Sprintf("expected number in component %d", i+1))
		}
		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return Tag{}, shipiterrors.NewTagMismatchError(name, fmt.Sprintf("component %d is not a number", i+1))
		}
		nums[i] = n
		rest = rest[len(digits):]

		if i < 2 {
			if !strings.HasPrefix(rest, ".") {
				return Tag{}, shipiterrors.NewTagMismatchError(name, fmt.Sprintf("expected '.' after component %d", i+1))
			}
			rest = rest[1:]
		}
	}

	return Tag{
		Major:  nums[0],
		Minor:  nums[1],
		Patch:  nums[2],
		Suffix: rest,
	}, nil
}

// Match reports whether name matches the release tag pattern.
func Match(name string) bool {
	_, err := Parse(name)
	return err == nil
}

// Compare returns -1, 0, or 1 ordering a against b by numeric components.
// Suffixes are compared lexically as a tiebreaker, with a suffixed tag
// ordering before its unsuffixed counterpart (v1.0.0-rc.1 < v1.0.0).
func Compare(a, b Tag) int {
	pairs := [][2]uint64{{a.Major, b.Major}, {a.Minor, b.Minor}, {a.Patch, b.Patch}}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	switch {
	case a.Suffix == b.Suffix:
		return 0
	case a.Suffix == "":
		return 1
	case b.Suffix == "":
		return -1
	case a.Suffix < b.Suffix:
		return -1
	default:
		return 1
	}
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
