package update

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic firmware version.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

// ParseVersion parses a version string like "1.0.2", "v1.0.2" or
// "1.1.0-beta.1".
func ParseVersion(s string) (Version, error) {
	v := Version{}

	s = strings.TrimPrefix(s, "v")

	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 2 {
		v.Prerelease = parts[1]
	}

	numbers := strings.Split(parts[0], ".")
	if len(numbers) < 1 || len(numbers) > 3 {
		return v, fmt.Errorf("invalid version format: %s", s)
	}

	var err error
	v.Major, err = strconv.Atoi(numbers[0])
	if err != nil {
		return v, fmt.Errorf("invalid major version: %s", numbers[0])
	}

	if len(numbers) >= 2 {
		v.Minor, err = strconv.Atoi(numbers[1])
		if err != nil {
			return v, fmt.Errorf("invalid minor version: %s", numbers[1])
		}
	}

	if len(numbers) >= 3 {
		v.Patch, err = strconv.Atoi(numbers[2])
		if err != nil {
			return v, fmt.Errorf("invalid patch version: %s", numbers[2])
		}
	}

	return v, nil
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}

	// A release outranks its prereleases (1.0.0 > 1.0.0-beta).
	if v.Prerelease == "" && other.Prerelease != "" {
		return 1
	}
	if v.Prerelease != "" && other.Prerelease == "" {
		return -1
	}
	return comparePrerelease(v.Prerelease, other.Prerelease)
}

// comparePrerelease orders dot-separated prerelease identifiers:
// numeric identifiers compare numerically (beta.2 < beta.10) and rank
// below alphanumeric ones; a shorter identifier list ranks lower.
func comparePrerelease(a, b string) int {
	if a == b {
		return 0
	}
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			if an < bn {
				return -1
			}
			return 1
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		default:
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	if len(as) < len(bs) {
		return -1
	}
	return 1
}

// String returns the version as "vX.Y.Z".
func (v Version) String() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// IsNewer reports whether latest is newer than current.
func IsNewer(current, latest string) (bool, error) {
	if IsDev(current) {
		return false, nil
	}

	currentV, err := ParseVersion(current)
	if err != nil {
		return false, fmt.Errorf("parse current version: %w", err)
	}

	latestV, err := ParseVersion(latest)
	if err != nil {
		return false, fmt.Errorf("parse offered version: %w", err)
	}

	return currentV.Compare(latestV) < 0, nil
}

// IsDev reports whether version is a development build.
func IsDev(version string) bool {
	return version == "dev" || version == ""
}
