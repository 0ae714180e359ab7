package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a MAJOR.MINOR.PATCH package version.
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion parses a strict three-part version such as "1.4.0".
// Pre-release and build suffixes are rejected.
func ParseVersion(s string) (Version, error) {
	v := "v" + s
	if !semver.IsValid(v) || semver.Canonical(v) != v || semver.Prerelease(v) != "" {
		return Version{}, fmt.Errorf("invalid version %q, want MAJOR.MINOR.PATCH", s)
	}
	parts := strings.Split(s, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
