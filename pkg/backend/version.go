package backend

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "MAJOR.MINOR.PATCH".
func ParseVersion(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: %s", name, parts[i])
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// less reports whether v sorts before o.
func (v Version) less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// CurrentVersion returns ProtocolVersion parsed.
func CurrentVersion() Version {
	v, err := ParseVersion(ProtocolVersion)
	if err != nil {
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}

// CheckCompatible returns an error unless a backend speaking version can be used.
// The major version must match and the version must not predate MinCompatibleVersion.
func CheckCompatible(version string) error {
	v, err := ParseVersion(version)
	if err != nil {
		return fmt.Errorf("failed to parse backend protocol version: %w", err)
	}

	current := CurrentVersion()
	if v.Major != current.Major {
		return fmt.Errorf("incompatible major version: backend is %s, cwal requires %d.x.x", v, current.Major)
	}

	minimum, err := ParseVersion(MinCompatibleVersion)
	if err != nil {
		return err
	}
	if v.less(minimum) {
		return fmt.Errorf("backend protocol %s is too old, minimum required is %s", v, minimum)
	}

	return nil
}
