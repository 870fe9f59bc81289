// Package uversion parses engine version strings such as "2021.3.1f1".
package uversion

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type Version struct {
	Numbers []uint32
	// BuildType is the first non-digit, non-dot character: "a" (alpha),
	// "b" (beta), "f" (final), "p" (patch), "x" (experimental).
	BuildType string
	Raw       string
}

func Parse(raw string) (Version, error) {
	fields := strings.FieldsFunc(
		raw,
		func(r rune) bool { return !unicode.IsDigit(r) },
	)
	if len(fields) == 0 {
		return Version{}, errors.Errorf(`uversion.Parse error: no number in "%s"`, raw)
	}
	numbers := make([]uint32, 0, len(fields))
	for _, field := range fields {
		number, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return Version{}, errors.Wrapf(err, `uversion.Parse error: "%s"`, raw)
		}
		numbers = append(numbers, uint32(number))
	}

	buildType, _ := lo.Find(
		strings.Split(raw, ""),
		func(s string) bool {
			r := rune(s[0])
			return r != '.' && !unicode.IsDigit(r)
		},
	)

	return Version{
		Numbers:   numbers,
		BuildType: buildType,
		Raw:       raw,
	}, nil
}

func MustParse(raw string) Version {
	version, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return version
}

func (v Version) String() string {
	return v.Raw
}

func (v Version) IsAlpha() bool {
	return v.BuildType == "a"
}

func (v Version) IsPatch() bool {
	return v.BuildType == "p"
}

// Compare orders by the numeric components first, a shorter prefix sorting
// before a longer one, then by build type.
func (v Version) Compare(other Version) int {
	n := len(v.Numbers)
	if len(other.Numbers) < n {
		n = len(other.Numbers)
	}
	for i := 0; i < n; i++ {
		if v.Numbers[i] != other.Numbers[i] {
			if v.Numbers[i] < other.Numbers[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(v.Numbers) < len(other.Numbers):
		return -1
	case len(v.Numbers) > len(other.Numbers):
		return 1
	}
	return strings.Compare(v.BuildType, other.BuildType)
}
