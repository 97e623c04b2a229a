package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxDifficulty caps explicit points on custom tasks.
const MaxDifficulty = 10

// ParseIndexList parses a comma-separated list of 1-based numbers like "1, 3,5".
// Any token that is not an integer rejects the whole list.
func ParseIndexList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty list", ErrInvalidSelection)
	}
	parts := strings.Split(s, ",")
	res := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, strings.TrimSpace(p))
		}
		res = append(res, n)
	}
	return res, nil
}

// ParseTaskSelection turns a registration reply into the user's default set.
// "Default" (any case) selects the core tasks; otherwise exactly ten unique
// catalog numbers are required.
func ParseTaskSelection(s string) ([]TaskTemplate, error) {
	if strings.EqualFold(strings.TrimSpace(s), "default") {
		return CoreTasks(), nil
	}
	nums, err := ParseIndexList(s)
	if err != nil {
		return nil, err
	}
	catalog := Catalog()
	if len(nums) != DefaultSetSize {
		return nil, fmt.Errorf("%w: pick exactly %d tasks", ErrInvalidSelection, DefaultSetSize)
	}
	seen := make(map[int]bool, len(nums))
	res := make([]TaskTemplate, 0, len(nums))
	for _, n := range nums {
		if n < 1 || n > len(catalog) {
			return nil, fmt.Errorf("%w: %d out of range 1..%d", ErrInvalidSelection, n, len(catalog))
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: %d picked twice", ErrInvalidSelection, n)
		}
		seen[n] = true
		res = append(res, catalog[n-1])
	}
	return res, nil
}

// ParseKind accepts "daily" or "weekly" in any case.
func ParseKind(s string) (TaskKind, error) {
	switch TaskKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDaily:
		return KindDaily, nil
	case KindWeekly:
		return KindWeekly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

var addArgsRe = regexp.MustCompile(`^(?i)(daily|weekly)(?::(\d+))?\s+(.+)$`)

// ParseAddArgs parses "<daily|weekly>[:points] <description>".
// Difficulty is 0 when not given, meaning "use the kind's default".
func ParseAddArgs(s string) (kind TaskKind, difficulty int, description string, err error) {
	m := addArgsRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", 0, "", fmt.Errorf("%w: expected <daily|weekly>[:points] <description>", ErrInvalidSelection)
	}
	kind, err = ParseKind(m[1])
	if err != nil {
		return "", 0, "", err
	}
	if m[2] != "" {
		difficulty, err = strconv.Atoi(m[2])
		if err != nil || difficulty < 1 || difficulty > MaxDifficulty {
			return "", 0, "", fmt.Errorf("%w: points must be 1..%d", ErrInvalidDifficulty, MaxDifficulty)
		}
	}
	description = strings.TrimSpace(m[3])
	if description == "" {
		return "", 0, "", ErrEmptyDescription
	}
	return kind, difficulty, description, nil
}

// ValidateTZ checks that the tz is a valid IANA location and returns its canonical name.
func ValidateTZ(tz string) (string, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidTimezone, tz)
	}
	return loc.String(), nil
}

// FormatCode groups nine digits as XXX-XXX-XXX.
func FormatCode(digits string) string {
	if len(digits) != 9 {
		return digits
	}
	return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
}
