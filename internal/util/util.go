// Package util parses the string arguments the game host passes to the extension.
package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArg unquotes and unescapes one host argument.
func CleanArg(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// CleanArgs applies CleanArg to every element in place and returns args.
func CleanArgs(args []string) []string {
	for i, v := range args {
		args[i] = CleanArg(v)
	}
	return args
}

// ParseBool accepts the host's true/false spellings and 1/0.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(CleanArg(s)) {
	case "true", "1":
		return true, nil
	case "false", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseHandle parses a display object handle. The host sends numbers as
// integers or as floats with no fraction.
func ParseHandle(s string) (model.Handle, error) {
	s = CleanArg(s)
	if h, err := strconv.ParseUint(s, 10, 64); err == nil {
		return model.Handle(h), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != float64(uint64(f)) {
		return 0, fmt.Errorf("invalid handle %q", s)
	}
	return model.Handle(uint64(f)), nil
}
