package js8frame

import "regexp"

// Callsign grammar, adapted from the upstream Python parser's
// VALID_CALLSIGN_REX / VALID_GROUP_CALLSIGN_REX / GRID4_REX constants
// into Go regexp syntax.
var (
	callsignRex = regexp.MustCompile(
		`^(([0-9]|[A-Z]){1,3}/)?([0-9][A-Z][0-9][A-Z]{1,3}|[A-Z]{2}[0-9][A-Z]{1,3}|[A-Z][0-9]{1,2}[A-Z]{1,3})(/([0-9]|[A-Z]){1,2})?$`)

	groupCallsignRex = regexp.MustCompile(
		`^[@][A-Z0-9/]{0,3}[/]?[A-Z0-9/]{0,3}[/]?[A-Z0-9/]{0,3}`)

	grid4Rex = regexp.MustCompile(`^\w{2}\d{2}`)
)

// ignoreValidationFreq lists bands for which frame validation is
// skipped entirely (currently just 27246).
var ignoreValidationFreq = map[int]bool{27246: true}

// IsValidCallsign reports whether s is a plain (non-group) callsign.
func IsValidCallsign(s string) bool {
	return s != "" && callsignRex.MatchString(s)
}

// IsValidGroupCallsign reports whether s is an @-group callsign.
func IsValidGroupCallsign(s string) bool {
	return s != "" && groupCallsignRex.MatchString(s)
}

// IsValidGrid4 reports whether s is at least a valid 4-character grid.
func IsValidGrid4(s string) bool {
	return s != "" && grid4Rex.MatchString(s)
}

// ShouldSkipValidation reports whether freqKHz is on the ignore list.
func ShouldSkipValidation(freqKHz int) bool {
	return ignoreValidationFreq[freqKHz]
}
