// Package worker defines the boundary to the external enrollment worker: the
// invocation contract and the parser for its stdout.
package worker

import "strings"

// Invocation carries the positional arguments passed to the worker process:
// <username> <unique_id> <device>.
type Invocation struct {
	Username string
	UniqueID string
	Device   string
}

// Result is the captured outcome of one worker run. ExitCode is meaningful
// only when the process actually ran to exit.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

const (
	legacyPrefix  = "Card "
	legacyMarker  = "enrolled for"
	uidLinePrefix = "UID_RECEIVED:"
)

// ExtractDeviceID scans worker stdout for a device identifier. The grammar is
// fixed: a legacy "Card <id> ... enrolled for ..." line takes precedence over
// a "UID_RECEIVED:<id>" line; the first matching line wins and all other
// output is ignored. Returns false when no line matches.
//
// Do not add patterns ad hoc; a new success convention from the worker gets an
// explicit entry here with documented precedence.
func ExtractDeviceID(stdout string) (string, bool) {
	for _, line := range strings.Split(stdout, "\n") {
		switch {
		case strings.HasPrefix(line, legacyPrefix) && strings.Contains(line, legacyMarker):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], true
			}
		case strings.HasPrefix(line, uidLinePrefix):
			return strings.TrimSpace(strings.TrimPrefix(line, uidLinePrefix)), true
		}
	}
	return "", false
}
