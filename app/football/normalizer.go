package football

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize extracts an event from a description of the form
//
//	(<league>) <home> vs <guest>: <h>-<g> - <event>
//
// A match without a score ("<guest>: - - Match Postponed") gets " : ".
// It reports false when a segment cannot be located.
func Normalize(description string) (Event, bool) {
	head, kind, ok := strings.Cut(description, " - ")
	if !ok || strings.TrimSpace(kind) == "" {
		return Event{}, false
	}

	homeSegment, guestSegment, ok := strings.Cut(head, " vs ")
	if !ok {
		return Event{}, false
	}

	leagueEnd := strings.LastIndex(homeSegment, ") ")
	if leagueEnd < 0 {
		return Event{}, false
	}
	home := homeSegment[leagueEnd+2:]

	guest, _, ok := strings.Cut(guestSegment, ":")
	if !ok {
		return Event{}, false
	}

	_, scoreSegment, ok := strings.Cut(description, ": ")
	if !ok {
		return Event{}, false
	}

	score, ok := formatScore(scoreSegment)
	if !ok {
		return Event{}, false
	}

	ev := Event{
		Kind:  strings.TrimSpace(kind),
		Home:  TeamName(home),
		Guest: TeamName(guest),
		Score: score,
	}
	if ev.Home == "" || ev.Guest == "" {
		return Event{}, false
	}

	return ev, true
}

const emptyScore = " : "

// formatScore turns the first token of "1-1 - Kick Off" into "1 : 1".
func formatScore(segment string) (string, bool) {
	fields := strings.Fields(segment)
	if len(fields) == 0 || fields[0] == "-" {
		return emptyScore, true
	}

	home, guest, ok := strings.Cut(fields[0], "-")
	if !ok || home == "" || guest == "" {
		return "", false
	}

	return home + " : " + guest, true
}

// TeamName canonicalizes a team name so that feed text and stored
// subscriptions compare equal regardless of Unicode composition.
func TeamName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
