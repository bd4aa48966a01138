package forest

import "regexp"

// loopPattern is the hairpin-tip grammar: one or more OPEN, one or more
// UNPAIRED, one or more CLOSE. Only innermost terminal loops match it, so
// greedy leftmost scanning naturally isolates hairpin tips.
var loopPattern = regexp.MustCompile(`\(+\.+\)+`)

// scan returns the maximal, non-overlapping hairpin-tip candidates of the
// structure text in discovery (left-to-right) order.
func scan(text string) []span {
	matches := loopPattern.FindAllStringIndex(text, -1)
	spans := make([]span, len(matches))
	for i, m := range matches {
		spans[i] = span{m[0], m[1]}
	}
	return spans
}
