package forest

// span is a half-open [start, end) character range in a structure string.
// Regions keep their absolute offsets from the scanner onward, so consumed
// areas are tracked by index instead of substring re-search.
type span struct {
	start, end int
}

func (s span) length() int { return s.end - s.start }

func (s span) empty() bool { return s.end <= s.start }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

func overlapsAny(s span, consumed []span) bool {
	for _, c := range consumed {
		if s.overlaps(c) {
			return true
		}
	}
	return false
}

// trimUnpaired shrinks sp until both boundary characters of the underlying
// text are paired markers. OPEN/CLOSE boundaries are never touched.
func trimUnpaired(text string, sp span) span {
	for sp.start < sp.end && text[sp.start] == Unpaired {
		sp.start++
	}
	for sp.end > sp.start && text[sp.end-1] == Unpaired {
		sp.end--
	}
	return sp
}
