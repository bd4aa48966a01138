package forest

import "strings"

// pack shrinks a balanced region until it is shorter than limit by
// repeatedly stripping matching outer stem layers. A region that stops
// shrinking (for instance one with no unpaired character left) is returned
// as-is; the caller applies the final length filter and may drop it.
func pack(text string, sp span, limit int) span {
	if sp.length() <= limit {
		return sp
	}
	for sp.length() >= limit {
		next := packOnce(text, sp)
		if next == sp {
			break
		}
		sp = next
	}
	return sp
}

// packOnce removes one outer layer: it counts the boundary stem runs, then
// cuts the region past that many OPENs from the start and CLOSEs from the
// end, keeping the innermost core.
func packOnce(text string, sp span) span {
	region := text[sp.start:sp.end]
	if region == "" || !strings.ContainsRune(region, rune(Unpaired)) {
		return sp
	}

	lead := 0
	for lead < len(region) && region[lead] != Unpaired {
		lead++
	}
	trail := 0
	for trail < len(region) && region[len(region)-1-trail] != Unpaired {
		trail++
	}
	packNum := max(lead, trail)

	// Offset just past the packNum-th OPEN from the start.
	cut := len(region)
	seen := 0
	for p := 0; p < len(region); p++ {
		if region[p] == Open {
			seen++
			if seen == packNum {
				cut = p + 1
				break
			}
		}
	}
	// Distance from the end to the packNum-th CLOSE.
	back := len(region)
	seen = 0
	for p := len(region) - 1; p >= 0; p-- {
		if region[p] == Close {
			seen++
			if seen == packNum {
				back = len(region) - 1 - p
				break
			}
		}
	}

	if cut < len(region) && back < len(region) {
		next := span{sp.start + cut, sp.start + len(region) - 1 - back}
		if next.empty() {
			return span{next.start, next.start}
		}
		return trimUnpaired(text, next)
	}
	return trimUnpaired(text, sp)
}
