package forest

import "strings"

// The balance corrector turns a raw hairpin candidate into a region with
// equal OPEN and CLOSE counts by inspecting the unmatched gap text on both
// sides. The three-way case analysis is kept explicit so each guarantee can
// be tested in isolation.

type outcomeKind int

const (
	// outcomeBalanced: the candidate was already self-balanced.
	outcomeBalanced outcomeKind = iota
	// outcomeTrimmed: the candidate over-counted one bracket kind and was
	// cut down, compensated from the opposite flank.
	outcomeTrimmed
	// outcomeExtended: the candidate was grown into its flanks to absorb
	// the stem layers that close around it.
	outcomeExtended
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeBalanced:
		return "balanced"
	case outcomeTrimmed:
		return "trimmed"
	case outcomeExtended:
		return "extended"
	}
	return "unknown"
}

type outcome struct {
	kind   outcomeKind
	region span
}

// balancedRegions scans text and corrects every candidate. All returned
// regions are contiguous spans of text with equal OPEN and CLOSE counts,
// in discovery order.
func balancedRegions(text string) []outcome {
	candidates := scan(text)
	out := make([]outcome, 0, len(candidates))
	prevEnd := 0
	for i, c := range candidates {
		left := span{prevEnd, c.start}
		rightEnd := len(text)
		if i+1 < len(candidates) {
			rightEnd = candidates[i+1].start
		}
		right := span{c.end, rightEnd}
		out = append(out, correct(text, left, c, right))
		prevEnd = c.end
	}
	return out
}

// correct applies the balance rules to candidate c with flanking gaps left
// and right (both may be empty at string boundaries or between adjacent
// candidates).
func correct(text string, left, c, right span) outcome {
	leftStr := text[left.start:left.end]
	cStr := text[c.start:c.end]
	rightStr := text[right.start:right.end]

	// part_left runs from the first OPEN of the left gap to the candidate;
	// part_right runs from the candidate to the first OPEN of the right gap.
	plStart := left.end
	if i := strings.IndexByte(leftStr, Open); i >= 0 {
		plStart = left.start + i
	}
	prEnd := right.end
	if i := strings.IndexByte(rightStr, Open); i >= 0 {
		prEnd = right.start + i
	}

	whole := text[plStart:prEnd]
	balance := min(strings.Count(whole, "("), strings.Count(whole, ")"))
	defLeft := balance - strings.Count(cStr, "(")
	defRight := balance - strings.Count(cStr, ")")

	// balance is the min of the extended counts, so at most one deficit can
	// be negative.
	switch {
	case defLeft == 0 && defRight == 0:
		return outcome{kind: outcomeBalanced, region: trimUnpaired(text, c)}
	case defRight < 0:
		// Keep the candidate's prefix up to the balance-th CLOSE and
		// compensate with OPENs pulled from the left gap.
		end := c.start + prefixWithCloses(cStr, balance)
		start := left.start + suffixWithOpens(leftStr, defLeft)
		return outcome{kind: outcomeTrimmed, region: span{start, end}}
	case defLeft < 0:
		// Mirror case: keep the suffix up to the balance-th OPEN and pull
		// CLOSEs from the right gap.
		start := c.start + suffixWithOpens(cStr, balance)
		end := right.start + prefixWithCloses(rightStr, defRight)
		return outcome{kind: outcomeTrimmed, region: span{start, end}}
	default:
		// Both deficits non-negative, not both zero: absorb defLeft OPENs
		// from the end of part_left and defRight CLOSEs from the start of
		// part_right.
		start := plStart + suffixWithOpens(text[plStart:c.start], defLeft)
		end := c.end + prefixWithCloses(text[c.end:prEnd], defRight)
		return outcome{kind: outcomeExtended, region: span{start, end}}
	}
}

// prefixWithCloses returns the length of the shortest prefix of s holding
// exactly n CLOSE characters (len(s) when s has fewer).
func prefixWithCloses(s string, n int) int {
	if n <= 0 {
		return 0
	}
	seen := 0
	for i := 0; i < len(s); i++ {
		if s[i] == Close {
			seen++
			if seen == n {
				return i + 1
			}
		}
	}
	return len(s)
}

// suffixWithOpens returns the start index of the shortest suffix of s holding
// exactly n OPEN characters (0 when s has fewer).
func suffixWithOpens(s string, n int) int {
	if n <= 0 {
		return len(s)
	}
	seen := 0
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == Open {
			seen++
			if seen == n {
				return i
			}
		}
	}
	return 0
}
