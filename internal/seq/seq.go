package seq

// Package seq contains small, stateless sequence transforms shared by the
// decomposer and the probe/template assembly steps.

import "strings"

// stemForward and stemReverse are the constant stabilizing stem arms wrapped
// around a motif before barcode attachment.
const (
	stemForward = "GTGTACGAAGTTTCAGC"
	stemReverse = "GCTGAAGCTTCGTGCAC"
)

// RevCom returns the reverse complement of a nucleotide sequence. Input is
// case-normalized to upper case; U complements to A and A to T, so RNA input
// comes back as its DNA template strand. Bytes outside {A,C,G,T,U} pass
// through unchanged.
func RevCom(s string) string {
	s = strings.ToUpper(s)
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		var c byte
		switch s[i] {
		case 'A':
			c = 'T'
		case 'T', 'U':
			c = 'A'
		case 'G':
			c = 'C'
		case 'C':
			c = 'G'
		default:
			c = s[i]
		}
		b[len(s)-1-i] = c
	}
	return string(b)
}

// ConjugateStem wraps a motif sequence with the two constant stem arms, each
// truncated to n bases. n is clamped to the available arm length.
func ConjugateStem(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if n > len(stemForward) {
		n = len(stemForward)
	}
	return stemForward[:n] + s + stemReverse[:n]
}
