package forest

// Package forest implements the FOREST terminal-loop decomposition: it turns
// one (sequence, dot-bracket structure) pair into a named, ordered catalog of
// balanced, length-bounded sub-structures. Downstream probe and template
// assembly is plain concatenation over this catalog (see internal/design).

import (
	"errors"
	"fmt"
)

// Structure alphabet. Pseudoknot markers must be stripped to Unpaired by the
// caller before decomposition (internal/fastx does this during parsing).
const (
	Open     byte = '('
	Close    byte = ')'
	Unpaired byte = '.'
)

var (
	// ErrMaxLength is returned for a non-positive maximum motif length.
	ErrMaxLength = errors.New("forest: max length must be positive")
	// ErrLengthMismatch is returned when sequence and structure differ in length.
	ErrLengthMismatch = errors.New("forest: sequence and structure lengths differ")
	// ErrAlphabet is returned when the structure holds characters outside "()."
	ErrAlphabet = errors.New("forest: structure contains characters outside the dot-bracket alphabet")
)

// Record is one input entity: an identifier plus a nucleotide sequence and
// its dot-bracket structure, aligned one symbol per position. Records are
// read-only for the duration of a decomposition.
type Record struct {
	Name      string
	Sequence  string
	Structure string
}

// Validate rejects records the decomposer must not touch: misaligned
// sequence/structure pairs and structures outside the three-symbol alphabet.
func (r Record) Validate() error {
	if len(r.Sequence) != len(r.Structure) {
		return fmt.Errorf("%w: %q has sequence length %d, structure length %d",
			ErrLengthMismatch, r.Name, len(r.Sequence), len(r.Structure))
	}
	for i := 0; i < len(r.Structure); i++ {
		switch r.Structure[i] {
		case Open, Close, Unpaired:
		default:
			return fmt.Errorf("%w: %q position %d is %q", ErrAlphabet, r.Name, i, r.Structure[i])
		}
	}
	return nil
}
