package fastx

// Package fastx parses the FASTA-like three-line records used across the
// toolkit (header, nucleotide line, dot-bracket line), loads barcode pools
// and writes catalogs back out in the same format.

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/forest"
)

// ParseStructured reads records of the form
//
//	>name|optional metadata
//	SEQUENCE
//	STRUCTURE (optional trailing tokens such as free energy are dropped)
//
// The record name is the first '|'-separated token of the header. Pseudoknot
// markers '[' and ']' and the strand separator '&' are rewritten to '.', so
// the structures are ready for decomposition. Incomplete records (missing
// sequence or structure) are silently skipped, matching the conservative
// parser this format has always had.
func ParseStructured(r io.Reader) ([]forest.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []forest.Record
	var name, sequence, structure string
	flush := func() {
		if name != "" && sequence != "" && structure != "" {
			records = append(records, forest.Record{
				Name:      name,
				Sequence:  sequence,
				Structure: cleanStructure(structure),
			})
		}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, ">"):
			flush()
			name = strings.SplitN(line[1:], "|", 2)[0]
			sequence, structure = "", ""
		case line == "":
		case isSequenceLine(line):
			sequence = strings.ToUpper(line)
		case line[0] == '(' || line[0] == '.' || line[0] == ')':
			structure = line
		}
	}
	flush()
	return records, scanner.Err()
}

func isSequenceLine(line string) bool {
	switch line[0] {
	case 'a', 't', 'u', 'g', 'c', 'A', 'T', 'U', 'G', 'C':
		return true
	}
	return false
}

func cleanStructure(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	replacer := strings.NewReplacer("&", ".", "[", ".", "]", ".")
	return replacer.Replace(s)
}

// LoadBarcodes reads one DNA barcode per line, upper-cased. Lines not
// starting with a nucleotide (comments, headers) are ignored.
func LoadBarcodes(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var barcodes []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line[0] {
		case 'a', 'c', 'g', 't', 'A', 'C', 'G', 'T':
			barcodes = append(barcodes, strings.ToUpper(line))
		}
	}
	return barcodes, scanner.Err()
}

// WriteCatalog writes a catalog in the three-line record format. Entries
// without a structure (assembled DNA) are written as two-line records rather
// than dropped.
func WriteCatalog(w io.Writer, c forest.Catalog) error {
	for _, m := range c {
		if m.Sequence == "" {
			continue
		}
		if m.Structure == "" {
			if _, err := fmt.Fprintf(w, ">%s\n%s\n", m.Name, m.Sequence); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ">%s\n%s\n%s\n", m.Name, m.Sequence, m.Structure); err != nil {
			return err
		}
	}
	return nil
}

// ReadCatalog parses a file previously produced by WriteCatalog. Unlike
// ParseStructured it keeps entries that have no structure line.
func ReadCatalog(r io.Reader) (forest.Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var catalog forest.Catalog
	var cur *forest.Motif
	flush := func() {
		if cur != nil && cur.Sequence != "" {
			catalog = append(catalog, *cur)
		}
		cur = nil
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, ">"):
			flush()
			cur = &forest.Motif{Name: line[1:]}
		case line == "" || cur == nil:
		case isSequenceLine(line):
			cur.Sequence = strings.ToUpper(line)
		case line[0] == '(' || line[0] == '.' || line[0] == ')':
			cur.Structure = line
		}
	}
	flush()
	return catalog, scanner.Err()
}
