package design

// Package design builds the downstream products of a motif catalog: the
// barcoded RNA probe library, the DNA template pool for oligo ordering and
// the microarray capture barcodes. Every step is deterministic string
// concatenation over the catalog; the structural work happens upstream in
// internal/forest.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/forest"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/seq"
)

// ErrBarcodeShortage is returned before any assembly begins when the barcode
// pool cannot cover the demand.
var ErrBarcodeShortage = errors.New("design: not enough barcodes")

// Options control motif extraction and product assembly.
type Options struct {
	MaxLength     int
	NumBarcodes   int
	BarcodePrefix string
	StemLength    int
	T7Promoter    string
}

// Default returns the historical tool defaults.
func Default() Options {
	return Options{
		MaxLength:     134,
		NumBarcodes:   3,
		BarcodePrefix: "GGG",
		StemLength:    17,
		T7Promoter:    "GCGCTAATACGACTCACTATA",
	}
}

// checkCapacity fails fast when the pool is smaller than the demand,
// reporting required vs available counts.
func checkCapacity(motifs forest.Catalog, barcodes []string, per int) error {
	structures := 0
	for _, m := range motifs {
		if m.Sequence != "" {
			structures++
		}
	}
	need := structures * per
	if need > len(barcodes) {
		return fmt.Errorf("%w: need %d, have %d", ErrBarcodeShortage, need, len(barcodes))
	}
	return nil
}

// probe assembles the barcoded RNA probe for one motif: prefix + barcode +
// stem-conjugated motif, transcribed to RNA.
func probe(m forest.Motif, barcode string, opt Options) string {
	s := opt.BarcodePrefix + barcode + seq.ConjugateStem(m.Sequence, opt.StemLength)
	return strings.ReplaceAll(strings.ToUpper(s), "T", "U")
}

// BuildLibrary generates the barcoded RNA probe library. Each motif receives
// opt.NumBarcodes probes named "<motif>_Barcode_<i>", consuming barcodes in
// pool order.
func BuildLibrary(motifs forest.Catalog, barcodes []string, opt Options) (forest.Catalog, error) {
	if err := checkCapacity(motifs, barcodes, opt.NumBarcodes); err != nil {
		return nil, err
	}
	var library forest.Catalog
	idx := 0
	for _, m := range motifs {
		if m.Sequence == "" || m.Structure == "" {
			continue
		}
		for b := 1; b <= opt.NumBarcodes; b++ {
			if idx >= len(barcodes) {
				break
			}
			library = append(library, forest.Motif{
				Name:      fmt.Sprintf("%s_Barcode_%d", m.Name, b),
				Structure: m.Structure,
				Sequence:  probe(m, barcodes[idx], opt),
			})
			idx++
		}
	}
	return library, nil
}

// BuildTemplates generates the DNA template pool for oligo ordering: the T7
// promoter is prepended to each RNA probe and the whole construct is
// reverse-complemented as DNA. Template entries carry no structure.
func BuildTemplates(motifs forest.Catalog, barcodes []string, opt Options) (forest.Catalog, error) {
	if err := checkCapacity(motifs, barcodes, opt.NumBarcodes); err != nil {
		return nil, err
	}
	var templates forest.Catalog
	idx := 0
	for _, m := range motifs {
		if m.Sequence == "" || m.Structure == "" {
			continue
		}
		for b := 1; b <= opt.NumBarcodes; b++ {
			if idx >= len(barcodes) {
				break
			}
			construct := opt.T7Promoter + probe(m, barcodes[idx], opt)
			dna := seq.RevCom(strings.ReplaceAll(strings.ToUpper(construct), "U", "T"))
			templates = append(templates, forest.Motif{
				Name:     fmt.Sprintf("%s_Barcode_%d_template", m.Name, b),
				Sequence: dna,
			})
			idx++
		}
	}
	return templates, nil
}

// BuildMicroarray generates the capture probes that hybridize to the barcode
// portion of each RNA probe: the reverse complement of prefix + barcode.
func BuildMicroarray(motifs forest.Catalog, barcodes []string, opt Options) (forest.Catalog, error) {
	if err := checkCapacity(motifs, barcodes, opt.NumBarcodes); err != nil {
		return nil, err
	}
	var array forest.Catalog
	idx := 0
	for _, m := range motifs {
		if m.Sequence == "" || m.Structure == "" {
			continue
		}
		for b := 1; b <= opt.NumBarcodes; b++ {
			if idx >= len(barcodes) {
				break
			}
			array = append(array, forest.Motif{
				Name:     fmt.Sprintf("%s_Barcode_%d_array", m.Name, b),
				Sequence: seq.RevCom(opt.BarcodePrefix + barcodes[idx]),
			})
			idx++
		}
	}
	return array, nil
}

// WorkflowResult bundles the outputs of the comprehensive workflow.
type WorkflowResult struct {
	Motifs       forest.Catalog
	Library      forest.Catalog
	Templates    forest.Catalog
	Array        forest.Catalog
	Warnings     []forest.Warning
	RecordErrors []forest.RecordError
}

// Workflow runs extraction and all three assembly steps over a record batch.
// Each product allocates barcodes independently from the start of the pool,
// the same way the standalone steps do.
func Workflow(ctx context.Context, records []forest.Record, barcodes []string, opt Options, workers int) (WorkflowResult, error) {
	res, recordErrs, err := forest.ExtractAll(ctx, records, opt.MaxLength, workers)
	if err != nil {
		return WorkflowResult{}, err
	}
	out := WorkflowResult{
		Motifs:       res.Catalog,
		Warnings:     res.Warnings,
		RecordErrors: recordErrs,
	}
	if out.Library, err = BuildLibrary(res.Catalog, barcodes, opt); err != nil {
		return WorkflowResult{}, err
	}
	if out.Templates, err = BuildTemplates(res.Catalog, barcodes, opt); err != nil {
		return WorkflowResult{}, err
	}
	if out.Array, err = BuildMicroarray(res.Catalog, barcodes, opt); err != nil {
		return WorkflowResult{}, err
	}
	return out, nil
}
