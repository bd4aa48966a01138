package design

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/forest"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/seq"
)

func testOptions() Options {
	opt := Default()
	opt.NumBarcodes = 2
	opt.StemLength = 3
	return opt
}

func testMotifs() forest.Catalog {
	return forest.Catalog{
		{Name: "h_Motif_1", Sequence: "GGAAACC", Structure: "((...))"},
		{Name: "h_Motif_2", Sequence: "GGAACC", Structure: "((..))"},
	}
}

func testBarcodes() []string {
	return []string{"AACCGG", "TTGGCC", "ACACAC", "GTGTGT"}
}

func TestBarcodeCapacityCheck(t *testing.T) {
	opt := testOptions()
	opt.NumBarcodes = 3
	_, err := BuildLibrary(testMotifs(), testBarcodes(), opt)
	if !errors.Is(err, ErrBarcodeShortage) {
		t.Fatalf("expected ErrBarcodeShortage, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "need 6, have 4") {
		t.Fatalf("shortage error should report counts, got %v", err)
	}
}

func TestBuildLibrary(t *testing.T) {
	opt := testOptions()
	library, err := BuildLibrary(testMotifs(), testBarcodes(), opt)
	if err != nil {
		t.Fatalf("BuildLibrary failed: %v", err)
	}
	if len(library) != 4 {
		t.Fatalf("expected 4 probes, got %d", len(library))
	}
	first := library[0]
	if first.Name != "h_Motif_1_Barcode_1" {
		t.Fatalf("unexpected probe name: %q", first.Name)
	}
	// prefix + barcode + stem-conjugated motif, transcribed
	wantDNA := "GGG" + "AACCGG" + seq.ConjugateStem("GGAAACC", 3)
	want := strings.ReplaceAll(wantDNA, "T", "U")
	if first.Sequence != want {
		t.Fatalf("unexpected probe sequence:\ngot  %q\nwant %q", first.Sequence, want)
	}
	if strings.ContainsRune(first.Sequence, 'T') {
		t.Fatalf("probe should be RNA: %q", first.Sequence)
	}
	if first.Structure != "((...))" {
		t.Fatalf("probe should keep the motif structure, got %q", first.Structure)
	}
	// barcodes are consumed in pool order across motifs
	if !strings.Contains(library[2].Sequence, strings.ReplaceAll("ACACAC", "T", "U")) {
		t.Fatalf("third probe should carry the third barcode: %q", library[2].Sequence)
	}
}

func TestBuildTemplates(t *testing.T) {
	opt := testOptions()
	templates, err := BuildTemplates(testMotifs(), testBarcodes(), opt)
	if err != nil {
		t.Fatalf("BuildTemplates failed: %v", err)
	}
	if len(templates) != 4 {
		t.Fatalf("expected 4 templates, got %d", len(templates))
	}
	first := templates[0]
	if first.Name != "h_Motif_1_Barcode_1_template" {
		t.Fatalf("unexpected template name: %q", first.Name)
	}
	if first.Structure != "" {
		t.Fatalf("templates carry no structure, got %q", first.Structure)
	}
	construct := opt.T7Promoter + "GGG" + "AACCGG" + seq.ConjugateStem("GGAAACC", 3)
	want := seq.RevCom(construct)
	if first.Sequence != want {
		t.Fatalf("unexpected template:\ngot  %q\nwant %q", first.Sequence, want)
	}
	if strings.ContainsRune(first.Sequence, 'U') {
		t.Fatalf("template should be DNA: %q", first.Sequence)
	}
}

func TestBuildMicroarray(t *testing.T) {
	opt := testOptions()
	array, err := BuildMicroarray(testMotifs(), testBarcodes(), opt)
	if err != nil {
		t.Fatalf("BuildMicroarray failed: %v", err)
	}
	if len(array) != 4 {
		t.Fatalf("expected 4 capture probes, got %d", len(array))
	}
	first := array[0]
	if first.Name != "h_Motif_1_Barcode_1_array" {
		t.Fatalf("unexpected capture name: %q", first.Name)
	}
	if first.Sequence != seq.RevCom("GGG"+"AACCGG") {
		t.Fatalf("capture probe should be revcom of prefix+barcode, got %q", first.Sequence)
	}
}

func TestWorkflow(t *testing.T) {
	records := []forest.Record{
		{Name: "h", Sequence: "GGAAACCAAGGAACC", Structure: "((...))..((..))"},
	}
	opt := testOptions()
	wf, err := Workflow(context.Background(), records, testBarcodes(), opt, 0)
	if err != nil {
		t.Fatalf("Workflow failed: %v", err)
	}
	if len(wf.Motifs) != 2 {
		t.Fatalf("expected 2 motifs, got %+v", wf.Motifs)
	}
	if len(wf.Library) != 4 || len(wf.Templates) != 4 || len(wf.Array) != 4 {
		t.Fatalf("unexpected product sizes: library=%d templates=%d array=%d",
			len(wf.Library), len(wf.Templates), len(wf.Array))
	}
	if len(wf.RecordErrors) != 0 {
		t.Fatalf("unexpected record errors: %+v", wf.RecordErrors)
	}
}

func TestWorkflowPropagatesShortage(t *testing.T) {
	records := []forest.Record{
		{Name: "h", Sequence: "GGAAACC", Structure: "((...))"},
	}
	opt := testOptions()
	_, err := Workflow(context.Background(), records, []string{"AACCGG"}, opt, 0)
	if !errors.Is(err, ErrBarcodeShortage) {
		t.Fatalf("expected ErrBarcodeShortage, got %v", err)
	}
}
