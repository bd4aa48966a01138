package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/config"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/design"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/fastx"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/forest"

	"github.com/charmbracelet/log"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write buffers bytes until a newline is found; for each full line, write a
// timestamped line to the underlying writer. Partial lines are kept in the
// buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	total := n
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			break
		}
		ts := time.Now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return total, err
		}
	}
	return total, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries
// that inspect the file descriptor (for TTY detection) can work with wrapped
// writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

func main() {
	// CLI flags
	modeFlag := flag.String("mode", "extract", "operation: extract, library, template, microarray, workflow")
	inputFlag := flag.String("in", "", "input FASTA file with sequences and dot-bracket structures")
	barcodeFlag := flag.String("barcodes", "", "barcode pool file (library/template/microarray/workflow modes)")
	outputFlag := flag.String("out", "", "output file path (default: stdout)")
	outDirFlag := flag.String("out-dir", "", "output directory (workflow mode)")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	maxLenFlag := flag.Int("max-length", 0, "maximum motif length (default 134)")
	numBarcodesFlag := flag.Int("num-barcodes", 0, "barcodes per RNA structure (default 3)")
	stemLenFlag := flag.Int("stem-length", 0, "stabilizing stem arm length (default 17)")
	workersFlag := flag.Int("workers", 0, "records decomposed in parallel (default: one per CPU)")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("forest", version)
		return
	}

	// load config (optional file)
	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad config file: %v\n", err)
		os.Exit(1)
	}

	// merge CLI flags into config (flags override config when provided)
	if *inputFlag != "" {
		cfg.InputFile = *inputFlag
	}
	if *barcodeFlag != "" {
		cfg.BarcodeFile = *barcodeFlag
	}
	if *outputFlag != "" {
		cfg.OutputFile = *outputFlag
	}
	if *outDirFlag != "" {
		cfg.OutputDir = *outDirFlag
	}
	if *maxLenFlag > 0 {
		cfg.MaxLength = *maxLenFlag
	}
	if *numBarcodesFlag > 0 {
		cfg.NumBarcodes = *numBarcodesFlag
	}
	if *stemLenFlag > 0 {
		cfg.StemLength = *stemLenFlag
	}
	if *workersFlag > 0 {
		cfg.Workers = *workersFlag
	}

	// configure logger output
	var loggerOut io.Writer = os.Stderr
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			// write to both stderr and file so running interactively still shows logs
			loggerOut = io.MultiWriter(os.Stderr, f)
			defer func() { _ = f.Close() }()
		}
	}
	// If stderr is a terminal-like device, force colors for libraries that honor FORCE_COLOR.
	if fi, err := os.Stderr.Stat(); err == nil {
		if fi.Mode()&os.ModeCharDevice != 0 {
			_ = os.Setenv("FORCE_COLOR", "1")
		}
	}
	tw := &timestampWriter{w: loggerOut}
	termW := &terminalWriter{w: tw, fd: os.Stderr.Fd()}
	logger := log.New(termW)

	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		switch strings.ToLower(cfg.LogLevel) {
		case "debug":
			logger.SetLevel(log.DebugLevel)
		case "info", "":
			logger.SetLevel(log.InfoLevel)
		case "warn", "warning":
			logger.SetLevel(log.WarnLevel)
		case "error":
			logger.SetLevel(log.ErrorLevel)
		default:
			logger.SetLevel(log.InfoLevel)
			logger.Warn("unknown log_level in config.json, defaulting to info", "provided", cfg.LogLevel)
		}
	}

	opt := design.Default()
	if cfg.MaxLength > 0 {
		opt.MaxLength = cfg.MaxLength
	}
	if cfg.NumBarcodes > 0 {
		opt.NumBarcodes = cfg.NumBarcodes
	}
	if cfg.StemLength > 0 {
		opt.StemLength = cfg.StemLength
	}
	if cfg.BarcodePrefix != "" {
		opt.BarcodePrefix = cfg.BarcodePrefix
	}
	if cfg.T7Promoter != "" {
		opt.T7Promoter = cfg.T7Promoter
	}

	logger.Info("starting forest", "mode", *modeFlag, "input", cfg.InputFile,
		"max_length", opt.MaxLength, "workers", cfg.Workers)

	if cfg.InputFile == "" {
		logger.Fatal("no input file given (use -in or input_file in config.json)")
	}
	records := readRecords(logger, cfg.InputFile)

	ctx := context.Background()
	switch *modeFlag {
	case "extract":
		res, recordErrs, err := forest.ExtractAll(ctx, records, opt.MaxLength, cfg.Workers)
		if err != nil {
			logger.Fatal("extraction failed", "err", err)
		}
		reportIssues(logger, res.Warnings, recordErrs)
		logger.Info("extracted motifs", "records", len(records)-len(recordErrs), "motifs", len(res.Catalog))
		writeCatalog(logger, cfg.OutputFile, res.Catalog)

	case "library", "template", "microarray":
		barcodes := readBarcodes(logger, cfg.BarcodeFile)
		res, recordErrs, err := forest.ExtractAll(ctx, records, opt.MaxLength, cfg.Workers)
		if err != nil {
			logger.Fatal("extraction failed", "err", err)
		}
		reportIssues(logger, res.Warnings, recordErrs)

		var product forest.Catalog
		switch *modeFlag {
		case "library":
			product, err = design.BuildLibrary(res.Catalog, barcodes, opt)
		case "template":
			product, err = design.BuildTemplates(res.Catalog, barcodes, opt)
		case "microarray":
			product, err = design.BuildMicroarray(res.Catalog, barcodes, opt)
		}
		if err != nil {
			logger.Fatal("assembly failed", "err", err)
		}
		logger.Info("assembled product", "mode", *modeFlag, "motifs", len(res.Catalog),
			"entries", len(product), "barcodes_per_structure", opt.NumBarcodes)
		writeCatalog(logger, cfg.OutputFile, product)

	case "workflow":
		barcodes := readBarcodes(logger, cfg.BarcodeFile)
		if cfg.OutputDir == "" {
			logger.Fatal("workflow mode needs -out-dir")
		}
		wf, err := design.Workflow(ctx, records, barcodes, opt, cfg.Workers)
		if err != nil {
			logger.Fatal("workflow failed", "err", err)
		}
		reportIssues(logger, wf.Warnings, wf.RecordErrors)
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			logger.Fatal("cannot create output directory", "path", cfg.OutputDir, "err", err)
		}
		outputs := []struct {
			file    string
			catalog forest.Catalog
		}{
			{"motifs.txt", wf.Motifs},
			{"rna_library.txt", wf.Library},
			{"dna_templates.txt", wf.Templates},
			{"microarray_barcodes.txt", wf.Array},
		}
		for _, o := range outputs {
			writeCatalog(logger, filepath.Join(cfg.OutputDir, o.file), o.catalog)
		}
		logger.Info("workflow complete", "motifs", len(wf.Motifs), "probes", len(wf.Library),
			"templates", len(wf.Templates), "array_barcodes", len(wf.Array), "dir", cfg.OutputDir)

	default:
		logger.Fatal("unknown mode", "mode", *modeFlag)
	}
}

func readRecords(logger *log.Logger, path string) []forest.Record {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("failed to open input", "path", path, "err", err)
	}
	defer f.Close()
	records, err := fastx.ParseStructured(f)
	if err != nil {
		logger.Fatal("failed to parse input", "path", path, "err", err)
	}
	logger.Info("parsed input", "path", path, "records", len(records))
	return records
}

func readBarcodes(logger *log.Logger, path string) []string {
	if path == "" {
		logger.Fatal("no barcode file given (use -barcodes or barcode_file in config.json)")
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("failed to open barcode pool", "path", path, "err", err)
	}
	defer f.Close()
	barcodes, err := fastx.LoadBarcodes(f)
	if err != nil {
		logger.Fatal("failed to read barcode pool", "path", path, "err", err)
	}
	logger.Info("loaded barcode pool", "path", path, "barcodes", len(barcodes))
	return barcodes
}

func reportIssues(logger *log.Logger, warnings []forest.Warning, recordErrs []forest.RecordError) {
	for _, e := range recordErrs {
		logger.Warn("skipped malformed record", "record", e.Record, "err", e.Err)
	}
	for _, w := range warnings {
		logger.Warn("extraction anomaly", "record", w.Record, "kind", w.Kind.String(), "detail", w.Detail)
	}
}

func writeCatalog(logger *log.Logger, path string, catalog forest.Catalog) {
	if path == "" {
		if err := fastx.WriteCatalog(os.Stdout, catalog); err != nil {
			logger.Fatal("failed to write catalog", "err", err)
		}
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Fatal("failed to create output", "path", path, "err", err)
	}
	defer f.Close()
	if err := fastx.WriteCatalog(f, catalog); err != nil {
		logger.Fatal("failed to write catalog", "path", path, "err", err)
	}
	logger.Info("wrote catalog", "path", path, "entries", len(catalog))
}
