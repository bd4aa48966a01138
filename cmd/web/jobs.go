package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/design"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/fastx"
	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/forest"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Job persistence supports two stores: a flat JSON file (default) and a
// SQLite database for deployments that want durable concurrent access.
var (
	jobsStore = "json" // "json" or "sqlite"
	jobsPath  = "jobs.json"
	jobsDB    *sql.DB
)

const (
	statePending   = "pending"
	stateRunning   = "running"
	stateCompleted = "completed"
	stateFailed    = "failed"
	stateCancelled = "cancelled"
)

// Job is one background design run.
type Job struct {
	ID        string    `json:"job_id"`
	Name      string    `json:"job_name"`
	Op        string    `json:"op"`
	State     string    `json:"state"`
	Message   string    `json:"message,omitempty"`
	Output    string    `json:"output,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// jobRequest is the submit payload. Paths are resolved on the server host.
type jobRequest struct {
	Op          string `json:"op"`
	Name        string `json:"name,omitempty"`
	Input       string `json:"input"`
	Barcodes    string `json:"barcodes,omitempty"`
	Output      string `json:"output,omitempty"`
	OutputDir   string `json:"output_dir,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
	NumBarcodes int    `json:"num_barcodes,omitempty"`
}

func openSQLiteStore(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS jobs (
        id TEXT PRIMARY KEY,
        name TEXT,
        op TEXT,
        state TEXT,
        message TEXT,
        output TEXT,
        created_at TEXT,
        updated_at TEXT
    )`); err != nil {
		db.Close()
		return err
	}
	jobsDB = db
	return nil
}

// saveJobs persists the full job list to the configured store.
func saveJobs(path string, jobs []Job) error {
	if jobsStore == "sqlite" {
		if jobsDB == nil {
			return errors.New("sqlite store not opened")
		}
		tx, err := jobsDB.Begin()
		if err != nil {
			return err
		}
		for _, j := range jobs {
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO jobs (id, name, op, state, message, output, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				j.ID, j.Name, j.Op, j.State, j.Message, j.Output,
				j.CreatedAt.UTC().Format(time.RFC3339), j.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadJobs reads all persisted jobs from the configured store.
func loadJobs(path string) ([]Job, error) {
	if jobsStore == "sqlite" {
		if jobsDB == nil {
			return nil, errors.New("sqlite store not opened")
		}
		rows, err := jobsDB.Query(`SELECT id, name, op, state, message, output, created_at, updated_at FROM jobs`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var jobs []Job
		for rows.Next() {
			var j Job
			var created, updated string
			if err := rows.Scan(&j.ID, &j.Name, &j.Op, &j.State, &j.Message, &j.Output, &created, &updated); err != nil {
				return nil, err
			}
			j.CreatedAt, _ = time.Parse(time.RFC3339, created)
			j.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
			jobs = append(jobs, j)
		}
		return jobs, rows.Err()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// jobManager runs design operations in background goroutines and tracks
// their lifecycle. A running job holds a context cancel func so it can be
// interrupted between pipeline stages.
type jobManager struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc
	jobsDir string
	logger  *log.Logger
}

func newJobManager(jobsDir string, logger *log.Logger) (*jobManager, error) {
	if err := os.MkdirAll(jobsDir, 0o755); err != nil {
		return nil, err
	}
	m := &jobManager{
		jobs:    make(map[string]*Job),
		cancels: make(map[string]context.CancelFunc),
		jobsDir: jobsDir,
		logger:  logger,
	}
	persisted, err := loadJobs(jobsPath)
	if err != nil {
		return nil, err
	}
	for i := range persisted {
		j := persisted[i]
		// anything that was mid-flight when the server stopped is gone
		if j.State == stateRunning || j.State == statePending {
			j.State = stateFailed
			j.Message = "interrupted by server restart"
		}
		m.jobs[j.ID] = &j
	}
	return m, nil
}

func (m *jobManager) persistLocked() {
	jobs := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		jobs = append(jobs, *j)
	}
	if err := saveJobs(jobsPath, jobs); err != nil {
		m.logger.Printf("warning: failed to persist jobs: %v", err)
	}
}

func (m *jobManager) setState(id, state, message, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return
	}
	j.State = state
	j.Message = message
	if output != "" {
		j.Output = output
	}
	j.UpdatedAt = time.Now().UTC()
	if state == stateCompleted || state == stateFailed || state == stateCancelled {
		if cancel, ok := m.cancels[id]; ok {
			cancel()
			delete(m.cancels, id)
		}
	}
	m.persistLocked()
}

// submit registers a job and starts it in the background.
func (m *jobManager) submit(req jobRequest) (Job, error) {
	switch req.Op {
	case "extract", "library", "template", "microarray", "workflow":
	default:
		return Job{}, fmt.Errorf("unknown op %q", req.Op)
	}
	if req.Input == "" {
		return Job{}, errors.New("missing input path")
	}

	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	name := req.Name
	if name == "" {
		name = "forest_" + id
	}
	now := time.Now().UTC()
	job := &Job{ID: id, Name: name, Op: req.Op, State: statePending, CreatedAt: now, UpdatedAt: now}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.jobs[id] = job
	m.cancels[id] = cancel
	m.persistLocked()
	m.mu.Unlock()

	go m.run(ctx, id, req)
	return *job, nil
}

func (m *jobManager) run(ctx context.Context, id string, req jobRequest) {
	m.setState(id, stateRunning, "", "")
	output, err := m.runJob(ctx, id, req)
	switch {
	case err == nil:
		m.setState(id, stateCompleted, "", output)
	case errors.Is(err, context.Canceled):
		m.setState(id, stateCancelled, "cancelled", "")
	default:
		m.logger.Printf("job %s failed: %v", id, err)
		m.setState(id, stateFailed, err.Error(), "")
	}
}

// runJob performs the actual pipeline work for one job and returns a
// description of where the results were written.
func (m *jobManager) runJob(ctx context.Context, id string, req jobRequest) (string, error) {
	records, err := readRecordFile(req.Input)
	if err != nil {
		return "", err
	}

	opt := design.Default()
	if req.MaxLength > 0 {
		opt.MaxLength = req.MaxLength
	}
	if req.NumBarcodes > 0 {
		opt.NumBarcodes = req.NumBarcodes
	}

	jobDir := filepath.Join(m.jobsDir, id)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return "", err
	}

	var barcodes []string
	if req.Op != "extract" {
		if req.Barcodes == "" {
			return "", errors.New("missing barcode pool path")
		}
		if barcodes, err = readBarcodeFile(req.Barcodes); err != nil {
			return "", err
		}
	}

	if req.Op == "workflow" {
		outDir := req.OutputDir
		if outDir == "" {
			outDir = jobDir
		}
		wf, err := design.Workflow(ctx, records, barcodes, opt, 0)
		if err != nil {
			return "", err
		}
		m.logIssues(id, wf.Warnings, wf.RecordErrors)
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return "", err
		}
		outputs := map[string]forest.Catalog{
			"motifs.txt":              wf.Motifs,
			"rna_library.txt":         wf.Library,
			"dna_templates.txt":       wf.Templates,
			"microarray_barcodes.txt": wf.Array,
		}
		for file, catalog := range outputs {
			if err := writeCatalogFile(filepath.Join(outDir, file), catalog); err != nil {
				return "", err
			}
		}
		return outDir, nil
	}

	res, recordErrs, err := forest.ExtractAll(ctx, records, opt.MaxLength, 0)
	if err != nil {
		return "", err
	}
	m.logIssues(id, res.Warnings, recordErrs)

	catalog := res.Catalog
	switch req.Op {
	case "library":
		catalog, err = design.BuildLibrary(res.Catalog, barcodes, opt)
	case "template":
		catalog, err = design.BuildTemplates(res.Catalog, barcodes, opt)
	case "microarray":
		catalog, err = design.BuildMicroarray(res.Catalog, barcodes, opt)
	}
	if err != nil {
		return "", err
	}

	out := req.Output
	if out == "" {
		out = filepath.Join(jobDir, "results.txt")
	}
	if err := writeCatalogFile(out, catalog); err != nil {
		return "", err
	}
	return out, nil
}

func (m *jobManager) logIssues(id string, warnings []forest.Warning, recordErrs []forest.RecordError) {
	for _, e := range recordErrs {
		m.logger.Printf("job %s: skipped record %q: %v", id, e.Record, e.Err)
	}
	for _, w := range warnings {
		m.logger.Printf("job %s: %s", id, w)
	}
}

func (m *jobManager) get(id string) (Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// list returns jobs newest-first, optionally filtered by state.
func (m *jobManager) list(state string) []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if state == "" || j.State == state {
			jobs = append(jobs, *j)
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	return jobs
}

// cancel interrupts a pending or running job.
func (m *jobManager) cancel(id string) error {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("job %s not found", id)
	}
	cancelFn, running := m.cancels[id]
	m.mu.Unlock()
	if !running {
		return fmt.Errorf("job %s is already %s", id, j.State)
	}
	cancelFn()
	m.setState(id, stateCancelled, "cancelled", "")
	return nil
}

func readRecordFile(path string) ([]forest.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fastx.ParseStructured(f)
}

func readBarcodeFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fastx.LoadBarcodes(f)
}

func writeCatalogFile(path string, catalog forest.Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fastx.WriteCatalog(f, catalog)
}
