package main

import (
	"os"
	"testing"
	"time"
)

func TestJSONSaveLoadJobs(t *testing.T) {
	tmp := "test_jobs.json"
	defer os.Remove(tmp)
	jobsStore = "json"
	jobs := []Job{{ID: "j1", Name: "forest_j1", Op: "extract", State: statePending, CreatedAt: time.Now(), UpdatedAt: time.Now()}}
	if err := saveJobs(tmp, jobs); err != nil {
		t.Fatalf("saveJobs failed: %v", err)
	}
	got, err := loadJobs(tmp)
	if err != nil {
		t.Fatalf("loadJobs failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "j1" {
		t.Fatalf("unexpected jobs loaded: %#v", got)
	}
	if got[0].Op != "extract" || got[0].State != statePending {
		t.Fatalf("job fields lost on round trip: %#v", got[0])
	}
}

func TestJSONLoadJobsMissingFile(t *testing.T) {
	jobsStore = "json"
	got, err := loadJobs("does_not_exist.json")
	if err != nil {
		t.Fatalf("loadJobs on missing file should not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no jobs, got %#v", got)
	}
}
