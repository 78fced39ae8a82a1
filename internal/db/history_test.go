package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/qiangli/dataworks/internal/api"
)

func TestHistory(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"A3", "A4", "Z9"} {
		run := &api.Run{
			ID:      id + "-run",
			TaskID:  id,
			Status:  api.StatusSuccess,
			Started: start.Add(time.Duration(i) * time.Second),
		}
		if err := h.Append(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := h.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].TaskID != "Z9" || runs[1].TaskID != "A4" {
		t.Errorf("expected newest first, got %s, %s", runs[0].TaskID, runs[1].TaskID)
	}

	all, err := h.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected all 3 runs, got %d", len(all))
	}
}

func TestHistorySharedFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "history.db")

	// a running server and a one-off CLI run open the same file
	server, err := OpenHistory(p)
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()
	cli, err := OpenHistory(p)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer cli.Close()

	start := time.Now()
	if err := server.Append(&api.Run{ID: "1", TaskID: "A3", Started: start}); err != nil {
		t.Fatal(err)
	}
	if err := cli.Append(&api.Run{ID: "2", TaskID: "A4", Started: start.Add(time.Second)}); err != nil {
		t.Fatal(err)
	}

	runs, err := server.Recent(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].TaskID != "A4" {
		t.Errorf("expected both runs newest first, got %+v", runs)
	}
}
