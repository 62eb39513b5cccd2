package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bastet/filekitty/internal/history"
)

func seedHistory(t *testing.T, store *history.Store, n int) []*history.Snapshot {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var snaps []*history.Snapshot
	for i := 0; i < n; i++ {
		id := string(rune('a'+i)) + "-snapshot"
		snap := &history.Snapshot{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Files:     []string{"/proj/file" + string(rune('a'+i)) + ".go"},
			FileMeta: []history.FileMeta{
				{Path: "/proj/file" + string(rune('a'+i)) + ".go", Hash: "hash" + string(rune('a'+i))},
			},
			Selection: history.Selection{Mode: history.ModeAllFiles},
			Output:    "# output " + id + "\n",
		}
		if err := store.Save(snap); err != nil {
			t.Fatalf("failed to seed snapshot %d: %v", i, err)
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

func TestHistoryListCommand(t *testing.T) {
	store := setupCmdTest(t)
	seedHistory(t, store, 3)

	cmd := newHistoryCmdInternal(store)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"list"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"a-snapshot", "b-snapshot", "c-snapshot", "all"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// The newest snapshot carries the cursor marker.
	if !strings.Contains(out, "*") {
		t.Errorf("output missing current marker:\n%s", out)
	}
}

func TestHistoryListCommand_Empty(t *testing.T) {
	store := setupCmdTest(t)

	cmd := newHistoryCmdInternal(store)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"list"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No history snapshots") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestHistoryListCommand_JSON(t *testing.T) {
	store := setupCmdTest(t)
	seedHistory(t, store, 2)

	cmd := newHistoryCmdInternal(store)
	cmd.PersistentFlags().Bool("json", true, "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"list"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var result struct {
		Snapshots []struct {
			ID      string `json:"id"`
			Current bool   `json:"current"`
		} `json:"snapshots"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %s", err, buf.String())
	}
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}
	if !result.Snapshots[1].Current || result.Snapshots[0].Current {
		t.Errorf("cursor should sit on the newest snapshot: %+v", result.Snapshots)
	}
}

func TestHistoryShowCommand(t *testing.T) {
	store := setupCmdTest(t)
	snaps := seedHistory(t, store, 2)

	tests := []struct {
		name         string
		args         []string
		wantErr      bool
		wantContains []string
	}{
		{
			name:         "show current by default",
			args:         []string{"show"},
			wantContains: []string{snaps[1].ID, "all"},
		},
		{
			name:         "show by explicit ID",
			args:         []string{"show", snaps[0].ID},
			wantContains: []string{snaps[0].ID},
		},
		{
			name:         "show --raw prints the document",
			args:         []string{"show", "--raw", snaps[0].ID},
			wantContains: []string{"# output " + snaps[0].ID},
		},
		{
			name:         "unknown ID",
			args:         []string{"show", "nope"},
			wantErr:      true,
			wantContains: []string{"snapshot not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newHistoryCmdInternal(store)
			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetErr(&buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestHistoryClearCommand(t *testing.T) {
	store := setupCmdTest(t)
	seedHistory(t, store, 2)

	cmd := newHistoryCmdInternal(store)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"clear", "--force"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Removed 3 history file(s)") {
		t.Errorf("output = %q", buf.String())
	}

	snaps, _, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("got %d snapshots after clear, want 0", len(snaps))
	}
}
