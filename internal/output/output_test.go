package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPrinter_SuccessHuman(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false, false)

	if err := p.Success(map[string]any{"message": "Copied 2 files"}); err != nil {
		t.Fatalf("Success failed: %v", err)
	}
	if got := buf.String(); got != "Copied 2 files\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrinter_SuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, true, false)

	if err := p.Success(map[string]any{"message": "done", "count": 3}); err != nil {
		t.Fatalf("Success failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %s", err, buf.String())
	}
	if result["message"] != "done" {
		t.Errorf("message = %v", result["message"])
	}
	if result["count"] != float64(3) {
		t.Errorf("count = %v", result["count"])
	}
}

func TestPrinter_Error(t *testing.T) {
	tests := []struct {
		name     string
		jsonMode bool
		err      error
		wantCode int
		wantText string
	}{
		{
			name:     "plain error defaults to user error in JSON",
			jsonMode: true,
			err:      errors.New("something broke"),
			wantCode: ExitUserError,
			wantText: "something broke",
		},
		{
			name:     "system error keeps its code",
			jsonMode: true,
			err:      NewSystemError("disk full"),
			wantCode: ExitSystemError,
			wantText: "disk full",
		},
		{
			name:     "conflict error keeps its code",
			jsonMode: true,
			err:      NewConflictError("already at newest snapshot"),
			wantCode: ExitConflict,
			wantText: "already at newest snapshot",
		},
		{
			name:     "human mode writes to stderr",
			jsonMode: false,
			err:      NewUserError("bad flag"),
			wantText: "Error: bad flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			p := NewPrinter(&out, tt.jsonMode, false).WithStderr(&errOut)

			p.Error(tt.err)

			if tt.jsonMode {
				var result map[string]any
				if err := json.Unmarshal(out.Bytes(), &result); err != nil {
					t.Fatalf("output is not JSON: %v", err)
				}
				if result["error"] != tt.wantText {
					t.Errorf("error = %v, want %q", result["error"], tt.wantText)
				}
				if int(result["code"].(float64)) != tt.wantCode {
					t.Errorf("code = %v, want %d", result["code"], tt.wantCode)
				}
				return
			}
			if !strings.Contains(errOut.String(), tt.wantText) {
				t.Errorf("stderr = %q, want contains %q", errOut.String(), tt.wantText)
			}
			if out.Len() != 0 {
				t.Errorf("stdout should stay clean, got %q", out.String())
			}
		})
	}
}

func TestPrinter_Warn(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, false, false).WithStderr(&errOut)

	p.Warn("%s changed", "a.go")

	if !strings.Contains(errOut.String(), "Warning: a.go changed") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("stdout should stay clean, got %q", out.String())
	}
}

func TestPrinter_StderrSilentInJSONMode(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, true, false).WithStderr(&errOut)

	p.Stderr("progress hint\n")

	if errOut.Len() != 0 {
		t.Errorf("JSON mode should suppress hints, got %q", errOut.String())
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false, false)

	p.Table([]string{"ID", "FILES"}, [][]string{
		{"abc", "3"},
		{"defghi", "12"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	// Columns align on the widest cell.
	if !strings.HasPrefix(lines[1], "abc   ") {
		t.Errorf("row not padded: %q", lines[1])
	}
	if !strings.Contains(lines[2], "defghi  12") {
		t.Errorf("row misaligned: %q", lines[2])
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil is success", nil, ExitSuccess},
		{"user error", NewUserError("bad input"), ExitUserError},
		{"system error", NewSystemError("io failed"), ExitSystemError},
		{"conflict", NewConflictError("stale"), ExitConflict},
		{"wrapped exit error", fmt.Errorf("context: %w", NewConflictError("stale")), ExitConflict},
		{"plain error defaults to user error", errors.New("oops"), ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewSystemErrorWithCause("wrapper", cause)

	if !errors.Is(err, cause) {
		t.Error("NewSystemErrorWithCause should wrap its cause")
	}
	if !strings.Contains(err.Error(), "wrapper") {
		t.Errorf("Error() = %q, want contains wrapper", err.Error())
	}
}
