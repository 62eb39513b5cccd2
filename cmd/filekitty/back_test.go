package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastet/filekitty/internal/clipboard"
)

func TestBackForwardCommands(t *testing.T) {
	store := setupCmdTest(t)
	snaps := seedHistory(t, store, 3)

	var copied []string
	restore := clipboard.SetWriter(func(text string) error {
		copied = append(copied, text)
		return nil
	})
	defer restore()

	run := func(cmdFn func() *bytes.Buffer) string {
		return cmdFn().String()
	}

	backOut := run(func() *bytes.Buffer {
		cmd := newBackCmdInternal(store)
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("back failed: %v", err)
		}
		return &buf
	})

	if !strings.Contains(backOut, shortID(snaps[1].ID)) {
		t.Errorf("back output = %q, want snapshot %s", backOut, snaps[1].ID)
	}
	if len(copied) != 1 || copied[0] != snaps[1].Output {
		t.Errorf("clipboard = %v, want output of %s", copied, snaps[1].ID)
	}

	forwardOut := run(func() *bytes.Buffer {
		cmd := newForwardCmdInternal(store)
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("forward failed: %v", err)
		}
		return &buf
	})

	if !strings.Contains(forwardOut, shortID(snaps[2].ID)) {
		t.Errorf("forward output = %q, want snapshot %s", forwardOut, snaps[2].ID)
	}
	if len(copied) != 2 || copied[1] != snaps[2].Output {
		t.Errorf("clipboard = %v, want output of %s", copied, snaps[2].ID)
	}
}

func TestBackCommand_AtOldest(t *testing.T) {
	store := setupCmdTest(t)
	seedHistory(t, store, 1)

	restore := clipboard.SetWriter(func(string) error { return nil })
	defer restore()

	cmd := newBackCmdInternal(store)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error at oldest snapshot")
	}
	if !strings.Contains(buf.String(), "already at oldest snapshot") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestForwardCommand_AtNewest(t *testing.T) {
	store := setupCmdTest(t)
	seedHistory(t, store, 2)

	restore := clipboard.SetWriter(func(string) error { return nil })
	defer restore()

	cmd := newForwardCmdInternal(store)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error at newest snapshot")
	}
	if !strings.Contains(buf.String(), "already at newest snapshot") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestBackCommand_NoCopy(t *testing.T) {
	store := setupCmdTest(t)
	seedHistory(t, store, 2)

	touched := false
	restore := clipboard.SetWriter(func(string) error {
		touched = true
		return nil
	})
	defer restore()

	cmd := newBackCmdInternal(store)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--no-copy"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if touched {
		t.Error("--no-copy should leave the clipboard alone")
	}
}

func TestBackCommand_StaleWarning(t *testing.T) {
	store := setupCmdTest(t)
	// Seeded hashes point at files that do not exist, so stepping back
	// reports them as missing.
	seedHistory(t, store, 2)

	restore := clipboard.SetWriter(func(string) error { return nil })
	defer restore()

	cmd := newBackCmdInternal(store)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "missing") {
		t.Errorf("stderr = %q, want missing-file warning", errOut.String())
	}
}
