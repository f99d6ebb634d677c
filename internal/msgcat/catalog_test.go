package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogRenders(t *testing.T) {
	c := Default()
	if got := c.Text("board.active", nil); got != "Board state: Active" {
		t.Fatalf("board.active = %q", got)
	}
	got, err := c.Render("game.started", map[string]string{"White": "Human", "Black": "Hard AI"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Game started! White: Human, Black: Hard AI" {
		t.Fatalf("game.started = %q", got)
	}
	if _, err := c.Render("edit.undo_failed", map[string]string{}); err == nil {
		t.Fatalf("missing template data should fail")
	}
	if got := c.Text("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("board:\n  active: \"Live\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("board.active", nil); got != "Live" {
		t.Fatalf("override not applied: %q", got)
	}
	if !c.Has("edit.saving") {
		t.Fatalf("defaults should survive overrides")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("board:\n  active: \"Again\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("duplicate keys across files should fail")
	}
}
