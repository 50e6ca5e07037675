package fsops_test

import (
	"testing"

	"github.com/temirov/dialsight/internal/fsops"
)

func TestListImages_InMemory(t *testing.T) {
	mem := fsops.NewMem()
	fs := fsops.NewOps(mem)

	if err := mem.MkdirAll("/dataset/.cache", 0o755); err != nil {
		t.Fatalf("mkdir .cache: %v", err)
	}
	seedFiles := map[string]string{
		"/dataset/knob_b.jpg":        "jpg-bytes",
		"/dataset/knob_b.json":       `{"knob_close": []}`,
		"/dataset/knob_a.png":        "png-bytes",
		"/dataset/notes.txt":         "not an image",
		"/dataset/.cache/hidden.jpg": "skipped",
	}
	for path, content := range seedFiles {
		if err := mem.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	images, err := fs.ListImages("/dataset")
	if err != nil {
		t.Fatalf("list images: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d: %+v", len(images), images)
	}
	if images[0].ImagePath != "/dataset/knob_a.png" || images[1].ImagePath != "/dataset/knob_b.jpg" {
		t.Fatalf("unexpected order: %+v", images)
	}
	if images[0].SidecarPath != "" {
		t.Fatalf("knob_a has no sidecar, got %q", images[0].SidecarPath)
	}
	if images[1].SidecarPath != "/dataset/knob_b.json" {
		t.Fatalf("knob_b sidecar = %q", images[1].SidecarPath)
	}
	if images[1].BaseName != "knob_b" {
		t.Fatalf("base name = %q", images[1].BaseName)
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	mem := fsops.NewMem()
	fs := fsops.NewOps(mem)

	if err := fs.EnsureDir("/out/run-1"); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if err := mem.WriteFile("/out/run-1/results.jsonl", []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !fs.FileExists("/out/run-1/results.jsonl") {
		t.Fatalf("expected file to exist")
	}
	if fs.FileExists("/out/run-1/missing.jsonl") {
		t.Fatalf("missing file must not exist")
	}
}
