package main

import (
	"encoding/binary"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func binaryPath(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs("../../kmviz")
	if err != nil {
		t.Fatalf("failed to get binary path: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("kmviz binary not found - run 'go build -o kmviz ./cmd/kmviz' first")
	}
	return path
}

func writeFloats(t *testing.T, path string, values []float32) {
	t.Helper()
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.NativeEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestSubcommands(t *testing.T) {
	bin := binaryPath(t)

	t.Run("help shows usage", func(t *testing.T) {
		out, err := exec.Command(bin, "help").CombinedOutput()
		if err != nil {
			t.Fatalf("help command failed: %v", err)
		}
		for _, sub := range []string{"show", "export", "serve", "inspect"} {
			if !strings.Contains(string(out), sub) {
				t.Errorf("help output missing %s: %s", sub, out)
			}
		}
	})

	t.Run("version prints version info", func(t *testing.T) {
		out, err := exec.Command(bin, "version").CombinedOutput()
		if err != nil {
			t.Fatalf("version command failed: %v", err)
		}
		if !strings.Contains(string(out), "kmviz version") {
			t.Errorf("version output incorrect: %s", out)
		}
	})

	t.Run("unknown command exits 1", func(t *testing.T) {
		out, err := exec.Command(bin, "notreal").CombinedOutput()
		if err == nil {
			t.Fatal("expected non-zero exit for unknown command")
		}
		if !strings.Contains(string(out), "Unknown command") {
			t.Errorf("expected unknown command message, got: %s", out)
		}
	})
}

func TestInspectAndExport(t *testing.T) {
	bin := binaryPath(t)
	dir := t.TempDir()

	data := make([]float32, 200)
	for i := range data {
		data[i] = float32(i%40)/10 - 2
	}
	writeFloats(t, filepath.Join(dir, "X_data.bin"), data)
	writeFloats(t, filepath.Join(dir, "centroid_data.bin"), []float32{
		0.5, 0.5,
		-0.5, -0.5,
		1, 1,
		-1, 1,
		0, 0,
	})

	cmd := exec.Command(bin, "inspect")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	want := "(100, 2)\n(5, 2)\n[[ 0.5  0.5]\n [-0.5 -0.5]\n [ 1.   1. ]\n [-1.   1. ]\n [ 0.   0. ]]\n"
	if string(out) != want {
		t.Errorf("inspect output:\n%s\nwant:\n%s", out, want)
	}

	plot := filepath.Join(dir, "plot.svg")
	cmd = exec.Command(bin, "export", "-out", plot)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("export failed: %v: %s", err, out)
	}
	if info, err := os.Stat(plot); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty %s: %v", plot, err)
	}
}

func TestMissingFileExits1(t *testing.T) {
	bin := binaryPath(t)

	cmd := exec.Command(bin, "inspect")
	cmd.Dir = t.TempDir()
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatal("expected non-zero exit for missing files")
	}
	if !strings.Contains(string(out), "Error: ") {
		t.Errorf("expected error message, got: %s", out)
	}
}
