package workload

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_BuiltinCatalog(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, 12, r.Len())

	p, ok := r.Get("compiler")
	require.True(t, ok)
	assert.Equal(t, CPUBound, p.Type)
	assert.Equal(t, 0.92, p.TypicalQuantumUsage)
	assert.Equal(t, 3, p.ExpectedPriority)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ByType(t *testing.T) {
	r := NewRegistry()

	cpu := r.ByType(CPUBound)
	require.Len(t, cpu, 3)
	assert.Equal(t, "compiler", cpu[0].Name)
	assert.Equal(t, "rendering", cpu[1].Name)
	assert.Equal(t, "video_encoder", cpu[2].Name)

	assert.Len(t, r.ByType(IOBound), 2)
	assert.Len(t, r.ByType(Interactive), 3)
	assert.Len(t, r.ByType(Mixed), 2)
	assert.Len(t, r.ByType(Batch), 2)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()

	names := r.Names()

	require.Len(t, names, r.Len())
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}

func TestProgramType_ExpectedPriority(t *testing.T) {
	assert.Equal(t, 3, CPUBound.ExpectedPriority())
	assert.Equal(t, 0, IOBound.ExpectedPriority())
	assert.Equal(t, 0, Interactive.ExpectedPriority())
	assert.Equal(t, 1, Mixed.ExpectedPriority())
	assert.Equal(t, 2, Batch.ExpectedPriority())
}

func TestParseProgramType(t *testing.T) {
	cases := []struct {
		in   string
		want ProgramType
	}{
		{"cpu-bound", CPUBound},
		{"cpu_bound", CPUBound},
		{"CPUBound", CPUBound},
		{"io-bound", IOBound},
		{" interactive ", Interactive},
		{"mixed", Mixed},
		{"batch", Batch},
	}
	for _, tc := range cases {
		got, err := ParseProgramType(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseProgramType("realtime")
	assert.Error(t, err)
}

func TestProgram_UsesFullQuantumBoundaries(t *testing.T) {
	// GIVEN programs at the probability extremes
	never := NewProgram("idle", Interactive, "", 0)
	always := NewProgram("burn", CPUBound, "", 1)
	rng := rand.New(rand.NewSource(1))

	// THEN the draw is deterministic at both ends
	for i := 0; i < 100; i++ {
		if never.UsesFullQuantum(rng) {
			t.Fatal("usage 0 drew a full quantum")
		}
		if !always.UsesFullQuantum(rng) {
			t.Fatal("usage 1 drew an early yield")
		}
	}
}

func writeOverlay(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "programs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRegistry_ApplyOverlay(t *testing.T) {
	// GIVEN an overlay adding one program and replacing another
	r := NewRegistry()
	path := writeOverlay(t, `
- name: crawler
  type: io-bound
  description: Fetches pages from the web
  quantum_usage: 0.25
- name: compiler
  type: cpu-bound
  quantum_usage: 0.99
`)

	// WHEN it is applied
	require.NoError(t, r.ApplyOverlay(path))

	// THEN the new program exists and the replaced one carries the new usage
	crawler, ok := r.Get("crawler")
	require.True(t, ok)
	assert.Equal(t, IOBound, crawler.Type)
	assert.Equal(t, 0.25, crawler.TypicalQuantumUsage)
	assert.Equal(t, 0, crawler.ExpectedPriority)

	compiler, _ := r.Get("compiler")
	assert.Equal(t, 0.99, compiler.TypicalQuantumUsage)
	assert.Equal(t, 13, r.Len())
}

func TestRegistry_ApplyOverlayRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"missing name", "- type: batch\n  quantum_usage: 0.5\n"},
		{"unknown type", "- name: x\n  type: realtime\n  quantum_usage: 0.5\n"},
		{"usage above one", "- name: x\n  type: batch\n  quantum_usage: 1.5\n"},
		{"usage below zero", "- name: x\n  type: batch\n  quantum_usage: -0.1\n"},
		{"malformed yaml", "- name: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.ApplyOverlay(writeOverlay(t, tc.contents))
			assert.Error(t, err)
		})
	}
}

func TestRegistry_ApplyOverlayMissingFile(t *testing.T) {
	r := NewRegistry()

	err := r.ApplyOverlay(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestRegistry_Catalog(t *testing.T) {
	r := NewRegistry()

	out := r.Catalog()

	assert.Contains(t, out, "=== Available Programs ===")
	assert.Contains(t, out, "CPU-Bound Programs")
	assert.Contains(t, out, "compiler")
	assert.Contains(t, out, "text_editor")
	assert.Contains(t, out, "Usage: run_program <program_name>")
}
