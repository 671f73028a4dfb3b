// Package workload provides the mock program catalog: static descriptive
// profiles that decide how likely a simulated process is to consume its full
// time quantum versus yield early. Programs carry no executable content.
package workload

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProgramType classifies a program's scheduling behavior.
type ProgramType int

const (
	CPUBound ProgramType = iota
	IOBound
	Interactive
	Mixed
	Batch
)

func (t ProgramType) String() string {
	switch t {
	case CPUBound:
		return "cpu-bound"
	case IOBound:
		return "io-bound"
	case Interactive:
		return "interactive"
	case Mixed:
		return "mixed"
	case Batch:
		return "batch"
	default:
		return "unknown"
	}
}

// ParseProgramType converts a config string into a ProgramType.
func ParseProgramType(s string) (ProgramType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu-bound", "cpu_bound", "cpubound":
		return CPUBound, nil
	case "io-bound", "io_bound", "iobound":
		return IOBound, nil
	case "interactive":
		return Interactive, nil
	case "mixed":
		return Mixed, nil
	case "batch":
		return Batch, nil
	default:
		return 0, fmt.Errorf("unknown program type %q", s)
	}
}

// ExpectedPriority returns the MLFQ queue a program of this type is expected
// to settle into.
func (t ProgramType) ExpectedPriority() int {
	switch t {
	case CPUBound:
		return 3
	case IOBound, Interactive:
		return 0
	case Mixed:
		return 1
	case Batch:
		return 2
	default:
		return 3
	}
}

// BehaviorDescription returns a one-line summary of this type's scheduling
// behavior.
func (t ProgramType) BehaviorDescription() string {
	switch t {
	case CPUBound:
		return "Runs for full time quantum every cycle (CPU-intensive)"
	case IOBound:
		return "Frequently yields early for I/O operations (responsive)"
	case Interactive:
		return "Yields on user interaction (very responsive)"
	case Mixed:
		return "Mixes CPU and I/O operations (balanced)"
	case Batch:
		return "Mostly CPU with occasional I/O (background)"
	default:
		return "Unknown behavior"
	}
}

// Program is a mock program profile.
type Program struct {
	Name        string
	Type        ProgramType
	Description string
	// TypicalQuantumUsage is the probability, per dispatch, that the program
	// consumes its full quantum rather than yielding early.
	TypicalQuantumUsage float64
	// ExpectedPriority is the queue this program is expected to settle into.
	ExpectedPriority int
}

// NewProgram builds a Program, deriving the expected priority from its type.
func NewProgram(name string, typ ProgramType, description string, usage float64) Program {
	return Program{
		Name:                name,
		Type:                typ,
		Description:         description,
		TypicalQuantumUsage: usage,
		ExpectedPriority:    typ.ExpectedPriority(),
	}
}

// UsesFullQuantum draws whether the program consumes its entire quantum this
// dispatch.
func (p Program) UsesFullQuantum(rng *rand.Rand) bool {
	return rng.Float64() < p.TypicalQuantumUsage
}

// Registry holds the program catalog.
type Registry struct {
	programs map[string]Program
}

// NewRegistry returns a registry populated with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{programs: make(map[string]Program)}
	for _, p := range []Program{
		NewProgram("video_encoder", CPUBound, "Encodes video files to different formats", 0.95),
		NewProgram("compiler", CPUBound, "Compiles source code to executable", 0.92),
		NewProgram("rendering", CPUBound, "3D graphics rendering engine", 0.98),
		NewProgram("web_browser", IOBound, "Web browser waiting for network responses", 0.15),
		NewProgram("file_transfer", IOBound, "Transfers files over network", 0.20),
		NewProgram("text_editor", Interactive, "Text editor waiting for keyboard input", 0.10),
		NewProgram("terminal", Interactive, "Terminal shell waiting for commands", 0.05),
		NewProgram("music_player", Interactive, "Music player awaiting user interaction", 0.12),
		NewProgram("database", Mixed, "Database server (queries + disk I/O)", 0.45),
		NewProgram("game", Mixed, "Game with graphics and I/O", 0.50),
		NewProgram("backup", Batch, "Backup system (sequential file processing)", 0.70),
		NewProgram("search", Batch, "Full-text search indexing", 0.75),
	} {
		r.programs[p.Name] = p
	}
	return r
}

// Get looks up a program by name.
func (r *Registry) Get(name string) (Program, bool) {
	p, ok := r.programs[name]
	return p, ok
}

// List returns all programs ordered by name.
func (r *Registry) List() []Program {
	out := make([]Program, 0, len(r.programs))
	for _, p := range r.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all program names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.programs))
	for name := range r.programs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ByType returns programs of the given type ordered by name.
func (r *Registry) ByType(t ProgramType) []Program {
	out := make([]Program, 0)
	for _, p := range r.programs {
		if p.Type == t {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int {
	return len(r.programs)
}

// ProgramSpec is the YAML shape of a catalog overlay entry.
type ProgramSpec struct {
	Name         string  `yaml:"name"`
	Type         string  `yaml:"type"`
	Description  string  `yaml:"description,omitempty"`
	QuantumUsage float64 `yaml:"quantum_usage"`
}

// ApplyOverlay loads a YAML list of ProgramSpec from path and adds or
// replaces the corresponding catalog entries.
func (r *Registry) ApplyOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading program catalog %s: %w", path, err)
	}

	var specs []ProgramSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("parsing program catalog %s: %w", path, err)
	}

	for i, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("program catalog %s: entry %d has no name", path, i)
		}
		typ, err := ParseProgramType(spec.Type)
		if err != nil {
			return fmt.Errorf("program catalog %s: entry %q: %w", path, spec.Name, err)
		}
		if spec.QuantumUsage < 0 || spec.QuantumUsage > 1 {
			return fmt.Errorf("program catalog %s: entry %q: quantum_usage %v outside [0,1]", path, spec.Name, spec.QuantumUsage)
		}
		r.programs[spec.Name] = NewProgram(spec.Name, typ, spec.Description, spec.QuantumUsage)
	}
	return nil
}

// Catalog renders the full program catalog grouped by type.
func (r *Registry) Catalog() string {
	var b strings.Builder
	b.WriteString("=== Available Programs ===\n")

	sections := []struct {
		title string
		typ   ProgramType
	}{
		{"CPU-Bound Programs (High CPU Usage)", CPUBound},
		{"I/O-Bound Programs (Frequently Yield)", IOBound},
		{"Interactive Programs (Very Responsive)", Interactive},
		{"Mixed Programs (Balanced CPU/IO)", Mixed},
		{"Batch Programs (Background Processing)", Batch},
	}

	for _, sec := range sections {
		fmt.Fprintf(&b, "\n%s:\n", sec.title)
		for _, p := range r.ByType(sec.typ) {
			fmt.Fprintf(&b, "  %s - %s\n    Usage: %.0f%% quantum\n", p.Name, p.Description, p.TypicalQuantumUsage*100)
		}
	}

	b.WriteString("\nUsage: run_program <program_name>\n")
	return b.String()
}
