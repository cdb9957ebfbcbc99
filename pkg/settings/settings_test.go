package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/gitlanes/pkg/errors"
)

func TestDefault(t *testing.T) {
	s := Default()
	if !s.IncludeRemote {
		t.Error("IncludeRemote = false, want true")
	}
	if !s.BranchOrder.ShortestFirst || !s.BranchOrder.Forward {
		t.Errorf("BranchOrder = %+v", s.BranchOrder)
	}
	if got := len(s.Branches.Persistence); got != 6 {
		t.Errorf("len(Persistence) = %d, want 6", got)
	}
	if got := len(s.MergePatterns); got != 6 {
		t.Errorf("len(MergePatterns) = %d, want 6", got)
	}
	if got := s.Branches.TerminalColorsUnknown; len(got) != 1 || got[0] != 7 {
		t.Errorf("TerminalColorsUnknown = %v, want [7]", got)
	}
}

func TestPresetsCompile(t *testing.T) {
	for _, name := range Models() {
		t.Run(name, func(t *testing.T) {
			d := DefaultDef()
			d.Model = name
			if _, err := d.Compile(); err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("trunk-based")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Preset() error = %v, want INVALID_CONFIG", err)
	}
}

func TestTerminalColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint8
		wantErr bool
	}{
		{"black", 0, false},
		{"white", 7, false},
		{"bright_blue", 12, false},
		{"bright_white", 15, false},
		{"208", 208, false},
		{"0", 0, false},
		{"256", 0, true},
		{"-1", 0, true},
		{"chartreuse", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := TerminalColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidColor) {
					t.Errorf("TerminalColor(%q) error = %v, want INVALID_COLOR", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TerminalColor(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("TerminalColor(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Def)
		code   errors.Code
	}{
		{
			name:   "bad persistence pattern",
			modify: func(d *Def) { b := GitFlow(); b.Persistence = []string{"^(main"}; d.Branches = &b },
			code:   errors.ErrCodeInvalidConfig,
		},
		{
			name:   "bad order pattern",
			modify: func(d *Def) { b := Simple(); b.Order = []string{"[z-a]"}; d.Branches = &b },
			code:   errors.ErrCodeInvalidConfig,
		},
		{
			name:   "merge pattern without capture group",
			modify: func(d *Def) { d.MergePatterns = []string{"^Merge branch .+$"} },
			code:   errors.ErrCodeInvalidConfig,
		},
		{
			name:   "merge pattern with two capture groups",
			modify: func(d *Def) { d.MergePatterns = []string{"^Merge (branch) '(.+)'$"} },
			code:   errors.ErrCodeInvalidConfig,
		},
		{
			name: "unknown terminal colour",
			modify: func(d *Def) {
				b := GitFlow()
				b.TerminalColors.Matches[0].Colors = []string{"ultraviolet"}
				d.Branches = &b
			},
			code: errors.ErrCodeInvalidColor,
		},
		{
			name:   "empty unknown palette",
			modify: func(d *Def) { b := None(); b.SVGColors.Unknown = nil; d.Branches = &b },
			code:   errors.ErrCodeInvalidConfig,
		},
		{
			name:   "unknown branch order",
			modify: func(d *Def) { d.BranchOrder = "random" },
			code:   errors.ErrCodeInvalidConfig,
		},
		{
			name:   "negative max count",
			modify: func(d *Def) { d.MaxCount = -3 },
			code:   errors.ErrCodeInvalidConfig,
		},
		{
			name:   "unknown model",
			modify: func(d *Def) { d.Model = "galaxy" },
			code:   errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDef()
			tt.modify(&d)
			_, err := d.Compile()
			if err == nil {
				t.Fatal("Compile() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
model = "simple"
branch_order = "longest-first"
max_count = 50
merge_patterns = ["^Land (.+)$"]
`)
	d, err := Parse(data, FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !d.IncludeRemote {
		t.Error("IncludeRemote lost its default")
	}
	s, err := d.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if s.BranchOrder.ShortestFirst {
		t.Error("BranchOrder.ShortestFirst = true, want false")
	}
	if s.MaxCount != 50 {
		t.Errorf("MaxCount = %d, want 50", s.MaxCount)
	}
	if len(s.Branches.Persistence) != 1 {
		t.Errorf("simple model not selected: %d persistence patterns", len(s.Branches.Persistence))
	}
	if m := s.MergePatterns[0].FindStringSubmatch("Land topic"); len(m) != 2 || m[1] != "topic" {
		t.Errorf("merge pattern match = %v", m)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
include_remote: false
branches:
  persistence: ["^main$"]
  order: ["^main$"]
  terminal_colors:
    matches:
      - pattern: "^main$"
        colors: ["bright_blue"]
    unknown: ["yellow", "33"]
  svg_colors:
    matches: []
    unknown: ["#336699"]
`)
	d, err := Parse(data, FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	s, err := d.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if s.IncludeRemote {
		t.Error("IncludeRemote = true, want false")
	}
	if got := s.Branches.TerminalColorsUnknown; len(got) != 2 || got[1] != 33 {
		t.Errorf("TerminalColorsUnknown = %v", got)
	}
	if got := s.Branches.SVGColorsUnknown; len(got) != 1 || got[0] != "#336699" {
		t.Errorf("SVGColorsUnknown = %v", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitlanes.yml")
	if err := os.WriteFile(path, []byte("model: none\nforward: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d.Model != ModelNone || d.Forward {
		t.Errorf("Load() = %+v", d)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			d := DefaultDef()
			b := GitFlow()
			d.Branches = &b

			var buf bytes.Buffer
			if err := Encode(&buf, d, format); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			back, err := Parse(buf.Bytes(), format)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if _, err := back.Compile(); err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			if back.Branches == nil || len(back.Branches.TerminalColors.Matches) != 6 {
				t.Errorf("branches not preserved: %+v", back.Branches)
			}
		})
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.toml": FormatTOML,
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a":      FormatTOML,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %s, want %s", path, got, want)
		}
	}
}
