package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/palette"
)

func testPalette() *palette.Palette {
	p := palette.New()
	for i := range p.Colors {
		p.Colors[i] = colour.Color{R: uint8(i), G: uint8(16 * i), B: 255 - uint8(i)}
	}
	p.Colors[0] = colour.Color{R: 0x10, G: 0x20, B: 0x30}
	p.Colors[15] = colour.Color{R: 0xf0, G: 0xe0, B: 0xd0}
	p.Wallpaper = "/walls/sea.png"
	p.Alpha = 0.8
	return p
}

// TestRender tests placeholder substitution.
func TestRender(t *testing.T) {
	p := testPalette()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hex default", "{color0}", "#102030"},
		{"value alias", "{color0.value}", "#102030"},
		{"xhex", "{background.xhex}", "0x102030"},
		{"strip", "{foreground.strip}", "f0e0d0"},
		{"cursor", "{cursor}", "#f0e0d0"},
		{"rgb", "{color0.rgb}", "rgb(16,32,48)"},
		{"rgba", "{color0.rgba}", "rgba(16,32,48,0.8)"},
		{"channels", "{color0.red} {color0.green} {color0.blue}", "16 32 48"},
		{"alpha", "{background.alpha_dec}", "0.8"},
		{"wallpaper", "img={wallpaper}", "img=/walls/sea.png"},
		{"unknown key", "{colour0}", "{colour0}"},
		{"index out of range", "{color16}", "{color16}"},
		{"unknown format", "{color1.hsl}", "{color1.hsl}"},
		{"not a placeholder", "${TERM:-none}", "${TERM:-none}"},
		{"unclosed", "a {color0", "a {color0"},
		{"nested braces", "{ {color0} }", "{ #102030 }"},
		{"json object", "{\"bg\": \"{background}\"}", "{\"bg\": \"#102030\"}"},
		{"plain", "no placeholders", "no placeholders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.in, p); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestRenderNoWallpaper tests that an empty wallpaper is left as a placeholder.
func TestRenderNoWallpaper(t *testing.T) {
	p := testPalette()
	p.Wallpaper = ""
	if got := Render("{wallpaper}", p); got != "{wallpaper}" {
		t.Errorf("Render() = %q", got)
	}
}

// TestSequences tests the OSC sequence layout.
func TestSequences(t *testing.T) {
	seq := Sequences(testPalette())

	for _, want := range []string{
		"\x1b]4;0;#102030\x1b\\",
		"\x1b]4;15;#f0e0d0\x1b\\",
		"\x1b]10;#f0e0d0\x1b\\",
		"\x1b]11;#102030\x1b\\",
		"\x1b]4;232;#102030\x1b\\",
		"\x1b]4;256;#f0e0d0\x1b\\",
		"\x1b]708;#102030\x1b\\",
	} {
		if !strings.Contains(seq, want) {
			t.Errorf("sequences missing %q", want)
		}
	}
	if n := strings.Count(seq, "\x1b]"); n != 26 {
		t.Errorf("got %d sequences, want 26", n)
	}
}

// TestProcess tests layering and output files.
func TestProcess(t *testing.T) {
	embedded := fstest.MapFS{
		"colors.sh":   {Data: []byte("bg={background}\n")},
		"colors.json": {Data: []byte("embedded")},
	}

	low := t.TempDir()
	high := t.TempDir()
	if err := os.WriteFile(filepath.Join(low, "colors.json"), []byte("low {color1.strip}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(high, "colors.json"), []byte("high {color2.strip}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(high, ".hidden"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "out")
	l := New(embedded, []string{low, filepath.Join(t.TempDir(), "missing"), high}, nil)

	written, err := l.Process(out, testPalette())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(written) != 3 {
		t.Errorf("written = %v", written)
	}

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		return string(data)
	}

	if got := read("colors.sh"); got != "bg=#102030\n" {
		t.Errorf("colors.sh = %q", got)
	}
	if got := read("colors.json"); got != "high 0220fd" {
		t.Errorf("colors.json = %q, want the highest priority template", got)
	}
	if !strings.HasPrefix(read(SequencesFile), "\x1b]4;0;") {
		t.Error("sequences not written")
	}
	if _, err := os.Stat(filepath.Join(out, ".hidden")); !os.IsNotExist(err) {
		t.Error("hidden files should be skipped")
	}
}

// TestDefaults tests that the embedded templates render.
func TestDefaults(t *testing.T) {
	out := t.TempDir()
	written, err := New(Defaults(), nil, nil).Process(out, testPalette())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(written) < 2 {
		t.Fatalf("written = %v", written)
	}

	data, err := os.ReadFile(filepath.Join(out, "colors.Xresources"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "*background:        #102030") {
		t.Errorf("colors.Xresources not rendered:\n%s", data)
	}

	tty, err := os.ReadFile(filepath.Join(out, "colors-tty.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(tty), "${TERM:-none}") || !strings.Contains(string(tty), `\e]P0102030`) {
		t.Errorf("colors-tty.sh not rendered:\n%s", tty)
	}
}

// TestDump tests copying the embedded templates.
func TestDump(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "colors.sh"), []byte("mine"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := New(fstest.MapFS{
		"colors.sh":  {Data: []byte("default")},
		"colors.css": {Data: []byte("css")},
	}, nil, nil)

	dumped, err := l.Dump(dir, false)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if len(dumped) != 1 {
		t.Errorf("dumped = %v, want only colors.css", dumped)
	}
	if data, _ := os.ReadFile(filepath.Join(dir, "colors.sh")); string(data) != "mine" {
		t.Error("Dump() overwrote an existing template")
	}

	if _, err := l.Dump(dir, true); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(filepath.Join(dir, "colors.sh")); string(data) != "default" {
		t.Error("Dump(force) did not overwrite")
	}
}
