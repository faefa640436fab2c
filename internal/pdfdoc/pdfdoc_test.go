// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/studyguide-engine/internal/guide"
)

func TestNewRendererRequiresFonts(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no fonts at all", cfg: Config{Palette: DefaultPalette()}},
		{
			name: "missing bold face",
			cfg:  Config{Palette: DefaultPalette(), Fonts: Fonts{Regular: []byte{0x00}}},
		},
		{
			name: "missing regular face",
			cfg:  Config{Palette: DefaultPalette(), Fonts: Fonts{Bold: []byte{0x00}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRenderer(tt.cfg); err == nil {
				t.Fatal("NewRenderer succeeded, want font validation error")
			}
		})
	}
}

// testFonts loads the NotoSans faces from testdata, skipping the test when
// they are not checked out (mage fonts fetches them).
func testFonts(t *testing.T) Fonts {
	t.Helper()
	regular, err := os.ReadFile(filepath.Join("testdata", "NotoSans-Regular.ttf"))
	if err != nil {
		t.Skipf("font fixtures not available: %v", err)
	}
	bold, err := os.ReadFile(filepath.Join("testdata", "NotoSans-Bold.ttf"))
	if err != nil {
		t.Skipf("font fixtures not available: %v", err)
	}
	return Fonts{Regular: regular, Bold: bold}
}

func sampleGuide() *guide.StudyGuide {
	return &guide.StudyGuide{
		MainSubject: "Calculus",
		Sections: []guide.Section{
			{
				Key: "topic_breakdown",
				Items: []guide.Item{{Nested: &guide.Nested{
					Topic: "Derivatives",
					Details: []guide.Detail{
						{Text: "A derivative is a <hl>rate of change</hl>.", Time: 90},
					},
				}}},
			},
			{
				Key: "key_vocabulary",
				Items: []guide.Item{{Flat: &guide.Flat{
					Fields: []guide.Field{
						{Key: "definition", Value: "The value a function <hl>approaches</hl>."},
						{Key: "term", Value: "Limit"},
					},
					Time: 30,
				}}},
			},
		},
	}
}

func TestRenderDocument(t *testing.T) {
	r, err := NewRenderer(Config{Palette: DefaultPalette(), Fonts: testFonts(t)})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Render(sampleGuide(), "dQw4w9WgXcQ", &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(8, len(out))])
	}
	// The deep link is stored uncompressed in the PDF's annotation dictionary.
	if !strings.Contains(buf.String(), "t=90s") {
		t.Error("document does not carry the t=90s deep link")
	}
}

func TestRenderGuideUnchanged(t *testing.T) {
	r, err := NewRenderer(Config{Palette: DefaultPalette(), Fonts: testFonts(t)})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	g := sampleGuide()
	want := g.Sections[0].Items[0].Nested.Details[0].Text

	var a, b bytes.Buffer
	if err := r.Render(g, "abc", &a); err != nil {
		t.Fatalf("first Render: %v", err)
	}
	if err := r.Render(g, "abc", &b); err != nil {
		t.Fatalf("second Render: %v", err)
	}

	// The guide is read-only: rendering twice must not mutate it.
	if got := g.Sections[0].Items[0].Nested.Details[0].Text; got != want {
		t.Errorf("detail text mutated to %q", got)
	}
}
