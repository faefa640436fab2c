// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc renders a StudyGuide into a paginated PDF with inline
// highlight runs and a clickable deep link per extracted fact.
// See docs/ARCHITECTURE § Document Renderer.
package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/studyguide-engine/internal/guide"
	"github.com/pdiddy/studyguide-engine/internal/video"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B int
}

// Palette holds the document's colors. Injected at construction so tests
// can substitute alternates.
type Palette struct {
	TitleBG     RGB
	TitleText   RGB
	HeadingText RGB
	LinkText    RGB
	BodyText    RGB
	Line        RGB
	HighlightBG RGB
}

// DefaultPalette returns the stock color scheme.
func DefaultPalette() Palette {
	return Palette{
		TitleBG:     RGB{40, 54, 85},
		TitleText:   RGB{255, 255, 255},
		HeadingText: RGB{40, 54, 85},
		LinkText:    RGB{0, 0, 255},
		BodyText:    RGB{30, 30, 30},
		Line:        RGB{220, 220, 220},
		HighlightBG: RGB{255, 255, 0},
	}
}

// Fonts holds the TTF blobs the renderer embeds. Both faces are required;
// the execution environment may not provide font files by convention.
type Fonts struct {
	Regular []byte
	Bold    []byte
}

// Config configures a Renderer.
type Config struct {
	Palette  Palette
	Fonts    Fonts
	FontName string // defaults to "NotoSans"
}

// Layout constants, in millimeters on an A4 page.
const (
	titleHeight   = 20
	headingHeight = 10
	topicHeight   = 8
	bodyHeight    = 7
	linkHeight    = 5
	ruleWidth     = 190
	breakMargin   = 15
	itemGap       = 3
	sectionGap    = 6
)

// Renderer lays out study-guide documents. Safe to reuse across guides; each
// Render call builds a fresh document.
type Renderer struct {
	cfg Config
}

// NewRenderer validates the resource handles and returns a Renderer. Missing
// font blobs fail here, not deep inside layout.
func NewRenderer(cfg Config) (*Renderer, error) {
	if len(cfg.Fonts.Regular) == 0 {
		return nil, errors.New("pdfdoc: regular font blob is required")
	}
	if len(cfg.Fonts.Bold) == 0 {
		return nil, errors.New("pdfdoc: bold font blob is required")
	}
	if cfg.FontName == "" {
		cfg.FontName = "NotoSans"
	}
	return &Renderer{cfg: cfg}, nil
}

// Render writes the guide as a PDF to w. Timestamp links resolve to the
// canonical watch URL for videoID plus each fact's time offset. Any layout
// or serialization failure surfaces as a single document-generation error.
func (r *Renderer) Render(g *guide.StudyGuide, videoID string, w io.Writer) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, breakMargin)
	doc.AddUTF8FontFromBytes(r.cfg.FontName, "", r.cfg.Fonts.Regular)
	doc.AddUTF8FontFromBytes(r.cfg.FontName, "B", r.cfg.Fonts.Bold)
	doc.AddPage()

	r.title(doc, g.MainSubject)

	base := video.WatchURL(videoID)
	for _, sec := range g.Sections {
		r.sectionHeading(doc, guide.HumanizeKey(sec.Key))
		for _, item := range sec.Items {
			if item.Nested != nil {
				r.nestedItem(doc, item.Nested, base)
			} else {
				r.flatItem(doc, item.Flat, base)
			}
			doc.Ln(itemGap)
		}
		doc.Ln(sectionGap)
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("building document: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// RenderFile writes the document to path. In-memory writers are the primary
// target; this is the thin path-based wrapper.
func (r *Renderer) RenderFile(g *guide.StudyGuide, videoID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.Render(g, videoID, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// title draws the full-width title band.
func (r *Renderer) title(doc *fpdf.Fpdf, subject string) {
	if subject == "" {
		subject = "Untitled Summary"
	}
	p := r.cfg.Palette
	doc.SetFont(r.cfg.FontName, "B", 24)
	doc.SetFillColor(p.TitleBG.R, p.TitleBG.G, p.TitleBG.B)
	doc.SetTextColor(p.TitleText.R, p.TitleText.G, p.TitleText.B)
	doc.CellFormat(0, titleHeight, subject, "", 1, "C", true, 0, "")
	doc.Ln(10)
}

// sectionHeading draws a bold heading underlined by a ruled line.
func (r *Renderer) sectionHeading(doc *fpdf.Fpdf, heading string) {
	p := r.cfg.Palette
	doc.SetFont(r.cfg.FontName, "B", 16)
	doc.SetTextColor(p.HeadingText.R, p.HeadingText.G, p.HeadingText.B)
	doc.CellFormat(0, headingHeight, heading, "", 1, "L", false, 0, "")
	doc.SetDrawColor(p.Line.R, p.Line.G, p.Line.B)
	x, y := doc.GetX(), doc.GetY()
	doc.Line(x, y, x+ruleWidth, y)
	doc.Ln(5)
}

// nestedItem draws a bold topic line followed by its timestamped details.
func (r *Renderer) nestedItem(doc *fpdf.Fpdf, n *guide.Nested, baseURL string) {
	p := r.cfg.Palette
	doc.SetFont(r.cfg.FontName, "B", 12)
	doc.SetTextColor(p.BodyText.R, p.BodyText.G, p.BodyText.B)
	doc.CellFormat(0, topicHeight, n.Topic, "", 1, "L", false, 0, "")
	for _, d := range n.Details {
		r.writeHighlighted(doc, d.Text, "")
		r.timestampLink(doc, d.Time, baseURL)
	}
}

// flatItem draws each non-time field as a bold label plus highlighted value,
// then one timestamp link for the item.
func (r *Renderer) flatItem(doc *fpdf.Fpdf, f *guide.Flat, baseURL string) {
	p := r.cfg.Palette
	for _, field := range f.Fields {
		doc.SetFont(r.cfg.FontName, "B", 11)
		doc.SetTextColor(p.BodyText.R, p.BodyText.G, p.BodyText.B)
		doc.Write(bodyHeight, guide.HumanizeKey(field.Key)+": ")
		r.writeHighlighted(doc, field.Value, "")
	}
	r.timestampLink(doc, f.Time, baseURL)
}

// writeHighlighted renders text with <hl> spans as bold runs over a
// highlight fill sized to the measured string width; literal runs keep the
// current style. The style reverts after each highlighted run.
func (r *Renderer) writeHighlighted(doc *fpdf.Fpdf, text, style string) {
	p := r.cfg.Palette
	doc.SetFont(r.cfg.FontName, style, 11)
	doc.SetTextColor(p.BodyText.R, p.BodyText.G, p.BodyText.B)
	for _, span := range guide.SplitHighlights(text) {
		if span.Highlight {
			doc.SetFillColor(p.HighlightBG.R, p.HighlightBG.G, p.HighlightBG.B)
			doc.SetFont(r.cfg.FontName, "B", 11)
			doc.CellFormat(doc.GetStringWidth(span.Text), bodyHeight, span.Text, "", 0, "L", true, 0, "")
			doc.SetFont(r.cfg.FontName, style, 11)
		} else {
			doc.Write(bodyHeight, span.Text)
		}
	}
	doc.Ln(-1)
}

// timestampLink draws a right-aligned clickable [MM:SS] cell targeting the
// watch URL at the given offset.
func (r *Renderer) timestampLink(doc *fpdf.Fpdf, seconds int, baseURL string) {
	p := r.cfg.Palette
	doc.SetFont(r.cfg.FontName, "", 9)
	doc.SetTextColor(p.LinkText.R, p.LinkText.G, p.LinkText.B)
	doc.CellFormat(0, linkHeight, video.FormatTimestamp(seconds), "", 1, "R", false, 0,
		video.WithTimeOffset(baseURL, seconds))
}
