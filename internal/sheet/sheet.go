// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sheet flattens a StudyGuide into a single-sheet XLSX workbook,
// one row per leaf item. See docs/ARCHITECTURE § Tabular Renderer.
package sheet

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/studyguide-engine/internal/guide"
)

// SheetName is the single worksheet's name.
const SheetName = "Study Guide"

// Fixed column headers.
const (
	colSection = "Section"
	colTopic   = "Topic"
	colTime    = "Time (s)"
)

// Renderer flattens study guides into workbooks. Stateless; safe to reuse.
type Renderer struct{}

// Render writes the guide as an XLSX workbook to w. Rows preserve the
// guide's section-by-section, item-by-item order; the column set is the
// union across rows, with absent cells left blank. Identical guides produce
// identical rows and columns.
func (Renderer) Render(g *guide.StudyGuide, w io.Writer) error {
	cols, rows := Flatten(g)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := writeRow(f, 1, headerCells(cols)); err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]any, len(cols))
		for j, col := range cols {
			if v, ok := row[col]; ok {
				cells[j] = v
			}
		}
		if err := writeRow(f, i+2, cells); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// RenderFile writes the workbook to path. In-memory writers are the primary
// target; this is the thin path-based wrapper.
func (r Renderer) RenderFile(g *guide.StudyGuide, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.Render(g, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func headerCells(cols []string) []any {
	cells := make([]any, len(cols))
	for i, c := range cols {
		cells[i] = c
	}
	return cells
}

func writeRow(f *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}

// Flatten produces the ordered column set and one map-backed row per leaf
// item. Columns run Section, Topic (only when a nested section exists),
// field columns in first-seen order, then Time (s). Highlight markup is
// stripped from every value.
func Flatten(g *guide.StudyGuide) ([]string, []map[string]any) {
	var fieldCols []string
	seen := map[string]bool{}
	hasTopic := false
	var rows []map[string]any

	addField := func(name string) {
		if !seen[name] {
			seen[name] = true
			fieldCols = append(fieldCols, name)
		}
	}

	for _, sec := range g.Sections {
		section := guide.HumanizeKey(sec.Key)
		for _, item := range sec.Items {
			if item.Nested != nil {
				hasTopic = true
				for _, d := range item.Nested.Details {
					addField("Detail")
					rows = append(rows, map[string]any{
						colSection: section,
						colTopic:   item.Nested.Topic,
						"Detail":   guide.StripHighlights(d.Text),
						colTime:    d.Time,
					})
				}
				continue
			}

			row := map[string]any{
				colSection: section,
				colTime:    item.Flat.Time,
			}
			for _, field := range item.Flat.Fields {
				name := guide.HumanizeKey(field.Key)
				addField(name)
				row[name] = guide.StripHighlights(field.Value)
			}
			rows = append(rows, row)
		}
	}

	cols := []string{colSection}
	if hasTopic {
		cols = append(cols, colTopic)
	}
	cols = append(cols, fieldCols...)
	cols = append(cols, colTime)
	return cols, rows
}
