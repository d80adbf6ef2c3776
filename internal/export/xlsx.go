// Package export writes run results to spreadsheet workbooks.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/vitisgeo/terroir-cli/internal/model"
	"github.com/vitisgeo/terroir-cli/internal/pipeline"
)

var summaryHeader = []string{
	"indicator", "unit", "min", "max", "mean",
	"cells_suitable", "cells_unsuitable", "cells_nodata",
	"suitable_fraction", "thresholds",
}

// Workbook builds an XLSX workbook for a completed run: a run sheet with the
// metadata, a summary sheet with one row per indicator, and optionally a
// validation sheet when a vineyard capture report is supplied.
func Workbook(run *model.Run, summaries []model.IndicatorSummary, capture *pipeline.CaptureReport) (*xlsx.File, error) {
	f := xlsx.NewFile()

	runSheet, err := f.AddSheet("Run")
	if err != nil {
		return nil, eris.Wrap(err, "export: add run sheet")
	}
	addKV(runSheet, "run_id", run.ID)
	addKV(runSheet, "region", run.Region)
	addKV(runSheet, "year", run.Year)
	addKV(runSheet, "status", string(run.Status))
	addKV(runSheet, "created_at", run.CreatedAt.Format("2006-01-02 15:04:05"))

	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return nil, eris.Wrap(err, "export: add summary sheet")
	}
	header := sheet.AddRow()
	for _, h := range summaryHeader {
		header.AddCell().SetString(h)
	}
	for _, sm := range summaries {
		row := sheet.AddRow()
		row.AddCell().SetString(sm.Indicator)
		row.AddCell().SetString(sm.Unit)
		row.AddCell().SetFloat(sm.Min)
		row.AddCell().SetFloat(sm.Max)
		row.AddCell().SetFloat(sm.Mean)
		row.AddCell().SetInt(sm.CellsTrue)
		row.AddCell().SetInt(sm.CellsFalse)
		row.AddCell().SetInt(sm.CellsNoData)
		row.AddCell().SetFloat(sm.SuitableFraction())
		row.AddCell().SetString(sm.Thresholds)
	}

	if capture != nil {
		vs, err := f.AddSheet("Validation")
		if err != nil {
			return nil, eris.Wrap(err, "export: add validation sheet")
		}
		addKV(vs, "vineyard_sites", capture.Sites)
		addKV(vs, "captured", capture.Captured)
		addKV(vs, "undecided", capture.Undecided)
		addKV(vs, "capture_fraction", capture.Fraction)
	}

	return f, nil
}

// WriteWorkbook builds the workbook and saves it to path.
func WriteWorkbook(path string, run *model.Run, summaries []model.IndicatorSummary, capture *pipeline.CaptureReport) error {
	f, err := Workbook(run, summaries, capture)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func addKV(sheet *xlsx.Sheet, key string, value any) {
	row := sheet.AddRow()
	row.AddCell().SetString(key)
	switch v := value.(type) {
	case string:
		row.AddCell().SetString(v)
	case int:
		row.AddCell().SetInt(v)
	case float64:
		row.AddCell().SetFloat(v)
	default:
		row.AddCell().SetValue(v)
	}
}
