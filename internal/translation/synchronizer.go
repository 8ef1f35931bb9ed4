package translation

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/connect-labs/ccli/internal/connect"
	"github.com/connect-labs/ccli/internal/stats"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Columns is the expected header row of the attributes sheet.
var Columns = []string{"key", "original value", "action", "value", "comment"}

const (
	// DefaultSheet is the worksheet synchronized when none is given.
	DefaultSheet = "Attributes"
	// StatsModule is the stats module the synchronizer reports into.
	StatsModule = "Attributes"
	// ActionUpdate flags a row for synchronization.
	ActionUpdate = "update"
	// UpdatedMarker replaces the action of a row once it has been sent.
	UpdatedMarker = "-"

	exemptColumn = "original value"
	actionColumn = 3
)

var supportedFormats = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// AttributesUpdater sends attribute updates for a translation.
type AttributesUpdater interface {
	BulkUpdateAttributes(ctx context.Context, translationID string, attrs []connect.Attribute) error
}

// Row is one data row of the attributes sheet.
type Row struct {
	Index         int // 1-based sheet row
	Key           string
	OriginalValue string
	Action        string
	Value         string
	Comment       string
}

type state int

const (
	stateUnopened state = iota
	stateOpened
	stateValidated
	stateSynced
)

// Synchronizer pushes the attributes of one worksheet to a translation.
type Synchronizer struct {
	updater  AttributesUpdater
	stats    *stats.Module
	progress io.Writer
	log      *zap.Logger

	wb    *excelize.File
	sheet string
	state state
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithStats records results into s.
func WithStats(s *stats.Stats) Option {
	return func(sy *Synchronizer) {
		sy.stats = s.Module(StatsModule)
	}
}

// WithProgress draws a progress bar on w while rows are read.
func WithProgress(w io.Writer) Option {
	return func(sy *Synchronizer) {
		sy.progress = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(sy *Synchronizer) {
		sy.log = l
	}
}

// NewSynchronizer creates a Synchronizer sending updates through updater.
func NewSynchronizer(updater AttributesUpdater, opts ...Option) *Synchronizer {
	s := &Synchronizer{updater: updater, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.stats == nil {
		s.stats = stats.New().Module(StatsModule)
	}
	return s
}

// Open loads the workbook, selects worksheet and validates its header row.
func (s *Synchronizer) Open(inputFile, worksheet string) error {
	if err := s.openWorkbook(inputFile); err != nil {
		return err
	}
	if !slices.Contains(s.wb.GetSheetList(), worksheet) {
		return &SheetNotFoundError{Sheet: worksheet}
	}
	s.sheet = worksheet
	s.state = stateOpened

	if err := s.validateHeader(); err != nil {
		return err
	}
	s.state = stateValidated
	s.log.Debug("worksheet opened", zap.String("file", inputFile), zap.String("sheet", worksheet))
	return nil
}

func (s *Synchronizer) openWorkbook(inputFile string) error {
	ext := strings.ToLower(filepath.Ext(inputFile))
	if !slices.Contains(supportedFormats, ext) {
		return fmt.Errorf("%s: unsupported file format, supported formats are: %s",
			inputFile, strings.Join(supportedFormats, ","))
	}
	if _, err := os.Stat(inputFile); err != nil {
		return fmt.Errorf("opening %s: %w", inputFile, err)
	}
	wb, err := excelize.OpenFile(inputFile)
	if err != nil {
		s.log.Debug("cannot open workbook", zap.Error(err))
		return fmt.Errorf("%s is not a valid xlsx file.", inputFile)
	}
	if s.wb != nil {
		s.wb.Close()
	}
	s.wb = wb
	return nil
}

func (s *Synchronizer) validateHeader() error {
	for i, header := range Columns {
		if header == exemptColumn {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		value, err := s.wb.GetCellValue(s.sheet, cell)
		if err != nil {
			return fmt.Errorf("reading %s: %w", cell, err)
		}
		if value != header {
			return &HeaderError{Cell: cell, Expected: header, Actual: value}
		}
	}
	return nil
}

// Sync sends every row flagged for update to translationID in one call and
// marks the sent rows. A failed call is recorded in the stats, not returned.
func (s *Synchronizer) Sync(ctx context.Context, translationID string) error {
	if s.state < stateValidated {
		return ErrNotOpened
	}
	rows, err := s.collect()
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		s.update(ctx, translationID, rows)
	}
	s.state = stateSynced
	return nil
}

func (s *Synchronizer) collect() ([]Row, error) {
	data, err := s.wb.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %s: %w", s.sheet, err)
	}
	if len(data) <= 1 {
		return nil, nil
	}

	bar := newProgressBar(s.progress, len(data)-1)
	defer bar.finish()

	var toUpdate []Row
	for i, cells := range data[1:] {
		row := Row{
			Index:         i + 2,
			Key:           cellAt(cells, 0),
			OriginalValue: cellAt(cells, 1),
			Action:        cellAt(cells, 2),
			Value:         cellAt(cells, 3),
			Comment:       cellAt(cells, 4),
		}
		bar.step(i+1, "Process attribute "+row.Key)
		if row.Action == ActionUpdate {
			toUpdate = append(toUpdate, row)
		} else {
			s.stats.Skipped(1)
		}
	}
	return toUpdate, nil
}

func (s *Synchronizer) update(ctx context.Context, translationID string, rows []Row) {
	attrs := make([]connect.Attribute, 0, len(rows))
	indices := make([]int, 0, len(rows))
	for _, r := range rows {
		attrs = append(attrs, connect.Attribute{Key: r.Key, Value: r.Value, Comment: r.Comment})
		indices = append(indices, r.Index)
	}

	if err := s.updater.BulkUpdateAttributes(ctx, translationID, attrs); err != nil {
		s.log.Debug("bulk update failed", zap.String("translation", translationID), zap.Error(err))
		s.stats.Error(fmt.Sprintf("Error while updating attributes: %v", err), indices...)
		return
	}
	s.stats.Updated(len(rows))

	for _, idx := range indices {
		cell, err := excelize.CoordinatesToCellName(actionColumn, idx)
		if err == nil {
			err = s.wb.SetCellValue(s.sheet, cell, UpdatedMarker)
		}
		if err != nil {
			s.stats.Error(fmt.Sprintf("Cannot mark row as updated: %v", err), idx)
		}
	}
}

// Save writes the workbook, with the update markers, to outputFile.
func (s *Synchronizer) Save(outputFile string) error {
	if s.state < stateOpened || s.wb == nil {
		return ErrNotOpened
	}
	if err := s.wb.SaveAs(outputFile); err != nil {
		return fmt.Errorf("saving %s: %w", outputFile, err)
	}
	return nil
}

// Close releases the workbook.
func (s *Synchronizer) Close() error {
	if s.wb == nil {
		return nil
	}
	err := s.wb.Close()
	s.wb = nil
	s.state = stateUnopened
	if err != nil {
		return fmt.Errorf("closing workbook: %w", err)
	}
	return nil
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
