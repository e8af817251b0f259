package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/roach88/foodmap/internal/model"
	"github.com/roach88/foodmap/internal/store"
)

// SettingsSource supplies the settings included in an export.
type SettingsSource interface {
	Load(ctx context.Context) (model.Settings, error)
}

// Exporter serialises the catalog into the current backup format.
// It only reads; nothing in the store or settings is modified.
type Exporter struct {
	records  store.Records
	settings SettingsSource
	options
}

// NewExporter creates an Exporter reading records from rs and settings from
// src. A nil src exports the payload without a settings member.
func NewExporter(rs store.Records, src SettingsSource, opts ...Option) *Exporter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Exporter{records: rs, settings: src, options: o}
}

// Snapshot reads every record, in id order, and the current settings.
func (e *Exporter) Snapshot(ctx context.Context) (Payload, error) {
	records, err := e.records.List(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("export records: %w", err)
	}

	p := Payload{Version: CurrentVersion, Stores: records}
	if e.settings != nil {
		s, err := e.settings.Load(ctx)
		if err != nil {
			return Payload{}, fmt.Errorf("export settings: %w", err)
		}
		p.Settings = &s
	}
	return p, nil
}

// Write takes a snapshot and writes it to w as indented JSON.
func (e *Exporter) Write(ctx context.Context, w io.Writer) (Payload, error) {
	p, err := e.Snapshot(ctx)
	if err != nil {
		return Payload{}, err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return Payload{}, fmt.Errorf("marshal backup: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return Payload{}, fmt.Errorf("write backup: %w", err)
	}

	e.metrics.RecordExport(len(p.Stores))
	e.logger.Info("backup exported", "stores", len(p.Stores), "bytes", len(data))
	return p, nil
}

// FileName returns the default backup file name for the exporter's clock.
func (e *Exporter) FileName() string {
	return DefaultFileName(e.now())
}

// DefaultFileName returns "food-map-backup-YYYY-MM-DD.json" for the date of t.
func DefaultFileName(t time.Time) string {
	return "food-map-backup-" + t.Format(time.DateOnly) + ".json"
}
