package backup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/foodmap/internal/imagesig"
	"github.com/roach88/foodmap/internal/metrics"
	"github.com/roach88/foodmap/internal/model"
	"github.com/roach88/foodmap/internal/store"
)

// SettingsApplier persists settings carried by an imported backup.
type SettingsApplier interface {
	Save(ctx context.Context, s model.Settings) error
}

// RunIDGenerator produces the correlation id attached to each import run.
// Implemented by UUIDv7Generator (production) and testutil.SequenceRunIDs (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Result summarises a finished import.
type Result struct {
	RunID string `json:"runId"`
	Mode  Mode   `json:"mode"`

	// Added counts records inserted with a fresh id.
	Added int `json:"added"`

	// Updated counts existing records overwritten by a merge.
	Updated int `json:"updated"`

	// ImagesRejected counts records whose menu image failed the signature
	// check and was dropped. The records themselves were still written.
	ImagesRejected int `json:"imagesRejected"`

	// SettingsApplied is true when the backup carried settings and they
	// were saved after the records committed.
	SettingsApplied bool `json:"settingsApplied"`

	// SettingsErr is the settings save failure, if any. It never causes
	// Reconcile itself to fail.
	SettingsErr error `json:"-"`
}

// Option configures a Reconciler or an Exporter.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	runIDs  RunIDGenerator
	now     func() time.Time
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
		runIDs: UUIDv7Generator{},
		now:    time.Now,
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records runs in m. Metrics are off by default.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRunIDGenerator replaces the UUIDv7 run id generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.runIDs = g
		}
	}
}

// WithClock replaces time.Now for updatedAt stamping and file names.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Reconciler imports backups into a store.
type Reconciler struct {
	store    store.Backend
	settings SettingsApplier
	options
}

// NewReconciler creates a Reconciler writing records to b and settings to
// applier. A nil applier ignores any settings in the payload.
func NewReconciler(b store.Backend, applier SettingsApplier, opts ...Option) *Reconciler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Reconciler{store: b, settings: applier, options: o}
}

// Reconcile decodes raw and applies it to the store using mode.
//
// All record writes happen inside one transaction: either every record is
// written or, on any failure, none are. Settings are applied afterwards.
func (r *Reconciler) Reconcile(ctx context.Context, raw []byte, mode Mode) (Result, error) {
	res := Result{RunID: r.runIDs.Generate(), Mode: mode}
	logger := r.logger.With("run_id", res.RunID, "mode", string(mode))

	if !mode.Valid() {
		return res, fmt.Errorf("unknown import mode %q", mode)
	}

	payload, err := Decode(raw)
	if err != nil {
		outcome := metrics.OutcomeFormatError
		if IsParseError(err) {
			outcome = metrics.OutcomeParseError
		}
		logger.Warn("backup rejected", "error", err)
		r.metrics.RecordImport(string(mode), outcome, 0, 0, 0)
		return res, err
	}

	logger.Debug("backup decoded",
		"version", payload.Version,
		"stores", len(payload.Stores),
		"has_settings", payload.Settings != nil,
	)

	now := r.now().UnixMilli()
	records := make([]model.StoreRecord, len(payload.Stores))
	for i, rec := range payload.Stores {
		clean, rejected := sanitize(rec, now)
		if rejected {
			res.ImagesRejected++
			logger.Info("menu image rejected", "index", i, "name", rec.Name)
		}
		records[i] = clean
	}

	var added, updated int
	err = r.store.RunAtomic(ctx, func(tx store.Records) error {
		added, updated = 0, 0
		switch mode {
		case ModeReplace:
			return replaceAll(ctx, tx, records, &added)
		default:
			return mergeAll(ctx, tx, records, &added, &updated)
		}
	})
	if err != nil {
		logger.Error("import rolled back", "error", err)
		r.metrics.RecordImport(string(mode), metrics.OutcomeTransactionError, 0, 0, 0)
		return Result{RunID: res.RunID, Mode: mode}, &TransactionError{Mode: mode, Err: err}
	}
	res.Added, res.Updated = added, updated

	if payload.Settings != nil && r.settings != nil {
		if err := r.settings.Save(ctx, *payload.Settings); err != nil {
			res.SettingsErr = err
			logger.Warn("settings not applied", "error", err)
		} else {
			res.SettingsApplied = true
		}
	}

	r.metrics.RecordImport(string(mode), metrics.OutcomeSuccess, res.Added, res.Updated, res.ImagesRejected)
	logger.Info("import committed",
		"added", res.Added,
		"updated", res.Updated,
		"images_rejected", res.ImagesRejected,
		"settings_applied", res.SettingsApplied,
	)
	return res, nil
}

func replaceAll(ctx context.Context, tx store.Records, records []model.StoreRecord, added *int) error {
	if err := tx.Clear(ctx); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := tx.Add(ctx, rec); err != nil {
			return err
		}
		*added++
	}
	return nil
}

func mergeAll(ctx context.Context, tx store.Records, records []model.StoreRecord, added, updated *int) error {
	for _, rec := range records {
		existing, found, err := tx.FindFirstByName(ctx, rec.Name)
		if err != nil {
			return err
		}
		if found {
			if err := tx.Update(ctx, existing.ID, model.FullPatch(rec)); err != nil {
				return err
			}
			*updated++
			continue
		}
		if _, err := tx.Add(ctx, rec); err != nil {
			return err
		}
		*added++
	}
	return nil
}

// sanitize prepares an imported record for writing. It strips the id, drops
// a menu image that fails the signature check, and stamps updatedAt when the
// backup did not carry a usable one. The bool reports a dropped image.
func sanitize(rec model.StoreRecord, nowMillis int64) (model.StoreRecord, bool) {
	rec = rec.WithoutID()

	rejected := false
	switch {
	case strings.TrimSpace(rec.MenuImage) == "":
		rec.MenuImage = ""
	case !imagesig.ValidateEncoded(rec.MenuImage):
		rec.MenuImage = ""
		rejected = true
	}

	if rec.UpdatedAt <= 0 {
		rec.UpdatedAt = nowMillis
	}
	return rec, rejected
}
