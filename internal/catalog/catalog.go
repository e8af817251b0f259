// Package catalog implements the everyday record operations behind the
// add, edit, favorite, delete and list commands.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/roach88/foodmap/internal/imagesig"
	"github.com/roach88/foodmap/internal/model"
	"github.com/roach88/foodmap/internal/store"
)

// DefaultOpeningHours is used when neither the form nor the configuration
// supplies opening hours.
const DefaultOpeningHours = "All day"

// LargeImageBytes is the encoded size above which AttachImage logs a warning.
const LargeImageBytes = 2 * 1024 * 1024

// ErrInvalidImage is returned when an uploaded file is not a supported image
// or exceeds imagesig.MaxFileSize.
var ErrInvalidImage = errors.New("not a supported image (PNG, JPEG, GIF or WebP up to 5 MB)")

// Form holds the user-editable fields of a record.
type Form struct {
	Name              string
	Address           string
	OpeningHours      string
	DeliveryThreshold model.Threshold
	Notes             string
	MenuImage         string
}

// ImageEncoder turns an uploaded image into the bytes that get embedded in
// the record. Resizing and recompression live behind this interface.
type ImageEncoder interface {
	Encode(ctx context.Context, data []byte, format imagesig.Format) (encoded []byte, contentType string, err error)
}

// PassthroughEncoder embeds the image unchanged.
type PassthroughEncoder struct{}

// Encode returns data as-is with the content type of its detected format.
func (PassthroughEncoder) Encode(_ context.Context, data []byte, format imagesig.Format) ([]byte, string, error) {
	return data, format.ContentType(), nil
}

// Service is the catalog API used by the CLI.
type Service struct {
	records      store.Records
	encoder      ImageEncoder
	logger       *slog.Logger
	now          func() time.Time
	defaultHours string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for updatedAt stamping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEncoder replaces the passthrough image encoder.
func WithEncoder(e ImageEncoder) Option {
	return func(s *Service) {
		if e != nil {
			s.encoder = e
		}
	}
}

// WithDefaultHours sets the opening hours used when a form leaves them blank.
func WithDefaultHours(hours string) Option {
	return func(s *Service) {
		if strings.TrimSpace(hours) != "" {
			s.defaultHours = hours
		}
	}
}

// NewService creates a catalog service over rs.
func NewService(rs store.Records, opts ...Option) *Service {
	s := &Service{
		records:      rs,
		encoder:      PassthroughEncoder{},
		logger:       slog.Default(),
		now:          time.Now,
		defaultHours: DefaultOpeningHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add creates a record from f. New records are never favorites.
func (s *Service) Add(ctx context.Context, f Form) (model.StoreRecord, error) {
	rec, err := s.fromForm(f)
	if err != nil {
		return model.StoreRecord{}, err
	}
	rec.IsFavorite = false

	id, err := s.records.Add(ctx, rec)
	if err != nil {
		return model.StoreRecord{}, err
	}
	rec.ID = id

	s.logger.Info("record added", "id", id, "name", rec.Name)
	return rec, nil
}

// Edit overwrites every editable field of record id with f.
// The favorite flag is kept.
func (s *Service) Edit(ctx context.Context, id int64, f Form) (model.StoreRecord, error) {
	rec, err := s.fromForm(f)
	if err != nil {
		return model.StoreRecord{}, err
	}

	patch := model.Patch{
		Name:              &rec.Name,
		Address:           &rec.Address,
		OpeningHours:      &rec.OpeningHours,
		DeliveryThreshold: &rec.DeliveryThreshold,
		Notes:             &rec.Notes,
		MenuImage:         &rec.MenuImage,
		UpdatedAt:         &rec.UpdatedAt,
	}
	if err := s.records.Update(ctx, id, patch); err != nil {
		return model.StoreRecord{}, err
	}

	s.logger.Info("record edited", "id", id, "name", rec.Name)
	return s.records.Get(ctx, id)
}

// ToggleFavorite flips the favorite flag of record id.
// updatedAt is left alone so pinning does not reorder the list.
func (s *Service) ToggleFavorite(ctx context.Context, id int64) (model.StoreRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return model.StoreRecord{}, err
	}

	fav := !rec.IsFavorite
	if err := s.records.Update(ctx, id, model.Patch{IsFavorite: &fav}); err != nil {
		return model.StoreRecord{}, err
	}
	rec.IsFavorite = fav

	s.logger.Debug("favorite toggled", "id", id, "favorite", fav)
	return rec, nil
}

// Delete removes record id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", "id", id)
	return nil
}

// Get returns record id.
func (s *Service) Get(ctx context.Context, id int64) (model.StoreRecord, error) {
	return s.records.Get(ctx, id)
}

// Browse returns the records matching query (case-insensitive, on name and
// notes) in display order: favorites first, then most recently updated.
func (s *Service) Browse(ctx context.Context, query string) ([]model.StoreRecord, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	records = model.Filter(records, strings.TrimSpace(query))
	model.SortForDisplay(records)
	return records, nil
}

// AttachImage validates the image file at path and returns it as a data URI
// ready for Form.MenuImage.
func (s *Service) AttachImage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}

	ok, err := imagesig.ValidateFile(f, info.Size())
	if err != nil {
		return "", err
	}
	if !ok {
		s.logger.Warn("image rejected", "path", path, "size", info.Size())
		return "", ErrInvalidImage
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	format, _ := imagesig.Detect(data)

	encoded, contentType, err := s.encoder.Encode(ctx, data, format)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	uri := imagesig.EncodeDataURI(contentType, encoded)
	if len(encoded) > LargeImageBytes {
		s.logger.Warn("image is large; consider a smaller one to save space",
			"path", path,
			"bytes", len(encoded),
		)
	}
	return uri, nil
}

func (s *Service) fromForm(f Form) (model.StoreRecord, error) {
	rec := model.StoreRecord{
		Name:              strings.TrimSpace(f.Name),
		Address:           f.Address,
		OpeningHours:      f.OpeningHours,
		DeliveryThreshold: f.DeliveryThreshold,
		Notes:             f.Notes,
		MenuImage:         strings.TrimSpace(f.MenuImage),
		UpdatedAt:         s.now().UnixMilli(),
	}
	if err := rec.Validate(); err != nil {
		return model.StoreRecord{}, err
	}
	if strings.TrimSpace(rec.OpeningHours) == "" {
		rec.OpeningHours = s.defaultHours
	}
	if !imagesig.ValidateEncoded(rec.MenuImage) {
		return model.StoreRecord{}, ErrInvalidImage
	}
	return rec, nil
}
