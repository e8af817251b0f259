// Package settings persists the user-level display settings as a small YAML
// file kept beside the catalog database.
//
// The file is independent of the database: a settings write can fail or
// succeed without affecting committed catalog rows.
package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/foodmap/internal/model"
)

// DefaultAnnouncement is shown until the user writes their own.
const DefaultAnnouncement = "Welcome to the ordering system!\n" +
	"Please place your order before 10:30.\n" +
	"When the delivery arrives, call extension #1234."

// Defaults returns the settings used when no file exists yet.
func Defaults() model.Settings {
	return model.Settings{
		ShowAnnouncement:    true,
		AnnouncementContent: DefaultAnnouncement,
	}
}

// File is a settings store backed by one YAML file.
type File struct {
	path string
}

// NewFile returns a store for the settings file at path.
// The file is not touched until Load or Save is called.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the settings file path.
func (f *File) Path() string {
	return f.path
}

// Load reads the settings file. A missing or empty file yields Defaults.
// Keys absent from the file keep their default values.
func (f *File) Load(ctx context.Context) (model.Settings, error) {
	if err := ctx.Err(); err != nil {
		return model.Settings{}, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	s := Defaults()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return model.Settings{}, fmt.Errorf("parse settings %s: %w", f.path, err)
	}
	return s, nil
}

// Save replaces the settings file atomically: the new content is written to a
// temporary file in the same directory and renamed over the old one.
func (f *File) Save(ctx context.Context, s model.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("rename settings: %w", err)
	}

	success = true
	return nil
}
