package tripparams

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// recordFile is the fixed name of the single on-disk record.
const recordFile = "travel_params.json"

// FileStore persists TravelParams as one JSON file on the local disk.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// FileStoreConfig holds configuration for the file store.
type FileStoreConfig struct {
	// Path is the full path of the record file. If empty, the record is
	// placed under the user config dir (e.g. ~/.config/tripway/).
	Path string

	// Logger for swallowed-failure diagnostics.
	Logger zerolog.Logger
}

// NewFileStore creates a file-backed store.
func NewFileStore(cfg FileStoreConfig) *FileStore {
	path := cfg.Path
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "tripway", recordFile)
		} else {
			path = recordFile
		}
	}
	return &FileStore{path: path, logger: cfg.Logger}
}

// Path returns the record file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save overwrites the record. Failures are logged, never returned.
func (s *FileStore) Save(params TravelParams) {
	data, err := json.Marshal(params)
	if err != nil {
		s.logger.Error().Err(err).Msg("encode travel params")
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("create params dir")
		return
	}

	// Write-then-rename keeps a reader from ever seeing a torn record.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.logger.Error().Err(err).Str("path", tmp).Msg("write travel params")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("replace travel params")
	}
}

// Load reads the record back. Absent and undecodable both report false.
func (s *FileStore) Load() (TravelParams, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error().Err(err).Str("path", s.path).Msg("read travel params")
		}
		return TravelParams{}, false
	}

	var params TravelParams
	if err := json.Unmarshal(data, &params); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("decode travel params")
		return TravelParams{}, false
	}
	return params, true
}

// UpdateField overwrites one field, preserving the rest of the record.
func (s *FileStore) UpdateField(field Field, value string) {
	params, _ := s.Load()
	params.Set(field, value)
	s.Save(params)
}

// Clear deletes the record.
func (s *FileStore) Clear() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error().Err(err).Str("path", s.path).Msg("clear travel params")
	}
}
