package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/mizuki-h/artbot/bot/domain"
)

var (
	// ErrDuplicateSource is returned when appending a record whose source
	// already exists in the store.
	ErrDuplicateSource = errors.New("source already in store")

	// ErrNotFound is returned when updating a record that is not in the store.
	ErrNotFound = errors.New("record not found")
)

// Store persists the image database as a single JSON document. Every read
// loads the whole file and every mutation rewrites it; the last writer wins.
type Store struct {
	path     string
	validate *validator.Validate
}

// NewStore creates a store over the given database file. The file does not
// need to exist yet; a missing file reads as an empty database.
func NewStore(path string) *Store {
	return &Store{
		path:     path,
		validate: validator.New(),
	}
}

// Load reads and validates the full database. A missing file yields an empty
// database rather than an error.
func (s *Store) Load() (*domain.ImageDB, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &domain.ImageDB{Images: []domain.ImageRecord{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image db %s: %w", s.path, err)
	}

	var db domain.ImageDB
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("failed to parse image db %s: %w", s.path, err)
	}

	for i := range db.Images {
		if err := s.validate.Struct(&db.Images[i]); err != nil {
			return nil, fmt.Errorf("invalid record %q in image db: %w", db.Images[i].Source, err)
		}
	}

	return &db, nil
}

// Save validates every record and rewrites the whole database file.
func (s *Store) Save(db *domain.ImageDB) error {
	for i := range db.Images {
		if err := s.validate.Struct(&db.Images[i]); err != nil {
			return fmt.Errorf("refusing to save invalid record %q: %w", db.Images[i].Source, err)
		}
	}

	raw, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode image db: %w", err)
	}
	raw = append(raw, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write image db %s: %w", s.path, err)
	}
	return nil
}

// Contains reports whether a record with the given source exists.
func (s *Store) Contains(source string) (bool, error) {
	db, err := s.Load()
	if err != nil {
		return false, err
	}
	for i := range db.Images {
		if db.Images[i].Source == source {
			return true, nil
		}
	}
	return false, nil
}

// Append validates the record, rejects duplicate sources, and persists the
// grown database. The store is left untouched when the record is rejected.
func (s *Store) Append(rec *domain.ImageRecord) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := s.validate.Struct(rec); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	db, err := s.Load()
	if err != nil {
		return err
	}
	for i := range db.Images {
		if db.Images[i].Source == rec.Source {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, rec.Source)
		}
	}

	db.Images = append(db.Images, *rec)
	return s.Save(db)
}

// SetPosted records the URL of the latest publish of the given source.
func (s *Store) SetPosted(source, postURL string) error {
	db, err := s.Load()
	if err != nil {
		return err
	}
	for i := range db.Images {
		if db.Images[i].Source == source {
			db.Images[i].Posted = postURL
			return s.Save(db)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, source)
}
