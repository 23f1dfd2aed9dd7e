package persistence

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mizuki-h/artbot/bot/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "db.json"))
}

func record(source string) *domain.ImageRecord {
	return &domain.ImageRecord{
		Source:     source,
		ImagePaths: []string{"images/example.com/a.png"},
		Author:     domain.Author{Handle: "@artist@twitter.com", Name: "artist"},
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	db, err := newTestStore(t).Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(db.Images) != 0 {
		t.Errorf("expected empty db, got %d records", len(db.Images))
	}
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)

	want := &domain.ImageDB{Images: []domain.ImageRecord{
		{
			Source:      "https://twitter.com/artist/status/12345",
			ImagePaths:  []string{"images/pbs.twimg.com/a.jpg", "images/pbs.twimg.com/b.jpg"},
			Author:      domain.Author{Handle: "@artist@twitter.com", Name: "Artist"},
			Description: "a picture",
			Links:       []string{"https://example.com/shop"},
			NSFW:        true,
			CW:          "eye contact",
			Posted:      "https://pawoo.net/@bot/1",
		},
		{
			Source:     "https://pawoo.net/@someone/999",
			ImagePaths: []string{domain.BoostSentinel},
		},
	}}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestAppendRejectsDuplicateSource(t *testing.T) {
	store := newTestStore(t)

	if err := store.Append(record("https://danbooru.donmai.us/posts/1")); err != nil {
		t.Fatalf("first Append returned error: %v", err)
	}

	err := store.Append(record("https://danbooru.donmai.us/posts/1"))
	if !errors.Is(err, ErrDuplicateSource) {
		t.Fatalf("Append error = %v, want ErrDuplicateSource", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(db.Images) != 1 {
		t.Errorf("store mutated by rejected append: %d records", len(db.Images))
	}
}

func TestAppendValidatesImagePaths(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		ok    bool
	}{
		{name: "no paths", paths: nil, ok: false},
		{name: "empty path entry", paths: []string{""}, ok: false},
		{name: "one path", paths: []string{"images/a.png"}, ok: true},
		{name: "four paths", paths: []string{"a", "b", "c", "d"}, ok: true},
		{name: "five paths", paths: []string{"a", "b", "c", "d", "e"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			rec := record("https://example.com/" + tt.name)
			rec.ImagePaths = tt.paths

			err := store.Append(rec)
			if tt.ok && err != nil {
				t.Errorf("Append returned error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSetPosted(t *testing.T) {
	store := newTestStore(t)
	if err := store.Append(record("https://twitter.com/a/status/1")); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if err := store.SetPosted("https://twitter.com/a/status/1", "https://pawoo.net/@bot/42"); err != nil {
		t.Fatalf("SetPosted returned error: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := db.Images[0].Posted; got != "https://pawoo.net/@bot/42" {
		t.Errorf("Posted = %q, want %q", got, "https://pawoo.net/@bot/42")
	}

	if err := store.SetPosted("https://nowhere.invalid/x", "u"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPosted for unknown source = %v, want ErrNotFound", err)
	}
}
