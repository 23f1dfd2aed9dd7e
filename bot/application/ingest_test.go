package application

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mizuki-h/artbot/bot/domain"
	"github.com/mizuki-h/artbot/bot/persistence"
	"github.com/mizuki-h/artbot/shared/clients/danbooru"
)

func newIngestWithStore(t *testing.T, input string) (*IngestService, *persistence.Store, *strings.Builder) {
	t.Helper()
	store := persistence.NewStore(filepath.Join(t.TempDir(), "db.json"))
	out := &strings.Builder{}
	s := &IngestService{
		store:      store,
		caps:       allCaps(),
		images:     &fakeImages{},
		prompt:     NewPrompter(strings.NewReader(input), out),
		httpClient: http.DefaultClient,
	}
	return s, store, out
}

func TestRunMastodonShortcut(t *testing.T) {
	s, store, _ := newIngestWithStore(t, "https://pawoo.net/@someone/12345\n\n")

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(db.Images) != 1 {
		t.Fatalf("store has %d records, want 1", len(db.Images))
	}
	rec := db.Images[0]
	if rec.Source != "https://pawoo.net/@someone/12345" {
		t.Errorf("Source = %q", rec.Source)
	}
	if !rec.BoostOnly() {
		t.Errorf("ImagePaths = %v, want the boost sentinel", rec.ImagePaths)
	}
}

func TestRunRejectsDuplicateSource(t *testing.T) {
	s, store, out := newIngestWithStore(t, "https://pawoo.net/@someone/1\nhttps://pawoo.net/@someone/1\n\n")

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(db.Images) != 1 {
		t.Errorf("store has %d records, want 1", len(db.Images))
	}
	if !strings.Contains(out.String(), "already added!") {
		t.Error("user was not told about the duplicate")
	}
}

func TestRunRejectsDuplicateAfterSourceRewrite(t *testing.T) {
	s, store, out := newIngestWithStore(t, "https://danbooru.donmai.us/posts/7\n\n")
	s.booru = &fakeBooru{post: &danbooru.Post{
		FileURL: "/data/a.png",
		Source:  "https://twitter.com/artist/status/42",
		Rating:  "s",
	}}

	seed := &domain.ImageRecord{
		Source:     "https://twitter.com/artist/status/42",
		ImagePaths: []string{"images/test/a.png"},
	}
	if err := store.Append(seed); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	db, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(db.Images) != 1 {
		t.Errorf("store has %d records, want the rewritten duplicate rejected", len(db.Images))
	}
	if !strings.Contains(out.String(), "already added!") {
		t.Error("user was not told about the rewritten duplicate")
	}
}
