package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/arnavsh/promptgate/internal/types"
)

func newTestStorage(t *testing.T) Storage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleProvider(label string, pos int) *ProviderRecord {
	return &ProviderRecord{
		Label:    label,
		Kind:     types.KindChatCompletions,
		BaseURL:  "https://api.example.com/v1",
		Model:    "some-model",
		APIKey:   "sk-secret-value-1234567890",
		Enabled:  true,
		Position: pos,
	}
}

func TestProviderRoundTrip(t *testing.T) {
	store := newTestStorage(t)

	rec := sampleProvider("primary", 1)
	if err := store.CreateProvider(rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("create must assign an id")
	}

	got, err := store.GetProvider(rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	// API key must survive the encrypt/decrypt round trip.
	if got.APIKey != rec.APIKey {
		t.Errorf("api key = %q, want %q", got.APIKey, rec.APIKey)
	}
	if got.Kind != types.KindChatCompletions {
		t.Errorf("kind = %q", got.Kind)
	}
	if !got.Enabled {
		t.Error("enabled flag lost")
	}
}

func TestListProviders_PriorityOrder(t *testing.T) {
	store := newTestStorage(t)

	// Insert out of order; listing must follow position.
	for _, p := range []struct {
		label string
		pos   int
	}{{"third", 3}, {"first", 1}, {"second", 2}} {
		if err := store.CreateProvider(sampleProvider(p.label, p.pos)); err != nil {
			t.Fatalf("create %s failed: %v", p.label, err)
		}
	}

	records, err := store.ListProviders()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, want := range []string{"first", "second", "third"} {
		if records[i].Label != want {
			t.Errorf("position %d label = %q, want %q", i, records[i].Label, want)
		}
	}
}

func TestUpdateAndDeleteProvider(t *testing.T) {
	store := newTestStorage(t)

	rec := sampleProvider("primary", 1)
	if err := store.CreateProvider(rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec.Enabled = false
	rec.Model = "other-model"
	if err := store.UpdateProvider(rec); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := store.GetProvider(rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Enabled || got.Model != "other-model" {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := store.DeleteProvider(rec.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetProvider(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestCreateProvider_RejectsInvalid(t *testing.T) {
	store := newTestStorage(t)

	bad := sampleProvider("", 1)
	if err := store.CreateProvider(bad); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty label: err = %v, want ErrInvalidInput", err)
	}

	badKind := sampleProvider("x", 1)
	badKind.Kind = types.Kind("telepathy")
	if err := store.CreateProvider(badKind); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad kind: err = %v, want ErrInvalidInput", err)
	}
}

func TestContentUpsertAndFallback(t *testing.T) {
	store := newTestStorage(t)

	sections := []*ContentSection{
		{Key: "about", Language: "en", Body: "About me.", Position: 1},
		{Key: "about", Language: "hi", Body: "मेरे बारे में।", Position: 1},
		{Key: "projects", Language: "en", Body: "My projects.", Position: 2},
	}
	for _, sec := range sections {
		if err := store.UpsertContent(sec); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	// Hindi listing: localized section plus the English fallback.
	hi, err := store.ListContent("hi")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(hi) != 2 {
		t.Fatalf("got %d sections, want 2", len(hi))
	}
	if hi[0].Body != "मेरे बारे में।" {
		t.Errorf("localized section not preferred: %q", hi[0].Body)
	}
	if hi[1].Language != "en" {
		t.Errorf("missing translation must fall back to en, got %q", hi[1].Language)
	}

	// Upsert replaces in place.
	if err := store.UpsertContent(&ContentSection{Key: "about", Language: "en", Body: "Updated.", Position: 1}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	en, err := store.ListContent("en")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if en[0].Body != "Updated." {
		t.Errorf("upsert did not replace body: %q", en[0].Body)
	}
}

func TestRequestLogRoundTrip(t *testing.T) {
	store := newTestStorage(t)

	log := &RequestLog{
		RequestID:       "req-1",
		Mode:            "chat",
		Provider:        "primary",
		Model:           "some-model",
		PromptTokens:    42,
		CompletionChars: 120,
		IsStreaming:     true,
		StatusCode:      200,
		DurationMs:      830,
	}
	if err := store.LogRequest(log); err != nil {
		t.Fatalf("log failed: %v", err)
	}

	logs, err := store.RecentLogs(10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	got := logs[0]
	if got.RequestID != "req-1" || !got.IsStreaming || got.PromptTokens != 42 {
		t.Errorf("log not persisted faithfully: %+v", got)
	}
}

func TestStorageClosed(t *testing.T) {
	store := newTestStorage(t)
	store.Close()

	if _, err := store.ListProviders(); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("err = %v, want ErrStorageClosed", err)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey("sk-or-v1-abcdefghijklmnop"); got != "sk-or-..." + "mnop" {
		t.Errorf("masked = %q", got)
	}
	if got := MaskAPIKey("short"); got != "***" {
		t.Errorf("short key masked = %q, want ***", got)
	}
}
