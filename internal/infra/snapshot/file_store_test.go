//go:build !integration

package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	listing := model.Listing{
		Category:     "qa",
		Name:         "QA Engineer",
		Salary:       "от 1000 рублей",
		Company:      "Acme & Co",
		Location:     "Москва",
		Description:  "Тестирование <API>",
		Requirements: "Отсутствуют",
		Skills:       "SQL",
		URL:          "https://hh.ru/vacancy/1",
	}

	t.Run("should report a missing snapshot as not found", func(t *testing.T) {
		_, err := store.Read(ctx, "java")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should round trip listings and restore the category", func(t *testing.T) {
		if err := store.Write(ctx, "qa", []model.Listing{listing}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		got, err := store.Read(ctx, "qa")
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(got) != 1 || got[0] != listing {
			t.Fatalf("unexpected snapshot: %+v", got)
		}
	})

	t.Run("should write sorted, indented, unescaped json", func(t *testing.T) {
		b, err := os.ReadFile(filepath.Join(dir, "qa.json"))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		s := string(b)
		if !strings.Contains(s, "\n    \"company\": \"Acme & Co\"") {
			t.Errorf("expected two-space indentation and raw ampersand:\n%s", s)
		}
		if !strings.Contains(s, "Тестирование <API>") {
			t.Errorf("expected cyrillic and markup to be kept as is:\n%s", s)
		}
		if strings.Contains(s, "category") {
			t.Errorf("category must not be persisted:\n%s", s)
		}
		keys := []string{"company", "created_at", "description", "experience", "location", "name",
			"published_at", "requirements", "salary", "schedule", "skills", "url"}
		last := -1
		for _, k := range keys {
			idx := strings.Index(s, "\""+k+"\"")
			if idx <= last {
				t.Fatalf("key %q is out of order", k)
			}
			last = idx
		}
	})

	t.Run("should overwrite wholesale", func(t *testing.T) {
		if err := store.Write(ctx, "qa", nil); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		got, err := store.Read(ctx, "qa")
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected an empty snapshot, got %d entries", len(got))
		}
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("temporary file left behind: %s", e.Name())
			}
		}
	})
}
