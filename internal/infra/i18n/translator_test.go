//go:build !integration

package i18n

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	// 1. Arrange
	contentBytes := []byte("greeting: Привет\nwelcome_user: Привет %s")

	// 2. Act
	translator, err := newTranslatorFromBytes(contentBytes)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	// 3. Assert
	t.Run("should translate a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "Привет" {
			t.Errorf("wanted 'Привет', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got := translator.T("welcome_user", "Ali"); got != "Привет Ali" {
			t.Errorf("wanted 'Привет Ali', got '%s'", got)
		}
	})
}

func TestTranslator_NestedKeys(t *testing.T) {
	tr, err := newTranslatorFromBytes([]byte("cmd:\n  start: Старт\n  stop: Стоп\nplain: x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.T("cmd.start"); got != "Старт" {
		t.Errorf("expected flattened key, got %q", got)
	}
	if missing := tr.Missing("plain", "cmd.stop", "cmd.pause", "absent"); len(missing) != 2 || missing[0] != "absent" || missing[1] != "cmd.pause" {
		t.Errorf("unexpected missing keys: %v", missing)
	}
}

func TestTranslator_RejectsNonText(t *testing.T) {
	if _, err := newTranslatorFromBytes([]byte("list:\n  - a\n  - b")); err == nil {
		t.Error("expected an error for a list value")
	}
}

func TestNewTranslator_LocaleMissingKeys(t *testing.T) {
	fsys := fstest.MapFS{"locales/xx.yaml": &fstest.MapFile{Data: []byte("help: only help")}}

	_, err := NewTranslator(fsys, "xx")

	if err == nil || !strings.Contains(err.Error(), "already_registered") {
		t.Errorf("expected a missing-keys error, got %v", err)
	}
}

func TestEmbeddedRussianLocale(t *testing.T) {
	tr, err := NewTranslator(LocalesFS, "ru")
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if tr.Lang() != "ru" {
		t.Errorf("unexpected lang %q", tr.Lang())
	}
	for _, key := range BotKeys {
		if strings.TrimSpace(tr.T(key)) == "" {
			t.Errorf("locale key %q is empty", key)
		}
	}
	if got := tr.T("help", "s_tee"); !strings.Contains(got, "@s_tee") {
		t.Errorf("help text should mention the operator, got %q", got)
	}
}
