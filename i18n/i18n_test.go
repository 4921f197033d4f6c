package i18n_test

import (
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/Seednode/yokaiquiz/i18n"
)

func TestEmbeddedCatalog(t *testing.T) {
	t.Parallel()

	c, err := i18n.Embedded("en")
	if err != nil {
		t.Fatalf("Embedded() error = %v", err)
	}

	if got := fmt.Sprint(c.Languages()); got != "[en fr jp]" {
		t.Fatalf("unexpected languages %s", got)
	}

	if got := c.T("fr", "quiz.modeAll"); got != "Tous" {
		t.Fatalf("expected Tous, got %q", got)
	}
	if got := c.T("jp", "quiz.time"); got != "時間" {
		t.Fatalf("expected 時間, got %q", got)
	}
}

func TestMissingTranslationsFallBack(t *testing.T) {
	t.Parallel()

	c, err := i18n.Embedded("en")
	if err != nil {
		t.Fatalf("Embedded() error = %v", err)
	}

	var missing []string
	c.SetDiagnostics(func(format string, args ...any) {
		missing = append(missing, fmt.Sprintf(format, args...))
	})

	// jp has no play.help, en does
	if got := c.T("jp", "play.help"); got == "play.help" {
		t.Fatalf("expected a fallback to English")
	}
	if got := c.T("de", "quiz.reset"); got != "Reset" {
		t.Fatalf("expected an unknown language to fall back to English, got %q", got)
	}

	if got := c.T("fr", "quiz.nope"); got != "quiz.nope" {
		t.Fatalf("expected the key back, got %q", got)
	}
	// objects are not strings
	if got := c.T("en", "quiz"); got != "quiz" {
		t.Fatalf("expected the key back for an object, got %q", got)
	}
	if len(missing) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", missing)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	if _, err := i18n.Load(fstest.MapFS{"lang/readme.txt": {Data: []byte("hi")}}, "lang", "en"); !errors.Is(err, i18n.ErrNoTranslations) {
		t.Fatalf("expected ErrNoTranslations, got %v", err)
	}

	if _, err := i18n.Load(fstest.MapFS{"lang/fr.json": {Data: []byte(`{}`)}}, "lang", "en"); !errors.Is(err, i18n.ErrNoTranslations) {
		t.Fatalf("expected ErrNoTranslations for a missing fallback, got %v", err)
	}

	if _, err := i18n.Load(fstest.MapFS{"lang/en.json": {Data: []byte(`{"a":`)}}, "lang", "en"); err == nil {
		t.Fatalf("expected invalid JSON to be rejected")
	}
}
