/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package i18n serves UI copy from JSON translation files, looked up by
// dot-separated keys such as "quiz.modeAll".
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

//go:embed lang/*.json
var embedded embed.FS

var ErrNoTranslations = errors.New("no translations found")

type Catalog struct {
	fallback string
	langs    map[string][]byte
	logf     func(format string, args ...any)
}

// Embedded returns the catalog bundled with the binary.
func Embedded(fallback string) (*Catalog, error) {
	return Load(embedded, "lang", fallback)
}

// Load reads every <lang>.json file in dir. fallback must be one of them.
func Load(fsys fs.FS, dir, fallback string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		fallback: fallback,
		langs:    make(map[string][]byte),
		logf:     func(string, ...any) {},
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".json" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}

		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("invalid translation file %s", name)
		}

		c.langs[strings.TrimSuffix(name, ".json")] = data
	}

	if len(c.langs) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoTranslations, dir)
	}

	if !c.Has(fallback) {
		return nil, fmt.Errorf("%w for fallback language %q", ErrNoTranslations, fallback)
	}

	return c, nil
}

// SetDiagnostics receives a line for every missing translation.
func (c *Catalog) SetDiagnostics(logf func(format string, args ...any)) {
	c.logf = logf
}

func (c *Catalog) Has(lang string) bool {
	_, ok := c.langs[lang]

	return ok
}

func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.langs))
	for lang := range c.langs {
		out = append(out, lang)
	}
	sort.Strings(out)

	return out
}

func (c *Catalog) Fallback() string {
	return c.fallback
}

// T translates key into lang, then into the fallback language. When neither
// has it, the key itself is returned.
func (c *Catalog) T(lang, key string) string {
	for _, l := range []string{lang, c.fallback} {
		data, ok := c.langs[l]
		if !ok {
			continue
		}

		if v := gjson.GetBytes(data, key); v.Exists() && v.Type == gjson.String {
			return v.Str
		}
	}

	c.logf("I18N: No translation found for %q (%s)", key, lang)

	return key
}
