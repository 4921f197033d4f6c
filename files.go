/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Seednode/yokaiquiz/i18n"
	"github.com/Seednode/yokaiquiz/prefs"
	"github.com/Seednode/yokaiquiz/roster"
)

// Data is everything loaded once at startup and shared read-only by every
// quiz room, apart from the preference store.
type Data struct {
	roster *roster.Roster
	text   *i18n.Catalog
	prefs  prefs.Store
}

func loadData(cfg *Config) (*Data, error) {
	var (
		r   *roster.Roster
		err error
	)

	if cfg.roster == "" {
		r, err = roster.Sample()
	} else {
		var dir string
		dir, err = filepath.Abs(cfg.roster)
		if err != nil {
			return nil, err
		}
		r, err = roster.Load(os.DirFS(dir), ".")
	}
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}

	text, err := i18n.Embedded(roster.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}
	text.SetDiagnostics(func(format string, args ...any) {
		logf(cfg, format, args...)
	})

	store, err := prefs.Open(cfg.prefs)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}

	logf(cfg, "START: Loaded %d yokai, %d tribes and %d games", len(r.Yokai), len(r.Tribes), len(r.Games))

	return &Data{
		roster: r,
		text:   text,
		prefs:  store,
	}, nil
}

func (d *Data) Close() error {
	return d.prefs.Close()
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}
