/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/yokaiquiz/prefs"
)

//go:embed assets/*
var assets embed.FS

const maxPrefSize = 64

// playerLang picks the display language: an explicit ?lang=, then the
// player's stored preference, then the configured default.
func playerLang(cfg *Config, d *Data, r *http.Request, playerID string) string {
	if lang := r.URL.Query().Get("lang"); d.text.Has(lang) {
		if playerID != "" {
			if err := d.prefs.Set(playerID, prefs.KeyLang, lang); err != nil {
				logf(cfg, "PREFS: Failed to store language for %s: %v", realIP(r), err)
			}
		}
		return lang
	}

	if playerID != "" {
		lang, ok, err := d.prefs.Get(playerID, prefs.KeyLang)
		if err != nil {
			logf(cfg, "PREFS: Failed to read language for %s: %v", realIP(r), err)
		}
		if ok && d.text.Has(lang) {
			return lang
		}
	}

	return cfg.lang
}

func playerTheme(d *Data, playerID string) string {
	if playerID != "" {
		if v, ok, _ := d.prefs.Get(playerID, prefs.KeyTheme); ok {
			return v
		}
	}

	return "light"
}

func serveHomePage(cfg *Config, d *Data, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		playerID := getOrSetPlayerID(w, r)
		lang := playerLang(cfg, d, r, playerID)

		theme := playerTheme(d, playerID)

		var b strings.Builder

		b.WriteString(fmt.Sprintf(`<!DOCTYPE html><html lang="%s" data-theme="%s"><head>`, lang, theme))
		b.WriteString(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(getFavicon())
		b.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/assets/quiz/app.css">`, cfg.prefix))
		b.WriteString(fmt.Sprintf(`<title>%s</title></head><body>`, html.EscapeString(d.text.T(lang, "app.title"))))
		b.WriteString(fmt.Sprintf(`<header><h1>%s</h1><p>%s</p>`,
			html.EscapeString(d.text.T(lang, "app.title")),
			html.EscapeString(d.text.T(lang, "app.subtitle"))))

		b.WriteString(`<nav class="languages">`)
		for _, l := range d.text.Languages() {
			b.WriteString(fmt.Sprintf(`<a href="%s/?lang=%s">%s</a>`, cfg.prefix, l, strings.ToUpper(l)))
		}
		b.WriteString(`</nav></header>`)

		b.WriteString(fmt.Sprintf(`<main><h2>%s</h2><div class="mode-buttons">`, html.EscapeString(d.text.T(lang, "quiz.chooseMode"))))
		for _, m := range d.roster.Modes(lang, d.text.T(lang, "quiz.modeAll")) {
			b.WriteString(fmt.Sprintf(`<a class="mode-btn" href="%s/quiz?mode=%s">%s</a>`,
				cfg.prefix, url.QueryEscape(m.Key), html.EscapeString(m.Label)))
		}
		b.WriteString(`</div></main></body></html>`)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		written, err := io.WriteString(w, b.String())
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Home page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveModes(cfg *Config, d *Data, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		lang := r.URL.Query().Get("lang")
		if !d.text.Has(lang) {
			lang = cfg.lang
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		err := json.NewEncoder(w).Encode(d.roster.Modes(lang, d.text.T(lang, "quiz.modeAll")))
		if err != nil {
			errs <- err
		}
	}
}

func servePrefs(cfg *Config, d *Data, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			writeError(cfg, w, http.StatusInternalServerError, errors.New("unable to assign player id"))
			return
		}

		all, err := d.prefs.All(playerID)
		if err != nil {
			errs <- err
			writeError(cfg, w, http.StatusInternalServerError, errors.New("unable to read preferences"))
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(all); err != nil {
			errs <- err
		}
	}
}

func setPref(cfg *Config, d *Data) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			writeError(cfg, w, http.StatusInternalServerError, errors.New("unable to assign player id"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxPrefSize))
		if err != nil {
			writeError(cfg, w, http.StatusBadRequest, err)
			return
		}

		key := p.ByName("key")
		value := strings.TrimSpace(string(body))

		if key == prefs.KeyLang && !d.text.Has(value) {
			writeError(cfg, w, http.StatusBadRequest, fmt.Errorf("%w: unsupported language %q", prefs.ErrInvalidPref, value))
			return
		}

		err = d.prefs.Set(playerID, key, value)
		switch {
		case errors.Is(err, prefs.ErrInvalidPref):
			writeError(cfg, w, http.StatusBadRequest, err)
			return
		case err != nil:
			logf(cfg, "PREFS: Failed to store %s for %s: %v", key, realIP(r), err)
			writeError(cfg, w, http.StatusInternalServerError, errors.New("unable to store preference"))
			return
		}

		logf(cfg, "PREFS: Set %s=%s for %s", key, value, realIP(r))

		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, cfg.prefix), "/")

		data, err := assets.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		ext := strings.ToLower(filepath.Ext(fname))
		switch ext {
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		case ".png":
			w.Header().Set("Content-Type", "image/png")
		case ".svg":
			w.Header().Set("Content-Type", "image/svg+xml")
		}

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /

User-agent: *
Disallow: /quiz/`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
