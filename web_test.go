/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Seednode/yokaiquiz/quiz"
	"github.com/Seednode/yokaiquiz/roster"
)

func testConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		exclude:        quiz.DefaultExclusions,
		lang:           "en",
		port:           8080,
		sessionTimeout: 0,
		tick:           10 * time.Millisecond,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Config, *Data) {
	t.Helper()

	cfg := testConfig()

	d, err := loadData(cfg)
	if err != nil {
		t.Fatalf("loadData() error = %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	errs := make(chan error, 64)
	srv := httptest.NewServer(newRouter(cfg, d, errs))
	t.Cleanup(srv.Close)

	return srv, cfg, d
}

func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	t.Helper()

	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s error = %v", url, err)
	}

	return resp, string(body)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()

	d, err := loadData(cfg)
	if err != nil {
		t.Fatalf("loadData() error = %v", err)
	}
	defer d.Close()

	if err := cfg.validate(d); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	bad := []func(c *Config){
		func(c *Config) { c.port = 0 },
		func(c *Config) { c.tlsCert = "cert.pem" },
		func(c *Config) { c.tick = 0 },
		func(c *Config) { c.lang = "xx" },
	}

	for i, mutate := range bad {
		c := testConfig()
		mutate(c)

		if err := c.validate(d); err == nil {
			t.Errorf("case %d: expected a validation error", i)
		}
	}
}

func TestHealthAndVersion(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := newClient(t)

	resp, body := get(t, c, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || body != "Ok\n" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, body)
	}

	resp, body = get(t, c, srv.URL+"/version")
	if resp.StatusCode != http.StatusOK || body != "yokaiquiz v"+releaseVersion+"\n" {
		t.Fatalf("version = %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers on every response")
	}
}

func TestHomePage(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := newClient(t)

	resp, body := get(t, c, srv.URL+"/?lang=fr")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `lang="fr"`) || !strings.Contains(body, "/quiz?mode=tribe%3Acharming") {
		t.Fatalf("unexpected home page: %s", body)
	}
}

func TestModes(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := newClient(t)

	_, body := get(t, c, srv.URL+"/modes?lang=fr")

	var modes []roster.Mode
	if err := json.Unmarshal([]byte(body), &modes); err != nil {
		t.Fatalf("decoding modes error = %v", err)
	}
	if len(modes) == 0 || modes[0].Key != roster.ModeAll || modes[0].Label != "Tous" {
		t.Fatalf("unexpected modes %+v", modes)
	}
}

func TestPrefs(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := newClient(t)

	put := func(key, value string) int {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/prefs/"+key, strings.NewReader(value))
		if err != nil {
			t.Fatalf("NewRequest() error = %v", err)
		}
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("PUT %s error = %v", key, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := put("lang", "fr"); code != http.StatusNoContent {
		t.Fatalf("PUT lang = %d", code)
	}
	if code := put("theme", "dark"); code != http.StatusNoContent {
		t.Fatalf("PUT theme = %d", code)
	}
	if code := put("lang", "de"); code != http.StatusBadRequest {
		t.Fatalf("PUT unsupported lang = %d", code)
	}
	if code := put("colour", "red"); code != http.StatusBadRequest {
		t.Fatalf("PUT unknown key = %d", code)
	}

	_, body := get(t, c, srv.URL+"/prefs")

	var all map[string]string
	if err := json.Unmarshal([]byte(body), &all); err != nil {
		t.Fatalf("decoding prefs error = %v", err)
	}
	if all["lang"] != "fr" || all["theme"] != "dark" {
		t.Fatalf("unexpected prefs %v", all)
	}

	_, home := get(t, c, srv.URL+"/")
	if !strings.Contains(home, `lang="fr" data-theme="dark"`) {
		t.Fatal("expected stored preferences to apply to the home page")
	}
}

func TestNewRoomRedirect(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := newClient(t)

	resp, _ := get(t, c, srv.URL+"/quiz?mode=tribe:brave")
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/quiz/") || !strings.HasSuffix(loc, "?mode=tribe%3Abrave") {
		t.Fatalf("unexpected location %q", loc)
	}

	id := strings.TrimSuffix(strings.TrimPrefix(loc, "/quiz/"), "?mode=tribe%3Abrave")
	if len(id) != 8 {
		t.Fatalf("expected an 8 character room id, got %q", id)
	}

	resp, body := get(t, c, srv.URL+"/quiz/"+id)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "app.js") {
		t.Fatalf("room page = %d", resp.StatusCode)
	}

	resp, _ = get(t, c, srv.URL+"/quiz/"+id+"/qr")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("qr = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestRoomPageAppliesPreferences(t *testing.T) {
	srv, _, _ := newTestServer(t)
	c := newClient(t)

	_, body := get(t, c, srv.URL+"/quiz/themeroom")
	if !strings.Contains(body, `<html lang="en" data-theme="light">`) {
		t.Fatal("expected the default language and theme on a fresh room page")
	}

	for key, value := range map[string]string{"lang": "fr", "theme": "dark"} {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/prefs/"+key, strings.NewReader(value))
		if err != nil {
			t.Fatalf("NewRequest() error = %v", err)
		}
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("PUT %s error = %v", key, err)
		}
		resp.Body.Close()
	}

	_, body = get(t, c, srv.URL+"/quiz/themeroom")
	if !strings.Contains(body, `<html lang="fr" data-theme="dark">`) {
		t.Fatal("expected stored preferences to apply to the room page")
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func ofType(typ string) func(map[string]any) bool {
	return func(msg map[string]any) bool {
		return msg["type"] == typ
	}
}

func TestRoomPlaythrough(t *testing.T) {
	srv, _, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/quiz/testroom/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	info := readUntil(t, conn, ofType("session_info"))
	if info["state"] != quiz.StateNotStarted {
		t.Fatalf("expected a fresh room, got %v", info["state"])
	}

	if err := conn.WriteJSON(ClientMessage{Type: "start", Mode: "type:legendary"}); err != nil {
		t.Fatalf("WriteJSON(start) error = %v", err)
	}

	info = readUntil(t, conn, ofType("session_info"))
	if info["state"] != quiz.StateInProgress || info["total"] != float64(1) {
		t.Fatalf("unexpected session after start: %v", info)
	}
	if info["started"] != true {
		t.Fatalf("expected the start snapshot to ask the page to clear its input: %v", info)
	}

	// a second player joining late sees the same session
	late, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer late.Close()

	info = readUntil(t, late, ofType("session_info"))
	if info["state"] != quiz.StateInProgress {
		t.Fatalf("expected the late player to join in progress, got %v", info["state"])
	}
	if _, ok := info["started"]; ok {
		t.Fatal("expected a join snapshot to leave the input alone")
	}

	if err := conn.WriteJSON(ClientMessage{Type: "guess", Text: "shogun"}); err != nil {
		t.Fatalf("WriteJSON(guess) error = %v", err)
	}
	if err := conn.WriteJSON(ClientMessage{Type: "guess", Text: "Shogunyan"}); err != nil {
		t.Fatalf("WriteJSON(guess) error = %v", err)
	}

	reveal := readUntil(t, conn, ofType("reveal"))
	if reveal["name"] != "Shogunyan" {
		t.Fatalf("unexpected reveal %v", reveal)
	}

	readUntil(t, conn, ofType("accepted"))

	victory := readUntil(t, late, ofType("victory"))
	if victory["label"] != "LEGENDARY" {
		t.Fatalf("unexpected victory %v", victory)
	}

	if err := late.WriteJSON(ClientMessage{Type: "reset"}); err != nil {
		t.Fatalf("WriteJSON(reset) error = %v", err)
	}

	info = readUntil(t, conn, ofType("session_info"))
	if info["state"] != quiz.StateNotStarted {
		t.Fatalf("expected reset to return to not_started, got %v", info["state"])
	}
}

func TestRoomRejectsUnknownMode(t *testing.T) {
	srv, _, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/quiz/badmode/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	readUntil(t, conn, ofType("session_info"))

	if err := conn.WriteJSON(ClientMessage{Type: "start", Mode: "tribe:nope"}); err != nil {
		t.Fatalf("WriteJSON(start) error = %v", err)
	}

	msg := readUntil(t, conn, ofType("error"))
	if !strings.Contains(msg["message"].(string), "tribe:nope") {
		t.Fatalf("unexpected error %v", msg)
	}
}

func TestReapIdleRooms(t *testing.T) {
	cfg := testConfig()

	d, err := loadData(cfg)
	if err != nil {
		t.Fatalf("loadData() error = %v", err)
	}
	defer d.Close()

	gm := newRoomManager(cfg, d)

	room := gm.getRoom("idle")
	if gm.getRoom("idle") != room {
		t.Fatal("expected the same room for the same id")
	}

	if n := gm.reap(time.Now().Add(-time.Hour)); n != 0 {
		t.Fatalf("expected a fresh room to survive, reaped %d", n)
	}
	if n := gm.reap(time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("expected the idle room to be reaped, reaped %d", n)
	}

	select {
	case <-room.done:
	case <-time.After(5 * time.Second):
		t.Fatal("expected the reaped room to stop")
	}

	if gm.getRoom("idle") == room {
		t.Fatal("expected a new room after reaping")
	}
}
