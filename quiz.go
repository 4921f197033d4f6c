// Yo-kai Quiz rooms
//
// Players pick a category (everything, a game, or a tribe) and type Yo-kai
// names until every member of the category has been named. A room is shared:
// everyone connected to the same room id plays the same session together.
//
// Features:
// - WebSockets per room ID: /quiz/:roomid and /quiz/:roomid/ws
// - /quiz redirects to a fresh room, keeping any ?mode= selection
// - One goroutine per room owns the quiz.Session; input, lifecycle commands
//   and clock frames are all serialized through it
// - Clock frames are scheduled with time.AfterFunc and handed back to the
//   room goroutine, so a stopped clock never publishes again
// - Players identified by cookie (playerID); language preference per player
// - Rooms auto-reaped after configurable idle timeout
// - Random 8-char room IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current room, backed by go-qrcode

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/yokaiquiz/prefs"
	"github.com/Seednode/yokaiquiz/quiz"
	"github.com/Seednode/yokaiquiz/roster"
)

// Messages coming from clients
type ClientMessage struct {
	Type string `json:"type"`           // "start", "guess", "reset", "lang"
	Mode string `json:"mode,omitempty"` // start
	Text string `json:"text,omitempty"` // guess
	Lang string `json:"lang,omitempty"` // lang
}

// Badge is one slot of the pool grid. Name and Image are only set once the
// Yo-kai has been found.
type Badge struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// SessionInfoMessage is sent on connect and whenever the session is started,
// reset, or the client changes language.
type SessionInfoMessage struct {
	Type   string            `json:"type"` // "session_info"
	State  string            `json:"state"`
	Mode   string            `json:"mode,omitempty"`
	Label  string            `json:"label,omitempty"`
	Lang   string            `json:"lang"`
	Total  int               `json:"total"`
	Found  int               `json:"found"`
	Time   string            `json:"time"`
	Modes  []roster.Mode     `json:"modes"`
	Badges []Badge           `json:"badges"`
	Text   map[string]string `json:"text"` // UI copy in Lang

	// Started marks the snapshot sent when a new play-through begins; the
	// page clears its input field.
	Started bool `json:"started,omitempty"`
}

type RevealMessage struct {
	Type  string `json:"type"` // "reveal"
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Lang  string `json:"lang"`
}

type ScoreMessage struct {
	Type  string `json:"type"` // "score"
	Total int    `json:"total"`
	Found int    `json:"found"`
}

type TimeMessage struct {
	Type string `json:"type"` // "time"
	Time string `json:"time"`
}

type VictoryMessage struct {
	Type    string `json:"type"` // "victory"
	Label   string `json:"label"`
	Time    string `json:"time"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SimpleMessage is for generic notifications ("accepted", "error").
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// uiKeys are the translations shipped to the page with every session_info.
var uiKeys = []string{
	"app.title",
	"quiz.chooseMode",
	"quiz.congrats",
	"quiz.found",
	"quiz.notStarted",
	"quiz.placeholder",
	"quiz.reset",
	"quiz.share",
	"quiz.time",
	"settings.language",
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	lang     string
}

type request struct {
	client *Client
	msg    ClientMessage
}

// Room is one shared quiz. It implements quiz.Renderer; the renderer methods
// are only ever called from the room goroutine with mu held.
type Room struct {
	id   string
	cfg  *Config
	data *Data

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	requests chan request
	frames   chan func()
	done     chan struct{}

	closeOnce sync.Once

	mu sync.RWMutex

	createdAt  time.Time
	lastActive time.Time

	session *quiz.Session
	mode    string
}

func newRoom(cfg *Config, d *Data, roomID string) *Room {
	now := time.Now()

	h := &Room{
		id:         roomID,
		cfg:        cfg,
		data:       d,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		requests:   make(chan request),
		frames:     make(chan func()),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}

	h.session = quiz.NewSession(h, h.schedule,
		quiz.WithLanguage(cfg.lang),
		quiz.WithExclusions(cfg.exclude),
		quiz.WithDiagnostics(func(format string, args ...any) {
			logf(cfg, format, args...)
		}),
	)

	return h
}

// schedule hands the frame back to the room goroutine after one tick.
func (h *Room) schedule(frame func()) func() {
	t := time.AfterFunc(h.cfg.tick, func() {
		select {
		case h.frames <- frame:
		case <-h.done:
		}
	})

	return func() { t.Stop() }
}

func (h *Room) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Room) run() {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.closed() {
				close(c.send)
				h.mu.Unlock()
				continue
			}

			h.lastActive = time.Now()
			h.clients[c] = true
			h.sendLocked(c, h.sessionInfoLocked(c))
			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case req := <-h.requests:
			h.handle(req)

		case frame := <-h.frames:
			h.mu.Lock()
			frame()
			h.mu.Unlock()
		}
	}
}

func (h *Room) handle(req request) {
	c := req.client
	msg := req.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	switch msg.Type {
	case "start":
		h.startLocked(c, msg.Mode)

	case "guess":
		h.guessLocked(c, msg.Text)

	case "reset":
		h.session.Reset()
		h.mode = ""
		h.broadcastInfoLocked()
		logf(h.cfg, "QUIZ: Reset room %s", h.id)

	case "lang":
		h.setLangLocked(c, msg.Lang)
	}
}

func (h *Room) startLocked(c *Client, mode string) {
	pool, err := h.data.roster.Pool(mode)
	if err != nil {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: err.Error()})
		return
	}

	label := h.data.roster.Label(mode, c.lang, h.data.text.T(c.lang, "quiz.modeAll"))

	h.session.SetLanguage(c.lang)
	if err := h.session.Start(pool, label); err != nil {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: err.Error()})
		return
	}
	h.mode = mode

	for client := range h.clients {
		info := h.sessionInfoLocked(client)
		info.Started = true
		h.sendLocked(client, info)
	}

	logf(h.cfg, "QUIZ: Started %q (%d yokai) in room %s", label, len(pool), h.id)
}

func (h *Room) guessLocked(c *Client, text string) {
	added, err := h.session.HandleInput(text)
	switch {
	case errors.Is(err, quiz.ErrInvalidState):
		return
	case err != nil:
		logf(h.cfg, "QUIZ: Failed to handle input in room %s: %v", h.id, err)
		return
	}

	if added > 0 {
		h.sendLocked(c, SimpleMessage{Type: "accepted"})
	}
}

func (h *Room) setLangLocked(c *Client, lang string) {
	if !h.data.text.Has(lang) {
		h.sendLocked(c, SimpleMessage{Type: "error", Message: "unsupported language " + lang})
		return
	}

	c.lang = lang
	if err := h.data.prefs.Set(c.playerID, prefs.KeyLang, lang); err != nil {
		logf(h.cfg, "PREFS: Failed to store language in room %s: %v", h.id, err)
	}

	h.sendLocked(c, h.sessionInfoLocked(c))
}

func (h *Room) sessionInfoLocked(c *Client) SessionInfoMessage {
	found := make(map[int]bool)
	for _, e := range h.session.Revealed() {
		found[e.ID] = true
	}

	pool := h.session.Pool()
	badges := make([]Badge, 0, len(pool))
	for i := range pool {
		b := Badge{ID: pool[i].ID}
		if found[b.ID] {
			b.Name = pool[i].DisplayName(h.session.Language())
			b.Image = pool[i].Image
		}
		badges = append(badges, b)
	}

	text := make(map[string]string, len(uiKeys))
	for _, key := range uiKeys {
		text[key] = h.data.text.T(c.lang, key)
	}

	return SessionInfoMessage{
		Type:   "session_info",
		State:  h.session.State(),
		Mode:   h.mode,
		Label:  h.session.Label(),
		Lang:   c.lang,
		Total:  h.session.Total(),
		Found:  h.session.Found(),
		Time:   h.session.Elapsed(),
		Modes:  h.data.roster.Modes(c.lang, h.data.text.T(c.lang, "quiz.modeAll")),
		Badges: badges,
		Text:   text,
	}
}

func (h *Room) broadcastInfoLocked() {
	for client := range h.clients {
		h.sendLocked(client, h.sessionInfoLocked(client))
	}
}

func (h *Room) broadcastLocked(msg any) {
	for client := range h.clients {
		h.sendLocked(client, msg)
	}
}

// sendLocked drops clients that cannot keep up.
func (h *Room) sendLocked(c *Client, msg any) {
	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Room) Reveal(e *roster.Entity, lang string) {
	h.broadcastLocked(RevealMessage{
		Type:  "reveal",
		ID:    e.ID,
		Name:  e.Names[lang].Display,
		Image: e.Image,
		Lang:  lang,
	})
}

func (h *Room) UpdateScore(total, found int) {
	h.broadcastLocked(ScoreMessage{Type: "score", Total: total, Found: found})
}

func (h *Room) ResetScore(total int) {
	h.broadcastLocked(ScoreMessage{Type: "score", Total: total})
}

func (h *Room) ShowTime(elapsed string) {
	h.broadcastLocked(TimeMessage{Type: "time", Time: elapsed})
}

func (h *Room) Victory(v quiz.Victory) {
	for client := range h.clients {
		h.sendLocked(client, VictoryMessage{
			Type:    "victory",
			Label:   v.Label,
			Time:    v.Elapsed,
			Title:   h.data.text.T(client.lang, "quiz.congrats"),
			Message: strings.Replace(h.data.text.T(client.lang, "quiz.victory"), "%s", v.Label, 1),
		})
	}

	logf(h.cfg, "QUIZ: Room %s completed %q in %s", h.id, v.Label, v.Elapsed)
}

// closeAll stops the room and disconnects all of its clients (used by reaper).
func (h *Room) closeAll() {
	h.closeOnce.Do(func() {
		close(h.done)
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "yokaiquiz_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,32}$`)

// RoomManager holds a set of rooms keyed by room ID, so each $path/$roomid
// is its own isolated session.
type RoomManager struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	idleTimeout time.Duration
	cfg         *Config
	data        *Data
}

func newRoomManager(cfg *Config, d *Data) *RoomManager {
	gm := &RoomManager{
		rooms:       make(map[string]*Room),
		idleTimeout: cfg.sessionTimeout,
		cfg:         cfg,
		data:        d,
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *RoomManager) getRoom(roomID string) *Room {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if room, ok := gm.rooms[roomID]; ok {
		return room
	}

	room := newRoom(gm.cfg, gm.data, roomID)
	gm.rooms[roomID] = room
	go room.run()
	return room
}

// newRoomID generates a crypto-random room ID and ensures it doesn't
// collide with existing rooms.
func (gm *RoomManager) newRoomID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.rooms[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes rooms that have been idle longer than idleTimeout.
func (gm *RoomManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		gm.reap(time.Now().Add(-gm.idleTimeout))
	}
}

func (gm *RoomManager) reap(cutoff time.Time) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	reaped := 0
	for id, room := range gm.rooms {
		room.mu.RLock()
		last := room.lastActive
		room.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.rooms, id)
			go room.closeAll()
			reaped++

			logf(gm.cfg, "QUIZ: Reaped idle room %s", id)
		}
	}

	return reaped
}

// WebSocket handler that picks the room based on :roomid
func serveWSForManager(cfg *Config, gm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		roomID := ps.ByName("roomid")
		if !roomIDPattern.MatchString(roomID) {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		lang := playerLang(cfg, gm.data, r, playerID)

		room := gm.getRoom(roomID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade failed for %s: %v", realIP(r), err)
			return
		}

		// clear the server's request deadlines on the hijacked connection
		_ = conn.NetConn().SetDeadline(time.Time{})

		client := &Client{
			conn:     conn,
			send:     make(chan any, 64),
			playerID: playerID,
			lang:     lang,
		}

		select {
		case room.register <- client:
		case <-room.done:
			_ = conn.Close()
			return
		}

		logf(cfg, "QUIZ: %s joined room %s", realIP(r), roomID)

		go client.writePump()
		client.readPump(room)
	}
}

func (c *Client) readPump(h *Room) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "start", "guess", "reset", "lang":
			select {
			case h.requests <- request{client: c, msg: msg}:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current room URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !roomIDPattern.MatchString(ps.ByName("roomid")) {
			http.Error(w, "invalid room id", http.StatusBadRequest)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		// We are at /.../:roomid/qr; strip trailing "/qr" to get the room URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(scheme+"://"+r.Host+path, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func getRoomHandler(cfg *Config, d *Data) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !roomIDPattern.MatchString(ps.ByName("roomid")) {
			http.NotFound(w, r)
			return
		}

		page, err := assets.ReadFile("assets/quiz/index.html")
		if err != nil {
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		// the page is static apart from the player's language and theme
		page = bytes.Replace(page,
			[]byte(`<html lang="en" data-theme="light">`),
			[]byte(fmt.Sprintf(`<html lang="%s" data-theme="%s">`,
				html.EscapeString(playerLang(cfg, d, r, playerID)),
				html.EscapeString(playerTheme(d, playerID)))),
			1)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)
		w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:; img-src 'self' data:")

		_, _ = w.Write(page)
	}
}

// redirectNewRoom handles GET /path by generating a new random room ID
// (with server-side collision detection) and redirecting to /path/:roomid.
func redirectNewRoom(cfg *Config, path string, gm *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		roomID := gm.newRoomID()
		target := cfg.prefix + path + "/" + roomID

		if mode := r.URL.Query().Get("mode"); mode != "" {
			target += "?mode=" + url.QueryEscape(mode)
		}

		logf(cfg, "QUIZ: Created room %s/%s", path, roomID)
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}

// registerQuiz sets up routes so that:
//   - $path                  → redirects to new random room (8-char ID)
//   - $path/:roomid          → HTML client
//   - $path/:roomid/ws       → WebSocket for that room
//   - $path/:roomid/qr       → PNG QR code for that room URL
func registerQuiz(cfg *Config, d *Data, path string, mux *httprouter.Router) *RoomManager {
	gm := newRoomManager(cfg, d)

	mux.GET(cfg.prefix+path, redirectNewRoom(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:roomid", getRoomHandler(cfg, d))

	mux.GET(cfg.prefix+path+"/:roomid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:roomid/qr", qrHandler(cfg))

	return gm
}
