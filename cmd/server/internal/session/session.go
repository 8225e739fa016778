package session

import (
	"crypto/sha256"
	"encoding/gob"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/portfoliobuilder/intake/internal/config"
	"github.com/portfoliobuilder/intake/internal/logger"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindDanger  Kind = "danger"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Kind    Kind
	Message string
}

func init() {
	gob.Register(Flash{})
}

const (
	idKey      = "sid"
	contextKey = "intake.session"
)

// Manager issues signed, encrypted session cookies. The cookie carries only
// the session id and pending flashes; drafts live server side.
type Manager struct {
	store *sessions.CookieStore
	name  string
}

func NewManager(cfg *config.SessionConfig) *Manager {
	hashKey := sha256.Sum256([]byte("auth:" + cfg.Secret))
	blockKey := sha256.Sum256([]byte("enc:" + cfg.Secret))

	store := sessions.NewCookieStore(hashKey[:], blockKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(cfg.MaxAge.Seconds()))

	return &Manager{store: store, name: cfg.Name}
}

// Load reads the session cookie. An unreadable cookie (rotated secret,
// tampering) yields a fresh session.
func (m *Manager) Load(r *http.Request) *State {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		logger.Logger.DebugContext(r.Context(), "discarding unreadable session cookie", "error", err)
		s = sessions.NewSession(m.store, m.name)
		opts := *m.store.Options
		s.Options = &opts
		s.IsNew = true
	}

	return &State{session: s}
}

// State is the per-request view of a session.
type State struct {
	session *sessions.Session
}

// ID returns the session id, minting one on first use.
func (s *State) ID() string {
	if id, ok := s.session.Values[idKey].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	s.session.Values[idKey] = id
	return id
}

func (s *State) AddFlash(kind Kind, message string) {
	s.session.AddFlash(Flash{Kind: kind, Message: message})
}

// Flashes drains the pending flashes.
func (s *State) Flashes() []Flash {
	raw := s.session.Flashes()
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}

	return flashes
}

func (s *State) Save(r *http.Request, w http.ResponseWriter) error {
	return s.session.Save(r, w)
}

func Set(c echo.Context, s *State) {
	c.Set(contextKey, s)
}

// From returns the state attached by the session middleware.
func From(c echo.Context) (*State, bool) {
	s, ok := c.Get(contextKey).(*State)
	return s, ok
}
