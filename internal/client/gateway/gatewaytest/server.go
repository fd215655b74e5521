// Package gatewaytest runs an in-memory admin API implementing the HTTP
// contract the gateway talks to. Tests use it to exercise the real client
// stack end to end.
package gatewaytest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Request is what the server saw of one call.
type Request struct {
	Route         string
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
}

type failure struct {
	status  int
	message string
}

type account struct {
	user     models.User
	password string
}

type Server struct {
	*httptest.Server

	clock    clockwork.Clock
	secret   []byte
	tokenTTL time.Duration

	mu       sync.Mutex
	accounts []*account
	requests []Request
	failures map[string][]failure
}

type Option func(*Server)

func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// New starts the server. Callers must Close it.
func New(opts ...Option) *Server {
	s := &Server{
		clock:    clockwork.NewRealClock(),
		secret:   []byte("gatewaytest-secret"),
		tokenTTL: time.Hour,
		failures: make(map[string][]failure),
	}
	for _, o := range opts {
		o(s)
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// BaseURL is what the gateway should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// AddUser seeds an account and returns the stored record.
func (s *Server) AddUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.accounts = append(s.accounts, &account{user: u, password: password})
	return u
}

func (s *Server) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.user)
	}
	return out
}

// Fail makes the next call of route answer with status and message.
// Queued failures are consumed in order.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) RequestsTo(route string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

// IssueToken signs a token for userID that expires after ttl.
func (s *Server) IssueToken(userID string, ttl time.Duration) string {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

var (
	errNoToken      = errors.New("No token provided")
	errTokenExpired = errors.New("Token expired")
	errTokenInvalid = errors.New("Invalid token")
)

func (s *Server) userIDFromToken(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", errNoToken
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", errTokenExpired
	}
	if err != nil || !token.Valid {
		return "", errTokenInvalid
	}
	return c.UserID, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", s.track("register", false, s.register))
		r.Post("/login", s.track("login", false, s.login))
		r.Get("/profile", s.track("profile", true, s.profile))
		r.Put("/updateProfile", s.track("update_profile", true, s.updateProfile))
		r.Delete("/delete", s.track("delete_account", true, s.deleteAccount))
		r.Put("/changePassword", s.track("change_password", true, s.changePassword))
		r.Get("/usersList", s.track("list_users", true, s.listUsers))
		r.Delete("/deleteUser/{id}", s.track("delete_user", true, s.deleteUser))
		r.Post("/createUser", s.track("create_user", true, s.createUser))
		r.Put("/updateUser/{id}", s.track("update_user", true, s.updateUser))
	})
	return r
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// track records the call, applies queued failures and, for protected
// routes, checks the bearer token.
func (s *Server) track(route string, protected bool, h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:         route,
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		var f *failure
		if q := s.failures[route]; len(q) > 0 {
			f = &q[0]
			s.failures[route] = q[1:]
		}
		s.mu.Unlock()

		if f != nil {
			writeJSON(w, f.status, map[string]any{"success": false, "message": f.message})
			return
		}

		var userID string
		if protected {
			id, err := s.userIDFromToken(r.Header.Get("Authorization"))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": err.Error()})
				return
			}
			userID = id
		}
		h(w, r, userID)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}
