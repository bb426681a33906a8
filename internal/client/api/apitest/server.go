// Package apitest provides an in-process fake of the storefront API for
// tests: it serves the auth and cart routes over httptest, mints
// structurally valid HS256 tokens, and can be scripted to answer 401 a
// fixed number of times to exercise the refresh-and-retry paths.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avdeenkov/shopsync/internal/client/models"
)

const signingKey = "apitest-secret"

type account struct {
	password string
	user     models.User
}

// Server is the scriptable fake storefront backend.
type Server struct {
	mu sync.Mutex

	httpServer *httptest.Server

	accounts map[string]*account    // email -> account
	tokens   map[string]string      // live token -> email
	carts    map[string]models.Cart // user id -> cart

	// Scripted failures. Each 401 served decrements the counter.
	FailGets    int // GET /cart answers 401 this many times
	FailPuts    int // PUT /cart answers 401 this many times
	FailRefresh bool

	// Counters for assertions.
	GetCalls     int
	PutCalls     int
	RefreshCalls int
	LogoutCalls  int
}

// New starts the fake server. Close it via Close.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		carts:    make(map[string]models.Cart),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	mux.HandleFunc("GET /cart", s.handleGetCart)
	mux.HandleFunc("PUT /cart", s.handlePutCart)

	s.httpServer = httptest.NewServer(mux)
	return s
}

// URL returns the base URL clients should point at.
func (s *Server) URL() string { return s.httpServer.URL }

func (s *Server) Close() { s.httpServer.Close() }

// AddUser registers an account directly, returning the profile.
func (s *Server) AddUser(email, password string, role models.Role) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{ID: uuid.NewString(), Email: email, Role: role}
	s.accounts[email] = &account{password: password, user: u}
	return u
}

// SetCart seeds the server-side cart for a user id.
func (s *Server) SetCart(userID string, cart models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = cart
}

// Cart returns the current server-side cart for a user id.
func (s *Server) Cart(userID string) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(models.Cart(nil), s.carts[userID]...)
}

// ExpireTokens invalidates every live token so the next bearer call gets 401.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// MintToken issues a structurally valid token bound to the given user and
// registers it as live.
func (s *Server) MintToken(u models.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mintLocked(u)
}

func (s *Server) mintLocked(u models.User) string {
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": string(u.Role),
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		panic("apitest: token signing failed: " + err.Error())
	}
	s.tokens[token] = u.Email
	return token
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[req.Email]
	if !ok || acc.password != req.Password {
		writeError(w, http.StatusBadRequest, "invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": s.mintLocked(acc.user), "user": acc.user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Name     string      `json:"name"`
		Role     models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	u := models.User{ID: uuid.NewString(), Email: req.Email, Name: req.Name, Role: req.Role}
	s.accounts[req.Email] = &account{password: req.Password, user: u}
	writeJSON(w, http.StatusCreated, map[string]any{"token": s.mintLocked(u), "user": u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LogoutCalls++
	if token, ok := bearer(r); ok {
		delete(s.tokens, token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.RefreshCalls++
	if s.FailRefresh {
		writeError(w, http.StatusUnauthorized, "refresh rejected")
		return
	}

	token, ok := bearer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	// A refresh is allowed even for an expired (no longer live) token as
	// long as the account still exists; this is what rescues 401 retries.
	email := s.tokens[token]
	if email == "" {
		email = s.emailFromClaims(token)
	}
	acc, ok := s.accounts[email]
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown account")
		return
	}
	delete(s.tokens, token)
	writeJSON(w, http.StatusOK, map[string]any{"token": s.mintLocked(acc.user), "user": acc.user})
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.GetCalls++
	if s.FailGets > 0 {
		s.FailGets--
		writeError(w, http.StatusUnauthorized, "token expired")
		return
	}

	u, ok := s.authedLocked(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": s.carts[u.ID]})
}

func (s *Server) handlePutCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.PutCalls++
	if s.FailPuts > 0 {
		s.FailPuts--
		writeError(w, http.StatusUnauthorized, "token expired")
		return
	}

	u, ok := s.authedLocked(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var payload struct {
		Items []models.CartLine `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed cart")
		return
	}
	s.carts[u.ID] = payload.Items
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authedLocked(r *http.Request) (models.User, bool) {
	token, ok := bearer(r)
	if !ok {
		return models.User{}, false
	}
	email, live := s.tokens[token]
	if !live {
		return models.User{}, false
	}
	acc, ok := s.accounts[email]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

// emailFromClaims recovers the account for an expired token by re-parsing
// its claims. Signature is verified; only liveness is waived.
func (s *Server) emailFromClaims(token string) string {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(signingKey), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return ""
	}
	sub, _ := claims["sub"].(string)
	for email, acc := range s.accounts {
		if acc.user.ID == sub {
			return email
		}
	}
	return ""
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
