package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

// BasePath is where the API routes are mounted, mirroring the real service.
const BasePath = "/api/v1"

type user struct {
	identity     models.Identity
	passwordHash []byte
}

type failure struct {
	status int
	detail string
}

// Gate blocks a route until Release is called. Entered is closed when the
// first request reaches the gate.
type Gate struct {
	Entered  chan struct{}
	release  chan struct{}
	enterOne sync.Once
	doneOne  sync.Once
}

func (g *Gate) Release() {
	g.doneOne.Do(func() { close(g.release) })
}

type Server struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int

	mu       sync.Mutex
	nextID   int64
	users    map[int64]*user
	revoked  map[string]struct{}
	verify   map[string]int64
	reset    map[string]int64
	pictures map[string][]byte
	calls    map[string]int
	authSeen map[string][]string
	failNext map[string]failure
	gates    map[string]*Gate
}

// Option customizes a Server.
type Option func(*Server)

func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// WithBcryptCost lowers the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.bcryptCost = cost }
}

func New(opts ...Option) *Server {
	s := &Server{
		secret:     []byte("apitest-secret"),
		tokenTTL:   24 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
		users:      make(map[int64]*user),
		revoked:    make(map[string]struct{}),
		verify:     make(map[string]int64),
		reset:      make(map[string]int64),
		pictures:   make(map[string][]byte),
		calls:      make(map[string]int),
		authSeen:   make(map[string][]string),
		failNext:   make(map[string]failure),
		gates:      make(map[string]*Gate),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with every route mounted under BasePath.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route(BasePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Post("/verify-email", s.verifyEmail)
			r.Post("/password-reset/request", s.requestPasswordReset)
			r.Post("/password-reset", s.resetPassword)
		})
		r.Route("/users/me", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/", s.getMe)
			r.Put("/", s.updateMe)
			r.Post("/profile-picture", s.uploadPicture)
		})
	})
	return r
}

// CreateUser seeds an account and returns its identity.
func (s *Server) CreateUser(email, username, password string, verified bool) (*models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(email) != nil {
		return nil, errEmailTaken
	}
	if s.findLocked(username) != nil {
		return nil, errUsernameTaken
	}

	s.nextID++
	u := &user{
		identity:     models.Identity{ID: s.nextID, Email: email, Username: username, EmailVerified: verified},
		passwordHash: hash,
	}
	s.users[u.identity.ID] = u
	return u.identity.Clone(), nil
}

// IssueToken signs a fresh access token for userID, as a successful login would.
func (s *Server) IssueToken(userID int64) (string, error) {
	return generateToken(userID, s.secret, s.tokenTTL)
}

// Revoke makes the server reject token from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

// Identity returns the server-side view of the user.
func (s *Server) Identity(userID int64) *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u.identity.Clone()
	}
	return nil
}

// VerificationToken returns the pending e-mail verification token for email.
func (s *Server) VerificationToken(email string) string {
	return s.pendingToken(s.verify, email)
}

// ResetToken returns the pending password reset token for email.
func (s *Server) ResetToken(email string) string {
	return s.pendingToken(s.reset, email)
}

// Picture returns the bytes stored under a profile picture reference.
func (s *Server) Picture(ref string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pictures[ref]
}

// Calls reports how many requests reached "METHOD /path" (path relative to
// BasePath, e.g. "GET /users/me").
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Authorizations returns the Authorization header of every request to route,
// in arrival order ("" for requests sent without one).
func (s *Server) Authorizations(route string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authSeen[route]...)
}

// FailNext makes the next request to route fail with status and detail.
func (s *Server) FailNext(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[route] = failure{status: status, detail: detail}
}

// Hold installs a gate on route: matching requests wait until it is released.
func (s *Server) Hold(route string) *Gate {
	g := &Gate{Entered: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[route] = g
	s.mu.Unlock()
	return g
}

func (s *Server) pendingToken(m map[string]int64, email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, id := range m {
		if u, ok := s.users[id]; ok && strings.EqualFold(u.identity.Email, email) {
			return tok
		}
	}
	return ""
}

// findLocked looks a user up by e-mail (when login contains "@") or username.
func (s *Server) findLocked(login string) *user {
	for _, u := range s.users {
		if strings.Contains(login, "@") {
			if strings.EqualFold(u.identity.Email, login) {
				return u
			}
		} else if u.identity.Username == login {
			return u
		}
	}
	return nil
}

// record counts calls, captures Authorization headers, applies injected
// failures and gates. It runs before authentication so rejected calls count.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, BasePath), "/")

		s.mu.Lock()
		s.calls[route]++
		s.authSeen[route] = append(s.authSeen[route], r.Header.Get("Authorization"))
		f, fail := s.failNext[route]
		delete(s.failNext, route)
		g := s.gates[route]
		s.mu.Unlock()

		if g != nil {
			g.enterOne.Do(func() { close(g.Entered) })
			select {
			case <-g.release:
			case <-r.Context().Done():
				return
			}
		}

		if fail {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var (
	errEmailTaken    = errors.New("Email already registered")
	errUsernameTaken = errors.New("Username already taken")
)

func pictureRef(id string, filename string) string {
	return fmt.Sprintf("/static/profile_pictures/%s_%s", id, filename)
}
