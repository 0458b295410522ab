package stubserver

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goAuthClient/codec"
	"github.com/MrEthical07/goAuthClient/password"
	"github.com/MrEthical07/goAuthClient/role"
)

// Error kinds sent for failures that are not tied to an input.
const (
	KindBadRequest  = "BAD_REQUEST"
	KindServerError = "SERVER_ERROR"
)

const maxRequestBytes = 64 << 10

var (
	// ErrAccountExists is returned by AddAccount for a taken username.
	ErrAccountExists = errors.New("account already exists")
	// ErrEmptySecret is returned by New without a signing secret.
	ErrEmptySecret = errors.New("stub server requires a signing secret")
)

// Config configures a Server.
type Config struct {
	LoginPath  string
	SignupPath string
	// Secret signs issued tokens with HS256.
	Secret   []byte
	TokenTTL time.Duration
	// SignupRoles are granted to accounts created through the signup path.
	SignupRoles []string
	// Deriver hashes passwords. Nil uses password.DefaultConfig.
	Deriver *password.Deriver
	Logger  *slog.Logger
	// Now is the clock used for token claims.
	Now func() time.Time
}

type account struct {
	salt  []byte
	key   []byte
	roles []string
}

// Server holds accounts in memory.
type Server struct {
	cfg      Config
	deriver  *password.Deriver
	logger   *slog.Logger
	mu       sync.RWMutex
	accounts map[string]account
}

// New validates cfg and returns an empty Server.
func New(cfg Config) (*Server, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.SignupPath == "" {
		cfg.SignupPath = "/signup"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.SignupRoles == nil {
		cfg.SignupRoles = []string{role.User.String()}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	deriver := cfg.Deriver
	if deriver == nil {
		d, err := password.NewDeriver(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
		deriver = d
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Server{
		cfg:      cfg,
		deriver:  deriver,
		logger:   logger,
		accounts: make(map[string]account),
	}, nil
}

// AddAccount registers username with password and roles. Role names are sent as given,
// so unknown names can be used to exercise role filtering.
func (s *Server) AddAccount(username, pw string, roles ...string) error {
	salt, err := s.deriver.NewSalt()
	if err != nil {
		return err
	}
	key, err := s.deriver.DeriveKey(pw, salt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return ErrAccountExists
	}
	s.accounts[username] = account{salt: salt, key: key, roles: append([]string(nil), roles...)}
	return nil
}

// Handler returns the chi router serving the login and signup paths.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post(s.cfg.LoginPath, s.login)
	r.Post(s.cfg.SignupPath, s.signup)
	return r
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}

	s.mu.RLock()
	acct, found := s.accounts[creds.Username]
	s.mu.RUnlock()
	if !found {
		writeError(w, http.StatusBadRequest, codec.KindUsernameError, "Unknown username")
		return
	}

	key, err := s.deriver.DeriveKey(creds.Password, acct.salt)
	if err != nil || subtle.ConstantTimeCompare(key, acct.key) != 1 {
		writeError(w, http.StatusBadRequest, codec.KindPasswordError, "Wrong password")
		return
	}

	s.issue(w, creds.Username, acct.roles)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	if creds.Password == "" {
		writeError(w, http.StatusBadRequest, codec.KindPasswordError, "required")
		return
	}

	if err := s.AddAccount(creds.Username, creds.Password, s.cfg.SignupRoles...); err != nil {
		if errors.Is(err, ErrAccountExists) {
			writeError(w, http.StatusBadRequest, codec.KindUsernameError, "taken")
			return
		}
		s.logger.Error("stub signup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, KindServerError, "signup failed")
		return
	}

	s.issue(w, creds.Username, s.cfg.SignupRoles)
}

func (s *Server) readCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var creds credentials
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, KindBadRequest, "malformed request body")
		return creds, false
	}
	if strings.TrimSpace(creds.Username) == "" {
		writeError(w, http.StatusBadRequest, codec.KindUsernameError, "required")
		return creds, false
	}
	return creds, true
}

func (s *Server) issue(w http.ResponseWriter, username string, roles []string) {
	now := s.cfg.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}).SignedString(s.cfg.Secret)
	if err != nil {
		s.logger.Error("stub token signing failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, KindServerError, "token signing failed")
		return
	}

	s.logger.Info("stub token issued", slog.String("account_id", username))
	w.Header().Set("Content-Type", codec.ContentType)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(codec.EncodeSuccess(token, roles))
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", codec.ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(codec.EncodeError(kind, message))
}
