// internal/httpserver/auth.go
//
// Accounts and player identity.
// Endpoints under /auth:
//   - POST /auth/signup → create an account, set the auth cookie
//   - POST /auth/login  → verify credentials, set the auth cookie
//   - POST /auth/logout → clear the auth cookie
//   - GET  /auth/me     → current account (requires auth)
//
// Tokens are HS256 JWTs carried either as "Authorization: Bearer <token>" or
// in the auth cookie. Guests get a random anonymous id in their own cookie;
// on signup/login their progress moves into the account. Guest and account
// progress live in separate namespaces, so a guest cookie can never name an
// account's data.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordibble/internal/store"
)

const anonCookie = "wordibble_anon"

type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userRes struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.requireAuth()).Get("/me", s.handleMe)
	})
}

// ------------------------------ middleware ---------------------------------

// withOptionalAuth attaches the account to the context when a valid token is
// present. Invalid or missing tokens fall through as guests.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := s.parseToken(bearerOrCookie(r, s.cfg.CookieName)); ok {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without a valid token for an existing account.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerOrCookie(r, s.cfg.CookieName)
			if tokenStr == "" {
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "unauthorized"})
				return
			}
			u, ok := s.parseToken(tokenStr)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_token"})
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseToken verifies tokenStr and checks the account still exists.
func (s *Server) parseToken(tokenStr string) (*authUser, bool) {
	if tokenStr == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, false
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, false
	}
	// Ensure user still exists
	if _, err := s.repo.UserByID(id); err != nil {
		return nil, false
	}
	return &authUser{ID: id, Username: username}, true
}

func currentUser(r *http.Request) (*authUser, bool) {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u, u != nil
}

// playerID is the namespace a request plays under: the account when signed
// in, else the anonymous cookie id (issued on first use).
func (s *Server) playerID(w http.ResponseWriter, r *http.Request) string {
	if u, ok := currentUser(r); ok {
		return store.UserPlayer(u.ID)
	}
	return store.GuestPlayer(s.ensureAnonID(w, r))
}

func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, s.cookie(anonCookie, id, time.Now().AddDate(1, 0, 0)))
	// Handlers later in this request must see the same id.
	r.AddCookie(&http.Cookie{Name: anonCookie, Value: id})
	return id
}

// ------------------------------- handlers ----------------------------------

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	username := normalizeUsername(req.Username)
	if err := validateSignup(username, req.Password); err != nil {
		badRequest(w, err.Error())
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("hash password")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal"})
		return
	}
	u, err := s.repo.CreateUser(username, hash)
	if errors.Is(err, store.ErrUsernameTaken) {
		writeJSON(w, http.StatusConflict, errorRes{Error: "username_taken", Message: "That username is taken."})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create user")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal"})
		return
	}
	log.Info().Str("user", u.ID).Msg("account created")
	s.signIn(w, r, u, http.StatusCreated)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	u, err := s.repo.UserByUsername(normalizeUsername(req.Username))
	if err != nil || !checkPassword(u.PasswordHash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_credentials", Message: "Wrong username or password."})
		return
	}
	s.signIn(w, r, u, http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := currentUser(r); ok {
		s.sessions.drop(store.UserPlayer(u.ID))
	}
	http.SetCookie(w, s.expiredCookie(s.cfg.CookieName))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	cu, _ := currentUser(r)
	u, err := s.repo.UserByID(cu.ID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_token"})
		return
	}
	writeJSON(w, http.StatusOK, userRes{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt})
}

// signIn issues a token for u and moves any guest progress into the account.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u store.User, status int) {
	token, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal"})
		return
	}

	account := store.UserPlayer(u.ID)
	if c, err := r.Cookie(anonCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			guest := store.GuestPlayer(c.Value)
			s.sessions.drop(guest)
			moved, err := s.repo.MergePlayer(guest, account)
			if err != nil {
				log.Warn().Err(err).Str("user", u.ID).Msg("guest progress merge incomplete")
			} else if moved > 0 {
				log.Info().Str("user", u.ID).Int("puzzles", moved).Msg("guest progress merged")
			}
		}
		http.SetCookie(w, s.expiredCookie(anonCookie))
	}
	s.sessions.drop(account)

	http.SetCookie(w, s.cookie(s.cfg.CookieName, token, exp))
	writeJSON(w, status, map[string]any{
		"user":  userRes{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt},
		"token": token,
	})
}

// -------------------------------- helpers ----------------------------------

func normalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.JWTTTL())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

func (s *Server) cookie(name, value string, exp time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		Expires:  exp,
	}
}

func (s *Server) expiredCookie(name string) *http.Cookie {
	c := s.cookie(name, "", time.Time{})
	c.MaxAge = -1
	return c
}

func bearerOrCookie(r *http.Request, cookieName string) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
