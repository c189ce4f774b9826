package sim

import (
	"crypto/rand"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/toky-team/toky-admin/internal/apierr"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	accessTTL     = 15 * time.Minute
	refreshTTL    = 7 * 24 * time.Hour
)

func newSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

func (s *Server) signToken(userID string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (string, error) {
	tok, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	return tok.Claims.(*jwt.RegisteredClaims).Subject, nil
}

func setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(ttl.Seconds()),
	})
}

// handleLogin issues the session cookie pair for a named user, creating an
// admin session. The real platform delegates this to an OAuth provider;
// the simulator only needs the cookie contract.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" {
		s.writeError(w, r, http.StatusBadRequest, "username required")
		return
	}

	s.state.mu.Lock()
	var userID string
	for _, u := range s.state.users {
		if u.Username == body.Username {
			userID = u.ID
			u.IsAdmin = true
			break
		}
	}
	s.state.mu.Unlock()
	if userID == "" {
		s.writeError(w, r, http.StatusNotFound, "unknown user")
		return
	}

	access, err := s.signToken(userID, accessTTL)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "token signing failed")
		return
	}
	refresh, err := s.signToken(userID, refreshTTL)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "token signing failed")
		return
	}
	setCookie(w, accessCookie, access, accessTTL)
	setCookie(w, refreshCookie, refresh, refreshTTL)
	w.WriteHeader(http.StatusOK)
}

// handleRefresh rotates the access cookie from a valid refresh cookie.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(refreshCookie)
	if err != nil {
		s.writeError(w, r, http.StatusUnauthorized, "missing refresh token")
		return
	}
	userID, err := s.parseToken(c.Value)
	if err != nil {
		s.writeError(w, r, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	access, err := s.signToken(userID, accessTTL)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "token signing failed")
		return
	}
	setCookie(w, accessCookie, access, accessTTL)
	w.WriteHeader(http.StatusOK)
}

// requireSession guards authenticated routes; failures carry the
// platform's structured error shape.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.sessionUser(r)
		if !ok {
			s.writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		r.Header.Set("X-User-ID", userID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionUser(r *http.Request) (string, bool) {
	c, err := r.Cookie(accessCookie)
	if err != nil {
		return "", false
	}
	userID, err := s.parseToken(c.Value)
	if err != nil {
		return "", false
	}
	return userID, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apierr.APIError{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		ErrorName: http.StatusText(status),
		Message:   msg,
		Path:      r.URL.Path,
	})
}
