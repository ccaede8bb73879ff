package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stkyrillos/parish-api/libs/auth"
	"github.com/stkyrillos/parish-api/libs/httpx"
)

const adminTokenTTL = 24 * time.Hour

// dummyHash keeps bcrypt cost constant for unknown usernames so login timing
// does not reveal which accounts exist.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AdminHandler authenticates the fixed admin accounts configured via env.
type AdminHandler struct {
	users   map[string]string // username -> bcrypt hash
	secret  string
	limiter *httpx.RateLimiter
	logger  *slog.Logger
}

func NewAdminHandler(users map[string]string, secret string, limiter *httpx.RateLimiter, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{users: users, secret: secret, limiter: limiter, logger: logger}
}

// ParseAdminUsers parses "alice:$2a$...,bob:$2a$..." from ADMIN_USERS.
func ParseAdminUsers(raw string) (map[string]string, error) {
	users := map[string]string{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, hash, ok := strings.Cut(entry, ":")
		if !ok || name == "" || !strings.HasPrefix(hash, "$2") {
			return nil, fmt.Errorf("malformed admin user entry %q, expected username:bcrypthash", entry)
		}
		users[name] = hash
	}
	return users, nil
}

// Login handles POST /api/v1/admin/login. Attempts are rate limited per
// username so a lockout cannot be spread across source addresses.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	if h.limiter != nil && !h.limiter.Allow("admin-login:"+req.Username) {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many login attempts, try again later")
		return
	}

	hash, known := h.users[req.Username]
	compare := dummyHash
	if known {
		compare = []byte(hash)
	}
	if err := bcrypt.CompareHashAndPassword(compare, []byte(req.Password)); err != nil || !known {
		h.logger.Warn("admin login failed", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
		return
	}

	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:  req.Username,
		Name: req.Username,
		Role: "admin",
		Iat:  now.Unix(),
		Exp:  now.Add(adminTokenTTL).Unix(),
	}, h.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "unable to issue token")
		return
	}

	h.logger.Info("admin login", "username", req.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": now.Add(adminTokenTTL).UTC().Format(time.RFC3339),
	})
}

// BearerClaims verifies the Authorization header against the admin secret.
func BearerClaims(r *http.Request, secret string) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, auth.ErrInvalidToken
	}
	return auth.ParseAndVerifyHS256(token, secret)
}
