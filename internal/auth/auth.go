package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type contextKey string

const UserIDKey contextKey = "userID"

// CookieName is the session cookie set on sign-in.
const CookieName = "trek_session"

const sessionTTL = 7 * 24 * time.Hour

// Manager signs and validates session cookies. The signing secret is injected
// at construction; there is no ambient global.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// SignedCookie creates a signed cookie value containing the user ID and an
// expiration. Format: userID.expiration.signature, base64-encoded.
func (m *Manager) SignedCookie(userID int) string {
	expiration := time.Now().Add(sessionTTL).Unix()
	data := fmt.Sprintf("%d.%d", userID, expiration)
	return base64.URLEncoding.EncodeToString([]byte(data + "." + m.sign(data)))
}

// ValidateCookie checks the signature and expiration and returns the user ID.
func (m *Manager) ValidateCookie(value string) (int, error) {
	decoded, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid cookie encoding")
	}

	parts := strings.Split(string(decoded), ".")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid cookie format")
	}
	userIDStr, expirationStr, signature := parts[0], parts[1], parts[2]

	data := userIDStr + "." + expirationStr
	if !hmac.Equal([]byte(m.sign(data)), []byte(signature)) {
		return 0, fmt.Errorf("invalid signature")
	}

	expiration, err := strconv.ParseInt(expirationStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiration")
	}
	if time.Now().Unix() > expiration {
		return 0, fmt.Errorf("cookie expired")
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID")
	}
	return userID, nil
}

func (m *Manager) sign(data string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// SetCookie sets the signed session cookie on the response.
func (m *Manager) SetCookie(w http.ResponseWriter, userID int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.SignedCookie(userID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL / time.Second),
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// UserIDFromContext retrieves the signed-in user ID from the request context.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}
