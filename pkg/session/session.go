package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/goliatone/go-listview/components/listview"
)

var (
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrInvalidToken       = errors.New("session: invalid token")
	ErrRevoked            = errors.New("session: token revoked")
	ErrMissingToken       = errors.New("session: missing token")
	ErrMissingSecret      = errors.New("session: signing secret is required")
)

// DefaultTTL is applied when Options.TTL is zero.
const DefaultTTL = 8 * time.Hour

// User is an admin account allowed to sign in.
type User struct {
	ID       string   `mapstructure:"id" yaml:"id" validate:"required"`
	Email    string   `mapstructure:"email" yaml:"email" validate:"required,email"`
	Password string   `mapstructure:"password" yaml:"password" validate:"required"`
	Roles    []string `mapstructure:"roles" yaml:"roles"`
	Locale   string   `mapstructure:"locale" yaml:"locale"`
}

// Options configures a Manager.
type Options struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Users  []User
	Now    func() time.Time
}

// Session is the authenticated identity carried by a valid token.
type Session struct {
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles,omitempty"`
	Locale    string    `json:"locale,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Viewer converts the session into the viewer context used by list services.
func (s Session) Viewer() listview.ViewerContext {
	return listview.ViewerContext{
		UserID: s.UserID,
		Roles:  append([]string(nil), s.Roles...),
		Locale: s.Locale,
	}
}

// Token is the signed credential returned by Login.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type claims struct {
	Email  string   `json:"email"`
	Roles  []string `json:"roles,omitempty"`
	Locale string   `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues, validates and revokes HS256 session tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	users  map[string]User

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewManager validates options and indexes users by lowercase email.
func NewManager(opts Options) (*Manager, error) {
	if len(opts.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Issuer == "" {
		opts.Issuer = "go-listview"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	users := make(map[string]User, len(opts.Users))
	for _, u := range opts.Users {
		key := strings.ToLower(strings.TrimSpace(u.Email))
		if key == "" || u.ID == "" {
			return nil, fmt.Errorf("session: user %q requires id and email", u.ID)
		}
		if _, dup := users[key]; dup {
			return nil, fmt.Errorf("session: duplicate user %s", key)
		}
		users[key] = u
	}
	return &Manager{
		secret:  opts.Secret,
		issuer:  opts.Issuer,
		ttl:     opts.TTL,
		now:     opts.Now,
		users:   users,
		revoked: make(map[string]time.Time),
	}, nil
}

// Login checks the credentials and returns a signed token.
func (m *Manager) Login(_ context.Context, email, password string) (Token, Session, error) {
	user, ok := m.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Token{}, Session{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(user.Password)) != 1 {
		return Token{}, Session{}, ErrInvalidCredentials
	}

	now := m.now()
	sess := Session{
		TokenID:   uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     append([]string(nil), user.Roles...),
		Locale:    user.Locale,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:  sess.Email,
		Roles:  sess.Roles,
		Locale: sess.Locale,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.TokenID,
			Subject:   sess.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Token{}, Session{}, fmt.Errorf("session: sign token: %w", err)
	}
	return Token{Value: signed, ExpiresAt: sess.ExpiresAt}, sess, nil
}

// Validate parses the token, checks its signature and expiry, and rejects
// revoked token ids.
func (m *Manager) Validate(raw string) (Session, error) {
	if strings.TrimSpace(raw) == "" {
		return Session{}, ErrMissingToken
	}
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return Session{}, ErrInvalidToken
	}

	m.mu.Lock()
	_, revoked := m.revoked[c.ID]
	m.mu.Unlock()
	if revoked {
		return Session{}, ErrRevoked
	}

	sess := Session{
		TokenID: c.ID,
		UserID:  c.Subject,
		Email:   c.Email,
		Roles:   c.Roles,
		Locale:  c.Locale,
	}
	if c.ExpiresAt != nil {
		sess.ExpiresAt = c.ExpiresAt.Time
	}
	return sess, nil
}

// Logout revokes the token until it would have expired anyway.
func (m *Manager) Logout(raw string) (Session, error) {
	sess, err := m.Validate(raw)
	if err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[sess.TokenID] = sess.ExpiresAt
	m.pruneLocked()
	return sess, nil
}

func (m *Manager) pruneLocked() {
	now := m.now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
}

// Authenticate extracts the bearer token (or the session cookie) from the
// request and validates it.
func (m *Manager) Authenticate(r *http.Request) (Session, error) {
	raw := BearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		if cookie, err := r.Cookie(CookieName); err == nil {
			raw = cookie.Value
		}
	}
	return m.Validate(raw)
}

// CookieName is the cookie consulted when no Authorization header is sent.
const CookieName = "listview_session"

// BearerToken returns the token from an "Authorization: Bearer" header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type sessionKey struct{}

// WithSession stores the session on the context.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	sess, ok := ctx.Value(sessionKey{}).(Session)
	return sess, ok
}

// Guard rejects requests without a valid session and stores the session on
// the request context for downstream handlers.
func (m *Manager) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// ContextViewer resolves the viewer from the session Guard stored on the
// request, falling back to the Accept-Language header for the locale.
func ContextViewer(r *http.Request) listview.ViewerContext {
	sess, ok := FromContext(r.Context())
	if !ok {
		return listview.ViewerContext{}
	}
	viewer := sess.Viewer()
	if viewer.Locale == "" {
		viewer.Locale = acceptLanguage(r.Header.Get("Accept-Language"))
	}
	return viewer
}

func acceptLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.ToLower(strings.TrimSpace(first))
}
