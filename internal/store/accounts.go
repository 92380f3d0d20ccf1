package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	SessionTTL = 30 * 24 * time.Hour

	minPasswordLen  = 6
	uniqueViolation = "23505"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must be 3-20 letters, numbers, or underscores")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidRole        = errors.New("role must be user or admin")
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
}

// ValidateCredentials checks username and password shape before any
// database work.
func ValidateCredentials(username, password string) error {
	if !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

func (s *Store) email(username string) string {
	return strings.ToLower(username) + "@" + s.domain
}

// SignUp creates a profile and opens a session for it. The first profile
// ever created is an admin.
func (s *Store) SignUp(ctx context.Context, username, password string) (*Session, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var p Profile
	err = s.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4,
			CASE WHEN EXISTS (SELECT 1 FROM profiles) THEN 'user' ELSE 'admin' END)
		RETURNING id, username, role, created_at`,
		uuid.New(), username, s.email(username), string(hash),
	).Scan(&p.ID, &p.Username, &p.Role, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	return s.openSession(ctx, p)
}

// SignIn verifies the password and opens a new session.
func (s *Store) SignIn(ctx context.Context, username, password string) (*Session, error) {
	var (
		p    Profile
		hash string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, role, created_at, password_hash
		FROM profiles WHERE email = $1`,
		s.email(username),
	).Scan(&p.ID, &p.Username, &p.Role, &p.CreatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, p)
}

func (s *Store) openSession(ctx context.Context, p Profile) (*Session, error) {
	sess := &Session{
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(SessionTTL).UTC(),
		Profile:   p,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (token, profile_id, expires_at) VALUES ($1, $2, $3)`,
		sess.Token, p.ID, sess.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// SignOut deletes the session. Unknown tokens are not an error.
func (s *Store) SignOut(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves a live session token to its profile.
func (s *Store) CurrentUser(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx, `
		SELECT p.id, p.username, p.role, p.created_at
		FROM sessions s JOIN profiles p ON p.id = s.profile_id
		WHERE s.token = $1 AND s.expires_at > now()`,
		token,
	).Scan(&p.ID, &p.Username, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &p, nil
}

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, role, created_at FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Username, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

// ListProfiles returns every profile, oldest first.
func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, role, created_at FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*Profile, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, ErrInvalidRole
	}
	var p Profile
	err := s.pool.QueryRow(ctx, `
		UPDATE profiles SET role = $1 WHERE id = $2
		RETURNING id, username, role, created_at`,
		role, id,
	).Scan(&p.ID, &p.Username, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return &p, nil
}
