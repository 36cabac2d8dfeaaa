// Package auth implements the local login gate for document submission:
// a YAML user registry with bcrypt password hashes, SQLite-backed
// sessions, and HS256 JWT session cookies. There is no hosted identity
// provider; users are provisioned by editing the users file.
package auth

import (
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
)

// User is one entry of the users file.
type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
	DisplayName  string `yaml:"display_name,omitempty"`
}

// Registry is the set of users allowed to log in.
type Registry struct {
	users map[string]User
}

type usersFile struct {
	Users []User `yaml:"users"`
}

// LoadRegistry reads the users file. Duplicate usernames and entries
// without a password hash are configuration errors; an empty user list
// is allowed (nobody can log in until the file is populated).
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's config file.
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "read users file").
			WithContext("file", path).
			Build()
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse users file").
			WithContext("file", path).
			Build()
	}

	users := make(map[string]User, len(f.Users))
	for _, u := range f.Users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			return nil, errors.ConfigError("users file entry missing username").
				WithContext("file", path).
				Build()
		}
		if u.PasswordHash == "" {
			return nil, errors.ConfigError("users file entry missing password_hash").
				WithContext("file", path).
				WithContext("username", name).
				Build()
		}
		if _, dup := users[name]; dup {
			return nil, errors.ConfigError("duplicate username in users file").
				WithContext("file", path).
				WithContext("username", name).
				Build()
		}
		u.Username = name
		users[name] = u
	}

	return &Registry{users: users}, nil
}

// Verify checks username/password against the registry and returns the
// matched user. Unknown users and wrong passwords produce the same
// auth-class error so login responses don't leak which usernames exist.
func (r *Registry) Verify(username, password string) (User, error) {
	invalid := func() error {
		return errors.AuthError("invalid username or password").Build()
	}
	u, ok := r.users[username]
	if !ok {
		// Burn a comparison anyway to keep timing uniform for unknown users.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0q0lYQW1VZf3bdO3cV6iRHoXh2a"), []byte(password))
		return User{}, invalid()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, invalid()
	}
	return u, nil
}

// Len reports how many users are registered.
func (r *Registry) Len() int { return len(r.users) }

// HashPassword produces a bcrypt hash suitable for the users file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "hash password").Build()
	}
	return string(hash), nil
}
