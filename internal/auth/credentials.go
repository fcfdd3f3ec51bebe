// Package auth stores the API key used by the OpenAI translation provider.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// EnvKey overrides the stored key when set.
const EnvKey = "OPENAI_API_KEY"

type KeyInfo struct {
	Key       string    `json:"key"`
	Source    string    `json:"source"`     // "env" | "file"
	CreatedAt time.Time `json:"created_at"` // when we saved to file
}

// Masked shows only the tail of the key.
func (k KeyInfo) Masked() string {
	if len(k.Key) <= 4 {
		return strings.Repeat("*", len(k.Key))
	}
	return strings.Repeat("*", 8) + k.Key[len(k.Key)-4:]
}

// Credentials reads and writes the key file inside dir (normally ~/.shoplist).
type Credentials struct {
	dir string
}

func New(dir string) *Credentials { return &Credentials{dir: dir} }

func (c *Credentials) path() string { return filepath.Join(c.dir, credFileName) }

// Get returns the key from the environment, then the file. It returns nil
// when neither has one.
func (c *Credentials) Get() (*KeyInfo, error) {
	if env := strings.TrimSpace(os.Getenv(EnvKey)); env != "" {
		return &KeyInfo{Key: stripBearer(env), Source: "env"}, nil
	}

	b, err := os.ReadFile(c.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ki KeyInfo
	if err := json.Unmarshal(b, &ki); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ki.Key = stripBearer(ki.Key)
	ki.Source = "file"
	return &ki, nil
}

// Set writes the key with owner-only permissions.
func (c *Credentials) Set(key string) error {
	key = stripBearer(strings.TrimSpace(key))
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ki := KeyInfo{
		Key:       key,
		Source:    "file",
		CreatedAt: time.Now(),
	}
	b, err := json.MarshalIndent(ki, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(c.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the key file. A missing file is not an error.
func (c *Credentials) Delete() error {
	if err := os.Remove(c.path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
