package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// EnsurePrivileged creates an empty privileged users file when missing,
// along with its parent directory. Called once at startup.
func (s *Store) EnsurePrivileged() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.privilegedPath); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", s.privilegedPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.privilegedPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(s.privilegedPath, nil, 0o644); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.privilegedPath, err)
	}
	return nil
}

// Privileged returns the usernames listed in privileged_users.txt. A
// missing file reads as an empty list.
func (s *Store) Privileged() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readPrivileged()
}

// IsPrivileged reports whether username is listed.
func (s *Store) IsPrivileged(username string) (bool, error) {
	users, err := s.Privileged()
	if err != nil {
		return false, err
	}
	return slices.Contains(users, username), nil
}

// Grant adds username to the list. It returns false when the user was
// already listed, matching the idempotent "already has privileges" reply.
func (s *Store) Grant(username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readPrivileged()
	if err != nil {
		return false, err
	}
	if slices.Contains(users, username) {
		return false, nil
	}

	users = append(users, username)
	if err := s.writePrivileged(users); err != nil {
		return false, err
	}
	return true, nil
}

// Revoke removes username from the list. It returns false when the user
// was not listed.
func (s *Store) Revoke(username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readPrivileged()
	if err != nil {
		return false, err
	}
	idx := slices.Index(users, username)
	if idx < 0 {
		return false, nil
	}

	users = slices.Delete(users, idx, idx+1)
	if err := s.writePrivileged(users); err != nil {
		return false, err
	}
	return true, nil
}

// readPrivileged parses the file into non-empty trimmed lines. Callers
// must hold s.mu.
func (s *Store) readPrivileged() ([]string, error) {
	data, err := os.ReadFile(s.privilegedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.privilegedPath, err)
	}

	var users []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			users = append(users, line)
		}
	}
	return users, nil
}

// writePrivileged persists the list atomically. Callers must hold s.mu.
func (s *Store) writePrivileged(users []string) error {
	var content string
	if len(users) > 0 {
		content = strings.Join(users, "\n") + "\n"
	}
	return atomicWrite(s.privilegedPath, []byte(content))
}
