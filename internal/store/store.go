package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LastUpdatedLayout is the timestamp format recorded in players.json.
const LastUpdatedLayout = "2006-01-02 15:04:05"

// Player is one entry of the player cache.
type Player struct {
	Username string
	// Playtime is the accumulated play time in seconds.
	Playtime int64
	// Extra carries fields the bot does not model, so a refresh never
	// drops data another tool wrote into players.json.
	Extra map[string]json.RawMessage
}

// MarshalJSON renders the known fields next to the preserved extras.
func (p Player) MarshalJSON() ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(p.Extra)+2)
	for k, v := range p.Extra {
		doc[k] = v
	}

	username, err := json.Marshal(p.Username)
	if err != nil {
		return nil, err
	}
	playtime, err := json.Marshal(p.Playtime)
	if err != nil {
		return nil, err
	}
	doc["username"] = username
	doc["playtime"] = playtime

	return json.Marshal(doc)
}

// UnmarshalJSON splits the document into the known fields and the
// preserved extras. Extra stays nil when there are none.
func (p *Player) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	if raw, ok := doc["username"]; ok {
		if err := json.Unmarshal(raw, &p.Username); err != nil {
			return err
		}
		delete(doc, "username")
	}
	if raw, ok := doc["playtime"]; ok {
		if err := json.Unmarshal(raw, &p.Playtime); err != nil {
			return err
		}
		delete(doc, "playtime")
	}
	if len(doc) > 0 {
		p.Extra = doc
	}
	return nil
}

// PlayerData is the on-disk shape of players.json, keyed by player UUID.
type PlayerData struct {
	LastUpdated string            `json:"last_updated"`
	Players     map[string]Player `json:"players"`
}

// Store owns the files under the data directory. All methods are safe
// for concurrent use; command handlers and the scheduler share one Store.
type Store struct {
	mu             sync.Mutex
	playersPath    string
	privilegedPath string
}

// New returns a Store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{
		playersPath:    filepath.Join(dataDir, "players.json"),
		privilegedPath: filepath.Join(dataDir, "privileged_users.txt"),
	}
}

// PlayersPath returns the location of the player cache file.
func (s *Store) PlayersPath() string { return s.playersPath }

// PrivilegedPath returns the location of the privileged users file.
func (s *Store) PrivilegedPath() string { return s.privilegedPath }

// LoadPlayers reads the player cache. A missing file yields an empty
// cache rather than an error so the first run starts clean.
func (s *Store) LoadPlayers() (*PlayerData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.playersPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &PlayerData{Players: map[string]Player{}}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.playersPath, err)
	}

	var pd PlayerData
	if err := json.Unmarshal(data, &pd); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.playersPath, err)
	}
	if pd.Players == nil {
		pd.Players = map[string]Player{}
	}
	return &pd, nil
}

// SavePlayers stamps pd with now and writes it atomically.
func (s *Store) SavePlayers(pd *PlayerData, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pd.LastUpdated = now.Format(LastUpdatedLayout)

	data, err := json.MarshalIndent(pd, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode player data: %w", err)
	}

	return atomicWrite(s.playersPath, append(data, '\n'))
}

// atomicWrite writes data via a temp file and rename so readers never
// observe a partially written file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
