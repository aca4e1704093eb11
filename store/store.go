// Package store persists prompts and launch history in an embedded badger
// database.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	promptPrefix = "prompt/"
	launchPrefix = "launch/"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Prompt is one saved draft.
type Prompt struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Launch records one handoff of a prompt to the assistant.
type Launch struct {
	ID          string    `json:"id"`
	PromptID    string    `json:"prompt_id"`
	Command     string    `json:"command"`
	SessionName string    `json:"session_name"`
	LaunchedAt  time.Time `json:"launched_at"`
}

// Store wraps one open badger database.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the database under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SavePrompt stores text as a new prompt record.
func (s *Store) SavePrompt(text string) (Prompt, error) {
	now := time.Now().UTC()
	p := Prompt{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.put(promptPrefix+p.ID, p); err != nil {
		return Prompt{}, fmt.Errorf("save prompt: %w", err)
	}
	return p, nil
}

// UpdatePrompt replaces the text of an existing prompt.
func (s *Store) UpdatePrompt(id, text string) (Prompt, error) {
	p, err := s.GetPrompt(id)
	if err != nil {
		return Prompt{}, err
	}
	p.Text = text
	p.UpdatedAt = time.Now().UTC()
	if err := s.put(promptPrefix+p.ID, p); err != nil {
		return Prompt{}, fmt.Errorf("update prompt: %w", err)
	}
	return p, nil
}

// GetPrompt loads one prompt by id.
func (s *Store) GetPrompt(id string) (Prompt, error) {
	var p Prompt
	err := s.get(promptPrefix+id, &p)
	if err != nil {
		return Prompt{}, err
	}
	return p, nil
}

// RecentPrompts returns up to n prompts, most recently updated first.
func (s *Store) RecentPrompts(n int) ([]Prompt, error) {
	var prompts []Prompt
	err := s.scan(promptPrefix, func(val []byte) error {
		var p Prompt
		if err := json.Unmarshal(val, &p); err != nil {
			return err
		}
		prompts = append(prompts, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	sort.Slice(prompts, func(i, j int) bool {
		return prompts[i].UpdatedAt.After(prompts[j].UpdatedAt)
	})
	if n > 0 && len(prompts) > n {
		prompts = prompts[:n]
	}
	return prompts, nil
}

// RecordLaunch stores one launch event for a prompt.
func (s *Store) RecordLaunch(promptID, command, sessionName string) (Launch, error) {
	l := Launch{
		ID:          uuid.NewString(),
		PromptID:    promptID,
		Command:     command,
		SessionName: sessionName,
		LaunchedAt:  time.Now().UTC(),
	}
	if err := s.put(launchPrefix+l.ID, l); err != nil {
		return Launch{}, fmt.Errorf("record launch: %w", err)
	}
	return l, nil
}

// Launches returns launch records, newest first, optionally filtered by
// prompt id (empty matches all).
func (s *Store) Launches(promptID string) ([]Launch, error) {
	var launches []Launch
	err := s.scan(launchPrefix, func(val []byte) error {
		var l Launch
		if err := json.Unmarshal(val, &l); err != nil {
			return err
		}
		if promptID == "" || l.PromptID == promptID {
			launches = append(launches, l)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list launches: %w", err)
	}
	sort.Slice(launches, func(i, j int) bool {
		return launches[i].LaunchedAt.After(launches[j].LaunchedAt)
	})
	return launches, nil
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *Store) get(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return err
}

func (s *Store) scan(prefix string, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
