package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewSessionId returns a sortable session id, newest last.
func NewSessionId() string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return time.Now().Format("20060102-150405") + "-" + short
}

// Manager hands out session logs keyed by session id.
type Manager struct {
	dir string

	mu   sync.RWMutex
	logs map[string]*Log
}

func NewManager(dir string) *Manager {
	return &Manager{
		dir:  dir,
		logs: make(map[string]*Log),
	}
}

func (m *Manager) Get(id string) *Log {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.logs[id]
}

func (m *Manager) GetOrCreate(id string) (*Log, error) {
	m.mu.RLock()
	if log, ok := m.logs[id]; ok {
		m.mu.RUnlock()
		return log, nil
	}
	m.mu.RUnlock()

	// Open files outside the write lock
	log := &Log{
		id:  id,
		dir: filepath.Join(m.dir, id),
	}
	if err := log.open(); err != nil {
		return nil, fmt.Errorf("failed to open session %s: %w", id, err)
	}

	// Double-check with write lock
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.logs[id]; ok {
		// Another goroutine won the race, drop our handles
		log.Close()
		return existing, nil
	}

	m.logs[id] = log
	return log, nil
}

// Latest returns the id of the most recently touched session on disk,
// or false when none exist yet.
func (m *Manager) Latest() (string, bool) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return "", false
	}

	type candidate struct {
		id  string
		mod time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(m.dir, entry.Name(), transcriptFilename))
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{id: entry.Name(), mod: info.ModTime()})
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].mod.After(candidates[j].mod) })
	return candidates[0].id, true
}

// SyncAll flushes every open session. Wired to the autosave cron.
func (m *Manager) SyncAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, log := range m.logs {
		_ = log.Sync()
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, log := range m.logs {
		log.Close()
	}
	m.logs = make(map[string]*Log)
}
