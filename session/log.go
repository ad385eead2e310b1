package session

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"codeward/llm/schema"
	"codeward/pkg/xstring"
)

const (
	transcriptFilename = "log.jsonl"
	decisionsFilename  = "decisions.jsonl"
)

// Log is the append-only record of one session.
//
//	<dir>/<session-id>/log.jsonl        conversation transcript
//	<dir>/<session-id>/decisions.jsonl  confirmation gate outcomes
//
// Every message appends a line immediately; Sync only pushes the OS
// buffers down for the periodic autosave.
type Log struct {
	id  string
	dir string

	mu         sync.RWMutex
	transcript *os.File
	decisions  *os.File
	items      []Item
}

func (l *Log) Id() string {
	return l.id
}

func (l *Log) Dir() string {
	return l.dir
}

func (l *Log) AddUserMessage(msg *schema.MessageParam) error {
	return l.append(schema.RoleUser, msg)
}

func (l *Log) AddAssistantMessage(msg *schema.MessageParam) error {
	return l.append(schema.RoleAssistant, msg)
}

func (l *Log) AddToolMessage(msg *schema.MessageParam) error {
	return l.append(schema.RoleTool, msg)
}

func (l *Log) append(role schema.Role, msg *schema.MessageParam) error {
	item := Item{
		Id:      newItemId(),
		Role:    role,
		Created: time.Now().Unix(),
		Message: msg,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
	return writeLine(l.transcript, &item)
}

// AppendDecision records one gate outcome.
func (l *Log) AppendDecision(tool, category, outcome string, interactive bool) error {
	dec := Decision{
		Tool:        tool,
		Category:    category,
		Outcome:     outcome,
		Interactive: interactive,
		Created:     time.Now().Unix(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return writeLine(l.decisions, &dec)
}

// Items returns the in-memory transcript.
func (l *Log) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// History rebuilds the message sequence for resuming a conversation.
// Messages are deep-copied so callers cannot mutate the transcript.
func (l *Log) History() []schema.MessageParam {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := make([]schema.MessageParam, 0, len(l.items))
	for i := range l.items {
		src := l.items[i].Message
		if src == nil {
			continue
		}
		var msg schema.MessageParam
		if err := copier.CopyWithOption(&msg, src, copier.Option{DeepCopy: true}); err != nil {
			slog.Warn("[session] failed to copy message, skipping", "error", err)
			continue
		}
		history = append(history, msg)
	}
	return history
}

// Sync flushes both files to disk.
func (l *Log) Sync() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, f := range []*os.File{l.transcript, l.decisions} {
		if f == nil {
			continue
		}
		if err := f.Sync(); err != nil {
			return err
		}
	}
	return nil
}

func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.transcript != nil {
		_ = l.transcript.Close()
	}
	if l.decisions != nil {
		_ = l.decisions.Close()
	}
}

func writeLine(f *os.File, v any) error {
	if f == nil {
		return fmt.Errorf("session file not opened")
	}

	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}

func (l *Log) open() error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return err
	}

	transcript, err := os.OpenFile(filepath.Join(l.dir, transcriptFilename), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	decisions, err := os.OpenFile(filepath.Join(l.dir, decisionsFilename), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		transcript.Close()
		return err
	}

	l.transcript = transcript
	l.decisions = decisions

	return l.loadExisting()
}

// loadExisting replays the transcript file into memory so a resumed
// session starts with its history.
func (l *Log) loadExisting() error {
	path := filepath.Join(l.dir, transcriptFilename)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}
	if stat.Size() == 0 {
		return nil
	}

	decoder := json.NewDecoder(f)
	for {
		var item Item
		if err := decoder.Decode(&item); err == io.EOF {
			break
		} else if err != nil {
			// A torn tail line from a crashed run; keep what decoded.
			slog.Warn("[session] transcript truncated, keeping decoded prefix", "error", err)
			break
		}
		l.items = append(l.items, item)
	}

	return nil
}

// Dump renders the transcript as one string, for debugging.
func (l *Log) Dump() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var buf []byte
	for i := range l.items {
		buf = append(buf, xstring.ToBytes(l.items[i].Json())...)
		buf = append(buf, '\n')
	}
	return xstring.FromBytes(buf)
}
