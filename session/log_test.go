package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeward/llm/schema"
)

func TestLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	id := NewSessionId()
	log, err := mgr.GetOrCreate(id)
	if err != nil {
		t.Fatal(err)
	}

	user := schema.NewUserMessageParam("list the files here")
	if err := log.AddUserMessage(&user); err != nil {
		t.Fatal(err)
	}
	assistant := schema.NewAssistantMessageParam("", "", []*schema.ToolCallParam{{
		Id:       "call-1",
		Type:     schema.ToolCallTypeFunction,
		Function: &schema.ToolCallFunctionParam{Name: "list_dir", Arguments: `{"path":"."}`},
	}})
	if err := log.AddAssistantMessage(&assistant); err != nil {
		t.Fatal(err)
	}
	toolMsg := schema.NewToolMessageParam("call-1", "main.go")
	if err := log.AddToolMessage(&toolMsg); err != nil {
		t.Fatal(err)
	}
	log.Close()

	// A fresh manager must replay the transcript from disk.
	reopened, err := NewManager(dir).GetOrCreate(id)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	items := reopened.Items()
	if len(items) != 3 {
		t.Fatalf("replayed %d items, want 3", len(items))
	}
	if !items[0].IsFromUser() || !items[1].IsFromAssistant() || !items[2].IsFromTool() {
		t.Fatalf("unexpected roles: %+v", items)
	}

	history := reopened.History()
	if len(history) != 3 {
		t.Fatalf("history has %d messages, want 3", len(history))
	}
	calls := history[1].Assistant.ToolCalls
	if len(calls) != 1 || calls[0].Function.Name != "list_dir" {
		t.Fatalf("tool call did not survive the round trip: %+v", calls)
	}
}

func TestHistoryIsDeepCopy(t *testing.T) {
	mgr := NewManager(t.TempDir())
	log, err := mgr.GetOrCreate(NewSessionId())
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	user := schema.NewUserMessageParam("original")
	if err := log.AddUserMessage(&user); err != nil {
		t.Fatal(err)
	}

	history := log.History()
	history[0].User.Content = "mutated"

	if got := log.History()[0].User.Content; got != "original" {
		t.Fatalf("transcript mutated through History copy: %q", got)
	}
}

func TestAppendDecision(t *testing.T) {
	mgr := NewManager(t.TempDir())
	log, err := mgr.GetOrCreate(NewSessionId())
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()

	if err := log.AppendDecision("run_command", "shell_exec", "approved once", true); err != nil {
		t.Fatal(err)
	}
	if err := log.AppendDecision("write_file", "file_write", "denied (safe mode)", false); err != nil {
		t.Fatal(err)
	}
	if err := log.Sync(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(log.Dir(), "decisions.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("decisions file has %d lines, want 2", len(lines))
	}

	var first Decision
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first.Tool != "run_command" || first.Outcome != "approved once" || !first.Interactive {
		t.Fatalf("first decision = %+v", first)
	}
}

func TestManagerLatest(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	if _, ok := mgr.Latest(); ok {
		t.Fatal("empty dir should have no latest session")
	}

	first, err := mgr.GetOrCreate("20240101-000000-aaaaaaaa")
	if err != nil {
		t.Fatal(err)
	}
	user := schema.NewUserMessageParam("hi")
	if err := first.AddUserMessage(&user); err != nil {
		t.Fatal(err)
	}
	mgr.CloseAll()

	id, ok := mgr.Latest()
	if !ok || id != "20240101-000000-aaaaaaaa" {
		t.Fatalf("Latest() = %q, %v", id, ok)
	}
}

func TestGetOrCreateReturnsSameLog(t *testing.T) {
	mgr := NewManager(t.TempDir())

	a, err := mgr.GetOrCreate("s1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := mgr.GetOrCreate("s1")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("same id should return the same log instance")
	}
	mgr.CloseAll()
}
