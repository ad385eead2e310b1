package session

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"codeward/llm/schema"
)

func newItemId() string {
	id := uuid.Must(uuid.NewV7())
	return strings.ReplaceAll(id.String(), "-", "")
}

// Item is one transcript line. One line is one message.
type Item struct {
	Id      string               `json:"id"`
	Role    schema.Role          `json:"role"`
	Created int64                `json:"created"`
	Message *schema.MessageParam `json:"message,omitzero"`
}

func (it *Item) IsFromUser() bool {
	return it.Role == schema.RoleUser
}

func (it *Item) IsFromAssistant() bool {
	return it.Role == schema.RoleAssistant
}

func (it *Item) IsFromTool() bool {
	return it.Role == schema.RoleTool
}

func (it *Item) Json() string {
	c, _ := json.Marshal(it)
	return string(c)
}

// Decision is one confirmation gate outcome, kept alongside the
// transcript so a session records what it was allowed to do.
type Decision struct {
	Tool        string `json:"tool"`
	Category    string `json:"category"`
	Outcome     string `json:"outcome"`
	Interactive bool   `json:"interactive"`
	Created     int64  `json:"created"`
}
