package responder

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed replies.yaml
var defaultReplies []byte

// Entry maps a lowercase trigger phrase to a canned reply.
type Entry struct {
	Trigger string `yaml:"trigger"`
	Reply   string `yaml:"reply"`
}

// Table is an immutable, ordered list of canned replies.
type Table struct {
	entries []Entry
}

// DefaultTable returns the built-in reply table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultReplies)
	if err != nil {
		panic(fmt.Sprintf("embedded replies.yaml: %v", err))
	}
	return t
}

// LoadTable reads a YAML reply table from disk.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reply table: %w", err)
	}
	return ParseTable(b)
}

// ParseTable decodes a YAML sequence of {trigger, reply}. Triggers are
// lowercased and must be unique and non-empty.
func ParseTable(b []byte) (*Table, error) {
	var raw []Entry
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode reply table: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	entries := make([]Entry, 0, len(raw))
	for i, e := range raw {
		trigger := strings.ToLower(strings.TrimSpace(e.Trigger))
		if trigger == "" {
			return nil, fmt.Errorf("entry %d: empty trigger", i)
		}
		if e.Reply == "" {
			return nil, fmt.Errorf("entry %d (%q): empty reply", i, trigger)
		}
		if _, dup := seen[trigger]; dup {
			return nil, fmt.Errorf("entry %d: duplicate trigger %q", i, trigger)
		}
		seen[trigger] = struct{}{}
		entries = append(entries, Entry{Trigger: trigger, Reply: e.Reply})
	}
	if len(entries) == 0 {
		return nil, errors.New("reply table is empty")
	}
	return &Table{entries: entries}, nil
}

// Match returns the reply of the first entry whose trigger occurs in normalized.
func (t *Table) Match(normalized string) (string, bool) {
	for _, e := range t.entries {
		if strings.Contains(normalized, e.Trigger) {
			return e.Reply, true
		}
	}
	return "", false
}

func (t *Table) Entries() []Entry {
	cp := make([]Entry, len(t.entries))
	copy(cp, t.entries)
	return cp
}
