package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityUID is the unique identifier of an entity: a (possibly namespaced)
// entity type and an opaque entity id, written Type::"id".
type EntityUID struct {
	Type string
	ID   string
}

// NewEntityUID builds an EntityUID from its type and id parts.
func NewEntityUID(entityType, id string) EntityUID {
	return EntityUID{Type: entityType, ID: id}
}

// ParseEntityUID parses the textual form Type::"id". The type may itself be
// namespaced (e.g. App::Group::"admins"); the id is the final double-quoted
// segment.
func ParseEntityUID(s string) (EntityUID, error) {
	idx := strings.LastIndex(s, "::")
	if idx <= 0 {
		return EntityUID{}, fmt.Errorf("invalid entity uid %q: expected Type::\"id\"", s)
	}
	entityType := s[:idx]
	quoted := s[idx+2:]
	id, err := strconv.Unquote(quoted)
	if err != nil || !strings.HasPrefix(quoted, `"`) {
		return EntityUID{}, fmt.Errorf("invalid entity uid %q: id must be a double-quoted string", s)
	}
	return EntityUID{Type: entityType, ID: id}, nil
}

// IsZero reports whether e is the zero EntityUID.
func (e EntityUID) IsZero() bool { return e.Type == "" && e.ID == "" }

// String renders the uid in its textual form Type::"id".
func (e EntityUID) String() string {
	return e.Type + "::" + strconv.Quote(e.ID)
}

// MarshalText implements encoding.TextMarshaler, serializing the uid in its
// textual form. This is the wire representation used in slot environments.
func (e EntityUID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EntityUID) UnmarshalText(text []byte) error {
	uid, err := ParseEntityUID(string(text))
	if err != nil {
		return err
	}
	*e = uid
	return nil
}
