package finago

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one element of a decoded XML document. The decoder maps element
// text to string, nested elements to map[string]any and repeated elements
// to []any, so the same logical field can arrive in several shapes. All
// extraction goes through ScalarOf and ListOf which collapse those shapes
// into predictable ones.
type Node map[string]any

// AsNode converts a raw decoded value to a Node if it is map-shaped.
func AsNode(v any) (Node, bool) {
	switch t := v.(type) {
	case Node:
		return t, true
	case map[string]any:
		return Node(t), true
	}
	return nil, false
}

// ScalarOf returns the single logical value held at key. A list collapses
// to its first element; an absent key returns nil.
func ScalarOf(n Node, key string) any {
	if n == nil {
		return nil
	}
	v, ok := n[key]
	if !ok {
		return nil
	}
	if l, ok := v.([]any); ok {
		if len(l) == 0 {
			return nil
		}
		return l[0]
	}
	return v
}

// ListOf returns the children held at key as a list of Nodes regardless of
// whether the document serialized zero, one or many children. A lone child
// arrives as a bare map and is wrapped; non-map entries are dropped.
func ListOf(n Node, key string) []Node {
	if n == nil {
		return nil
	}
	v, ok := n[key]
	if !ok || v == nil {
		return nil
	}
	var items []any
	if l, ok := v.([]any); ok {
		items = l
	} else {
		items = []any{v}
	}
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		if node, ok := AsNode(item); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// NodeOf returns the value at key as a Node, collapsing list wrapping. It
// returns nil if the value is absent or not map-shaped.
func NodeOf(n Node, key string) Node {
	node, _ := AsNode(ScalarOf(n, key))
	return node
}

// StringOf returns the value at key as a trimmed string, or "" when absent
// or not scalar.
func StringOf(n Node, key string) string {
	return asString(ScalarOf(n, key))
}

// FirstString returns the first non-empty string value among keys,
// implementing the fallback chains used throughout the extractors.
func FirstString(n Node, keys ...string) string {
	for _, key := range keys {
		if s := StringOf(n, key); s != "" {
			return s
		}
	}
	return ""
}

// IntOf parses the value at key as an int. Absent or unparsable values
// yield zero; extractors treat a zero primary key as a dropped record.
func IntOf(n Node, key string) int {
	return asInt(ScalarOf(n, key))
}

// IntRefOf parses the value at key as an optional int reference. Absent or
// unparsable values yield nil, never zero.
func IntRefOf(n Node, key string) *int {
	s := asString(ScalarOf(n, key))
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}

// FloatOf parses the value at key as a float64, defaulting to 0.0 when
// absent or unparsable.
func FloatOf(n Node, key string) float64 {
	s := asString(ScalarOf(n, key))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// BoolOf interprets the value at key as a boolean. The wire format uses
// "true"/"1"/"yes" (any casing) for true; everything else is false.
func BoolOf(n Node, key string) bool {
	switch t := ScalarOf(n, key).(type) {
	case bool:
		return t
	default:
		switch strings.ToLower(asString(t)) {
		case "true", "1", "yes":
			return true
		}
		return false
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func asInt(v any) int {
	s := asString(v)
	if s == "" {
		return 0
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
