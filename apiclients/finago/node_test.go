package finago

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestScalarOf checks the collapse of the shapes the decoder can produce
// for a single logical value: absent, scalar, and list.
func TestScalarOf(t *testing.T) {

	tests := []struct {
		name string
		node Node
		key  string
		want any
	}{
		{
			name: "absent key",
			node: Node{"Other": "x"},
			key:  "Id",
			want: nil,
		},
		{
			name: "nil node",
			node: nil,
			key:  "Id",
			want: nil,
		},
		{
			name: "scalar",
			node: Node{"Id": "1001"},
			key:  "Id",
			want: "1001",
		},
		{
			name: "list collapses to first element",
			node: Node{"Id": []any{"1001", "1002"}},
			key:  "Id",
			want: "1001",
		},
		{
			name: "empty list",
			node: Node{"Id": []any{}},
			key:  "Id",
			want: nil,
		},
	}

	for ii, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", ii, tt.name), func(t *testing.T) {
			if got := ScalarOf(tt.node, tt.key); got != tt.want {
				t.Errorf("got %v want %v", got, tt.want)
			}
		})
	}
}

// TestListOf checks that zero, one and many children all arrive as a list
// of Nodes.
func TestListOf(t *testing.T) {

	tests := []struct {
		name string
		node Node
		key  string
		want int
	}{
		{
			name: "absent key",
			node: Node{},
			key:  "Company",
			want: 0,
		},
		{
			name: "lone child is wrapped",
			node: Node{"Company": map[string]any{"Id": "1001"}},
			key:  "Company",
			want: 1,
		},
		{
			name: "list of two",
			node: Node{"Company": []any{
				map[string]any{"Id": "1001"},
				map[string]any{"Id": "1002"},
			}},
			key:  "Company",
			want: 2,
		},
		{
			name: "non-map entries dropped",
			node: Node{"Company": []any{"not a map", map[string]any{"Id": "1001"}}},
			key:  "Company",
			want: 1,
		},
	}

	for ii, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", ii, tt.name), func(t *testing.T) {
			if got := len(ListOf(tt.node, tt.key)); got != tt.want {
				t.Errorf("got %d nodes want %d", got, tt.want)
			}
		})
	}
}

func TestStringHelpers(t *testing.T) {

	n := Node{
		"Padded":  "  spaced out  ",
		"Empty":   "",
		"Second":  "fallback value",
		"Numeric": "12.5",
	}

	if got, want := StringOf(n, "Padded"), "spaced out"; got != want {
		t.Errorf("StringOf got %q want %q", got, want)
	}
	if got, want := FirstString(n, "Missing", "Empty", "Second"), "fallback value"; got != want {
		t.Errorf("FirstString got %q want %q", got, want)
	}
	if got := FirstString(n, "Missing", "Empty"); got != "" {
		t.Errorf("FirstString got %q want empty", got)
	}
	if got, want := FloatOf(n, "Numeric"), 12.5; got != want {
		t.Errorf("FloatOf got %f want %f", got, want)
	}
	if got := FloatOf(n, "Missing"); got != 0 {
		t.Errorf("FloatOf for missing key got %f want 0", got)
	}
}

// TestIntRefOf checks the distinction between zero and absent which drives
// the nullable columns.
func TestIntRefOf(t *testing.T) {

	n := Node{
		"Zero":       "0",
		"Value":      "42",
		"Unparsable": "4x",
	}

	if got := IntRefOf(n, "Missing"); got != nil {
		t.Errorf("IntRefOf for missing key got %v want nil", got)
	}
	if got := IntRefOf(n, "Unparsable"); got != nil {
		t.Errorf("IntRefOf for unparsable value got %v want nil", got)
	}
	if got := IntRefOf(n, "Zero"); got == nil || *got != 0 {
		t.Errorf("IntRefOf for zero got %v want *0", got)
	}
	if got := IntRefOf(n, "Value"); got == nil || *got != 42 {
		t.Errorf("IntRefOf got %v want *42", got)
	}

	if got, want := IntOf(n, "Value"), 42; got != want {
		t.Errorf("IntOf got %d want %d", got, want)
	}
	if got := IntOf(n, "Missing"); got != 0 {
		t.Errorf("IntOf for missing key got %d want 0", got)
	}
}

func TestBoolOf(t *testing.T) {

	tests := []struct {
		value any
		want  bool
	}{
		{"true", true},
		{"True", true},
		{"1", true},
		{"YES", true},
		{true, true},
		{"false", false},
		{"0", false},
		{"", false},
		{nil, false},
		{"anything else", false},
	}

	for ii, tt := range tests {
		t.Run(fmt.Sprintf("test_%d", ii), func(t *testing.T) {
			n := Node{"Flag": tt.value}
			if got := BoolOf(n, "Flag"); got != tt.want {
				t.Errorf("BoolOf(%v) got %t want %t", tt.value, got, tt.want)
			}
		})
	}
}

func TestNodeOf(t *testing.T) {

	n := Node{
		"Currency": map[string]any{"Symbol": "NOK"},
		"Wrapped":  []any{map[string]any{"Symbol": "EUR"}},
		"Scalar":   "NOK",
	}

	if got, want := StringOf(NodeOf(n, "Currency"), "Symbol"), "NOK"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
	if got, want := StringOf(NodeOf(n, "Wrapped"), "Symbol"), "EUR"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
	if got := NodeOf(n, "Scalar"); got != nil {
		t.Errorf("NodeOf for scalar got %v want nil", got)
	}

	want := Node{"Symbol": "NOK"}
	if diff := cmp.Diff(want, NodeOf(n, "Currency")); diff != "" {
		t.Errorf("NodeOf mismatch (-want +got):\n%s", diff)
	}
}
