package shared

import (
	"strings"
	"testing"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestJSONList_Value(t *testing.T) {
	tests := []struct {
		name     string
		list     JSONList[point]
		expected string
	}{
		{
			name:     "empty list",
			list:     JSONList[point]{},
			expected: "[]",
		},
		{
			name:     "nil list",
			list:     nil,
			expected: "[]",
		},
		{
			name:     "single item",
			list:     JSONList[point]{{X: 1, Y: 2}},
			expected: `[{"x":1,"y":2}]`,
		},
		{
			name:     "multiple items",
			list:     JSONList[point]{{X: 1}, {Y: 3}},
			expected: `[{"x":1,"y":0},{"x":0,"y":3}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.list.Value()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			s, ok := result.(string)
			if !ok {
				t.Fatalf("expected string, got %T", result)
			}
			if s != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, s)
			}
		})
	}
}

func TestJSONList_Scan(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected JSONList[string]
		wantErr  bool
	}{
		{
			name:     "nil value",
			input:    nil,
			expected: nil,
		},
		{
			name:     "byte slice",
			input:    []byte(`["a","b","c"]`),
			expected: JSONList[string]{"a", "b", "c"},
		},
		{
			name:     "string",
			input:    `["x","y"]`,
			expected: JSONList[string]{"x", "y"},
		},
		{
			name:     "empty array",
			input:    "[]",
			expected: JSONList[string]{},
		},
		{
			name:    "invalid type",
			input:   123,
			wantErr: true,
		},
		{
			name:    "invalid json",
			input:   "not json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l JSONList[string]
			err := l.Scan(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(l) != len(tt.expected) {
				t.Fatalf("expected len %d, got %d", len(tt.expected), len(l))
			}
			for i := range l {
				if l[i] != tt.expected[i] {
					t.Errorf("index %d: expected %s, got %s", i, tt.expected[i], l[i])
				}
			}
		})
	}
}

func TestNewID(t *testing.T) {
	tests := []struct {
		prefix string
	}{
		{prefix: "ins_"},
		{prefix: "room_"},
		{prefix: ""},
	}

	for _, tt := range tests {
		t.Run("prefix_"+tt.prefix, func(t *testing.T) {
			id := NewID(tt.prefix)
			if !strings.HasPrefix(id, tt.prefix) {
				t.Errorf("expected ID to start with '%s', got '%s'", tt.prefix, id)
			}
			expectedLen := len(tt.prefix) + 32
			if len(id) != expectedLen {
				t.Errorf("expected length %d, got %d", expectedLen, len(id))
			}
		})
	}

	id1 := NewID("test_")
	id2 := NewID("test_")
	if id1 == id2 {
		t.Error("expected unique IDs, got duplicates")
	}
}
