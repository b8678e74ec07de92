package render

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnsupportedFeatureError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    UnsupportedFeatureError
		message string
	}{
		{
			name:    "without hint",
			err:     NewUnsupportedFeatureError("sqlite", "range arguments"),
			want:    UnsupportedFeatureError{Target: "sqlite", Feature: "range arguments"},
			message: "sqlite: range arguments is not supported",
		},
		{
			name: "with hint",
			err:  NewUnsupportedFeatureError("edgeql", "outer scope reference", "bind the outer value with a computed field", "ignored"),
			want: UnsupportedFeatureError{
				Target:  "edgeql",
				Feature: "outer scope reference",
				Hint:    "bind the outer value with a computed field",
			},
			message: "edgeql: outer scope reference is not supported (bind the outer value with a computed field)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.message {
				t.Errorf("Error() = %q, want %q", got, tt.message)
			}
			wrapped := fmt.Errorf("argument v: %w", tt.err)
			var got UnsupportedFeatureError
			if !errors.As(wrapped, &got) {
				t.Fatal("expected UnsupportedFeatureError through wrapping")
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCapabilities_Supports(t *testing.T) {
	full := Capabilities{Args: ArgsPositional, Ranges: true, Vectors: true, Collections: true}
	bare := Capabilities{Args: ArgsNamed}

	for _, kind := range []string{"scalar", "range", "multirange", "vector", "array", "tuple", "namedtuple"} {
		if !full.Supports(kind) {
			t.Errorf("full capabilities should support %s", kind)
		}
	}
	for _, kind := range []string{"range", "multirange", "vector", "array", "tuple", "namedtuple"} {
		if bare.Supports(kind) {
			t.Errorf("bare capabilities should not support %s", kind)
		}
	}
	if !bare.Supports("scalar") {
		t.Error("scalars are always supported")
	}
}
