package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		def   bool
		want  bool
	}{
		{name: "unset uses default", def: true, want: true},
		{name: "empty uses default", set: true, value: "", def: false, want: false},
		{name: "true", set: true, value: "true", def: false, want: true},
		{name: "false", set: true, value: "false", def: true, want: false},
		{name: "numeric", set: true, value: "1", def: false, want: true},
		{name: "garbage uses default", set: true, value: "yep", def: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_ENV_BOOL"
			if tt.set {
				t.Setenv(key, tt.value)
			}
			assert.Equal(t, tt.want, envBool(key, tt.def))
		})
	}
}
