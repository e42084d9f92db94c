package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ctx     *Context
		version string
		date    string
		str     string
	}{
		{"nil", nil, "unknown", "unknown", "unknown (built unknown)"},
		{"empty", New("", ""), "unknown", "unknown", "unknown (built unknown)"},
		{"set", New("v1.2.0", "2025-09-25"), "v1.2.0", "2025-09-25", "v1.2.0 (built 2025-09-25)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.version, tt.ctx.GetVersion())
			assert.Equal(t, tt.date, tt.ctx.GetBuildDate())
			assert.Equal(t, tt.str, tt.ctx.String())
		})
	}
}
