package catalogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigratorResolve(t *testing.T) {
	b := testBundle()
	b.Sets[0].RemoteCode = "M1"
	s, err := NewStore(b)
	require.NoError(t, err)

	m := NewMigrator(s, Migrations{Aliases: map[string]string{
		"enchanted-ariel": "MIN-001",
		"dangling":        "MIN-999",
	}})

	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{"MIN-001", "MIN-001", true},
		{"enchanted-ariel", "MIN-001", true},
		{"min-2", "MIN-002", true},
		{"M1_002", "MIN-002", true},
		{"dangling", "", false},
		{"XYZ-001", "", false},
		{"tfc-7", "TFC-007", true},
		{"1-204", "TFC-204", true},
		{"TFC-205", "", false},
		{"garbage", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := m.Resolve(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
