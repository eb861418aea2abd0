package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role     Role
		required Role
		expected bool
	}{
		{Worker, Worker, true},
		{Worker, Master, false},
		{Master, Master, true},
		{Admin, Master, true},
		{Role("guest"), Worker, false},
		{Role(""), Worker, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"->"+string(tt.required), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.HasPermission(tt.required))
		})
	}
}

func TestParse(t *testing.T) {
	assert.Equal(t, Master, Parse("  MASTER "))
	assert.False(t, Parse("owner").IsValid())
}
