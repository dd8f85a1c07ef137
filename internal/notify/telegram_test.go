package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{500, "500"},
		{1000, "1 000"},
		{12000, "12 000"},
		{1234567, "1 234 567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatThousands(tt.n))
	}
}
