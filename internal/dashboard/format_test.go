package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1.000"},
		{2030, "2.030"},
		{4060, "4.060"},
		{40600, "40.600"},
		{406000, "406.000"},
		{1234567, "1.234.567"},
		{-40, "-40"},
		{-751, "-751"},
		{-1000, "-1.000"},
		{-4060, "-4.060"},
		{-1234567, "-1.234.567"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.in))
		})
	}
}
