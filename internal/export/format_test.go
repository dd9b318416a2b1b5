package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0,00"},
		{in: 1234.5, want: "1.234,50"},
		{in: -1234.567, want: "-1.234,57"},
		{in: 999.999, want: "1.000,00"},
		{in: 1234567.891, want: "1.234.567,89"},
		{in: -0.001, want: "0,00"},
		{in: 12, want: "12,00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in))
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "1.000", FormatQuantity(1000))
	assert.Equal(t, "2,5", FormatQuantity(2.5))
	assert.Equal(t, "-3", FormatQuantity(-3))
	assert.Equal(t, "0,125", FormatQuantity(0.125))
	assert.Equal(t, "0", FormatQuantity(0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12,3 %", FormatPercent(12.345))
	assert.Equal(t, "-50,0 %", FormatPercent(-50))
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "1", groupThousands("1"))
	assert.Equal(t, "123", groupThousands("123"))
	assert.Equal(t, "1.234", groupThousands("1234"))
	assert.Equal(t, "123.456", groupThousands("123456"))
	assert.Equal(t, "12.345.678", groupThousands("12345678"))
}
