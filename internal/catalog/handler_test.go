package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseThreshold(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		fallback int64
		want     int64
	}{
		{name: "empty uses fallback", raw: "", fallback: 5, want: 5},
		{name: "valid override", raw: "12", fallback: 5, want: 12},
		{name: "zero is allowed", raw: "0", fallback: 5, want: 0},
		{name: "negative uses fallback", raw: "-3", fallback: 5, want: 5},
		{name: "garbage uses fallback", raw: "lots", fallback: 5, want: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, parseThreshold(tc.raw, tc.fallback))
		})
	}
}
