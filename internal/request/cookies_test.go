package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCookies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "basic pairs",
			raw:  "k1=v1; k2=v2",
			want: map[string]string{"k1": "v1", "k2": "v2"},
		},
		{
			name: "trailing semicolon and extra whitespace",
			raw:  "  k1 = v1 ;k2=v2; ",
			want: map[string]string{"k1": "v1", "k2": "v2"},
		},
		{
			name: "segments without equals dropped",
			raw:  "k1=v1; junk; k2=v2",
			want: map[string]string{"k1": "v1", "k2": "v2"},
		},
		{
			name: "value keeps inner equals",
			raw:  "token=a=b=c",
			want: map[string]string{"token": "a=b=c"},
		},
		{
			name: "empty input",
			raw:  "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCookies(tt.raw))
		})
	}
}
