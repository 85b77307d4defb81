package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"granth/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"Gayatri Mahavigyan", "gayatri-mahavigyan"},
		{"  Café  Crème  ", "cafe-creme"},
		{"Part 2: The Return!!", "part-2-the-return"},
		{"", "untitled"},
		{"---", "untitled"},
		{"गायत्री महाविज्ञान", "गायत्री-महाविज्ञान"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slug.Make(tc.in), "input %q", tc.in)
	}
}
