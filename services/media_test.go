package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{
			"https://res.cloudinary.com/demo/image/upload/v1712345678/lingohub/moments/abc/img_deadbeef.jpg",
			"lingohub/moments/abc/img_deadbeef",
		},
		{
			"https://res.cloudinary.com/demo/image/upload/sample.png",
			"sample",
		},
		{
			"https://example.com/not-cloudinary.jpg",
			"",
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PublicIDFromURL(tc.url), tc.url)
	}
}
