package base64_test

import (
	"hotel/shared/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

func TestGetContentType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "png", input: pixelPNG, expected: "image/png"},
		{name: "text", input: "data:text/plain;base64,SGVsbG8gV29ybGQ=", expected: "text/plain"},
		{name: "empty string", input: "", expected: ""},
		{name: "no data prefix", input: "image/png;base64,AAAA", expected: ""},
		{name: "no base64 marker", input: "data:image/png,AAAA", expected: ""},
		{name: "empty mime", input: "data:;base64,AAAA", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base64.GetContentType(tt.input))
		})
	}
}

func TestDecode(t *testing.T) {
	contentType, data, err := base64.Decode("data:text/plain;base64,SGVsbG8gV29ybGQ=")
	require.NoError(t, err)

	assert.Equal(t, "text/plain", contentType)
	assert.Equal(t, []byte("Hello World"), data)

	_, data, err = base64.Decode(pixelPNG)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestDecodeInvalid(t *testing.T) {
	_, _, err := base64.Decode("not a data uri")
	assert.ErrorIs(t, err, base64.ErrInvalidDataURI)

	_, _, err = base64.Decode("data:image/png;base64,@@@")
	assert.ErrorIs(t, err, base64.ErrInvalidDataURI)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", base64.Extension("image/png"))
	assert.Equal(t, "jpg", base64.Extension("image/jpeg"))
	assert.Equal(t, "", base64.Extension("garbage"))
}
