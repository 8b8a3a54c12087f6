package ftpstub

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"single crlf line", "hello\r\n", "hello\r\n"},
		{"single lf line", "hello\n", "hello\r\n"},
		{"no terminator", "hello", "hello"},
		{"blank lines", "\n\r\n\n", "\r\n\r\n\r\n"},
		{"embedded cr kept", "a\rb\n", "a\rb\r\n"},
		{"many lines", strings.Repeat("file1 content\n", 1024), strings.Repeat("file1 content\r\n", 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst bytes.Buffer
			n, err := copyLines(&dst, strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.input)), n)
			assert.Equal(t, tt.want, dst.String())
		})
	}
}

func TestCopyLines_OneByteReads(t *testing.T) {
	var dst bytes.Buffer
	_, err := copyLines(&dst, iotest.OneByteReader(strings.NewReader("a\r\nb\nc")))
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\nc", dst.String())
}

func TestCopyLines_ReadError(t *testing.T) {
	boom := errors.New("boom")
	var dst bytes.Buffer
	_, err := copyLines(&dst, iotest.ErrReader(boom))
	assert.ErrorIs(t, err, boom)
}

func TestCRLFWriter(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{"bare lf", []string{"a\nb\n"}, "a\r\nb\r\n"},
		{"crlf unchanged", []string{"a\r\nb\r\n"}, "a\r\nb\r\n"},
		{"cr and lf split across writes", []string{"a\r", "\nb"}, "a\r\nb"},
		{"lf at start of write", []string{"a", "\nb"}, "a\r\nb"},
		{"no newlines", []string{"abc"}, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst bytes.Buffer
			w := newCRLFWriter(&dst)
			for _, c := range tt.chunks {
				n, err := w.Write([]byte(c))
				require.NoError(t, err)
				assert.Equal(t, len(c), n)
			}
			assert.Equal(t, tt.want, dst.String())
		})
	}
}

func TestListPattern(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"", ""},
		{"-la", ""},
		{"/", ""},
		{".", ""},
		{"*.txt", "*.txt"},
		{"-l /*.txt", "*.txt"},
		{"foo.txt", "foo.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, listPattern(tt.arg), "arg %q", tt.arg)
	}
}
