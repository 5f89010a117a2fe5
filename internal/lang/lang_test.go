package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"app.py", "python"},
		{"index.js", "javascript"},
		{"index.ts", "typescript"},
		{"main.go", "go"},
		{"Main.java", "java"},
		{"vec.cpp", "cpp"},
		{"vec.c", "c"},
		{"lib.rs", "rust"},
		{"UPPER.PY", "python"},
		{"README.md", ""},
		{"Makefile", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sniff(tt.filename), tt.filename)
	}
}

func TestDecodeUTF8Passthrough(t *testing.T) {
	in := []byte("héllo wörld\n")
	assert.Equal(t, "héllo wörld\n", Decode(in))
}

func TestDecodeLatin1Fallback(t *testing.T) {
	// 0xE9 is é in Latin-1 but invalid as a standalone UTF-8 byte.
	in := []byte{'c', 'a', 'f', 0xE9}
	assert.Equal(t, "café", Decode(in))
}

func TestDecodeNeverFails(t *testing.T) {
	in := []byte{0xFF, 0xFE, 0x00, 0x80}
	out := Decode(in)
	assert.Len(t, []rune(out), 4)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("one"))
	assert.Equal(t, 2, CountLines("one\ntwo"))
	assert.Equal(t, 3, CountLines("one\ntwo\n"))
}

func TestIsMinified(t *testing.T) {
	assert.False(t, IsMinified("def f():\n    return 1\n"))

	oneLongLine := strings.Repeat("var a=1;", 100)
	assert.True(t, IsMinified(oneLongLine))

	punctRun := "x" + strings.Repeat(";", 25) + "\nnormal line\nanother\nmore\n"
	assert.True(t, IsMinified(punctRun))

	// Short single-line snippets are fine.
	assert.False(t, IsMinified("x = 1"))
}
