package stream_test

import (
	"testing"

	"github.com/ryanmoran/dockline/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(lines [][]byte) []string {
	var out []string
	for _, line := range lines {
		out = append(out, string(line))
	}
	return out
}

func TestLineScanner(t *testing.T) {
	t.Run("Feed", func(t *testing.T) {
		t.Run("emits complete lines and keeps the trailing fragment", func(t *testing.T) {
			var s stream.LineScanner

			lines := s.Feed([]byte("one\ntwo\nthr"))
			assert.Equal(t, []string{"one", "two"}, collect(lines))
			assert.Equal(t, "thr", string(s.Pending()))

			lines = s.Feed([]byte("ee\n"))
			assert.Equal(t, []string{"three"}, collect(lines))
			assert.Empty(t, s.Pending())
		})

		t.Run("extends the fragment when the chunk has no newline", func(t *testing.T) {
			var s stream.LineScanner

			assert.Empty(t, s.Feed([]byte("abc")))
			assert.Empty(t, s.Feed([]byte("def")))
			assert.Equal(t, "abcdef", string(s.Pending()))
		})

		t.Run("treats an empty chunk as a no-op", func(t *testing.T) {
			var s stream.LineScanner
			s.Feed([]byte("partial"))

			assert.Empty(t, s.Feed(nil))
			assert.Empty(t, s.Feed([]byte{}))
			assert.Equal(t, "partial", string(s.Pending()))
		})

		t.Run("flushes the fragment on a lone newline", func(t *testing.T) {
			var s stream.LineScanner
			s.Feed([]byte("partial"))

			assert.Equal(t, []string{"partial"}, collect(s.Feed([]byte("\n"))))
			assert.Empty(t, s.Pending())
		})

		t.Run("emits an empty line for a lone newline with nothing pending", func(t *testing.T) {
			var s stream.LineScanner

			lines := s.Feed([]byte("\n"))
			require.Len(t, lines, 1)
			assert.Empty(t, lines[0])
		})

		t.Run("does not keep references to the caller's chunk", func(t *testing.T) {
			var s stream.LineScanner
			chunk := []byte("abc")
			s.Feed(chunk)
			copy(chunk, "xyz")

			assert.Equal(t, []string{"abcdef"}, collect(s.Feed([]byte("def\n"))))
		})
	})

	t.Run("Flush", func(t *testing.T) {
		t.Run("returns the unterminated fragment once", func(t *testing.T) {
			var s stream.LineScanner
			s.Feed([]byte("a\nb"))

			line, ok := s.Flush()
			require.True(t, ok)
			assert.Equal(t, "b", string(line))

			_, ok = s.Flush()
			assert.False(t, ok)
		})

		t.Run("reports nothing when every line was terminated", func(t *testing.T) {
			var s stream.LineScanner
			s.Feed([]byte("a\n"))

			_, ok := s.Flush()
			assert.False(t, ok)
		})
	})
}
