package netx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReader_ReportsCumulativeBytes(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 10)
	var calls [][2]int64
	pr := NewProgressReader(bytes.NewReader(data), int64(len(data)), func(done, total int64) {
		calls = append(calls, [2]int64{done, total})
	})

	buf := make([]byte, 4)
	for {
		_, err := pr.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}

	require.NotEmpty(t, calls)
	assert.Equal(t, [2]int64{10, 10}, calls[len(calls)-1])
	assert.Equal(t, int64(10), pr.Done())
}

func TestProgressReader_SeekResetsCounter(t *testing.T) {
	pr := NewProgressReader(bytes.NewReader([]byte("hello")), 5, nil)
	_, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pr.Done())

	pos, err := pr.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
	assert.Equal(t, int64(0), pr.Done())
}

func TestProgressReader_SeekNotSupported(t *testing.T) {
	pr := NewProgressReader(strings.NewReader("abc"), 3, nil)
	_, err := pr.Seek(0, io.SeekStart)
	require.NoError(t, err, "strings.Reader is seekable")

	pr = NewProgressReader(io.MultiReader(strings.NewReader("abc")), 3, nil)
	_, err = pr.Seek(0, io.SeekStart)
	require.Error(t, err)
}

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.0, Fraction(5, 0))
	assert.Equal(t, 0.0, Fraction(0, 10))
	assert.Equal(t, 0.5, Fraction(5, 10))
	assert.Equal(t, 1.0, Fraction(12, 10))
}

func TestIsNetworkError(t *testing.T) {
	t.Run("closed server", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := http.Get(ts.URL)
		require.Error(t, err)
		assert.True(t, IsNetworkError(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, IsNetworkError(fmt.Errorf("status 500")))
		assert.False(t, IsNetworkError(nil))
	})
}
