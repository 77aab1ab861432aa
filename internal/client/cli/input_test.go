package cli

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetWithDefault(t *testing.T) {
	var out bytes.Buffer
	got, err := GetWithDefault(rdr("\n"), "Make", "Toyota", &out)
	require.NoError(t, err)
	assert.Equal(t, "Toyota", got)
	assert.Contains(t, out.String(), "Make [Toyota]")

	got, err = GetWithDefault(rdr("Nissan\n"), "Make", "Toyota", &out)
	require.NoError(t, err)
	assert.Equal(t, "Nissan", got)
}

func TestGetInt_RepromptsOnGarbage(t *testing.T) {
	var out bytes.Buffer
	got, err := GetInt(rdr("abc\n-4\n1998\n"), "Year", 0, &out)
	require.NoError(t, err)
	assert.Equal(t, 1998, got)
	assert.Equal(t, 2, strings.Count(out.String(), "whole number"))

	got, err = GetInt(rdr("\n"), "Year", 2015, &out)
	require.NoError(t, err)
	assert.Equal(t, 2015, got)
}

func TestGetYesNo(t *testing.T) {
	var out bytes.Buffer
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false} {
		got, err := GetYesNo(rdr(in), "Done?", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
