package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(80)
	require.NoError(t, err)

	out, err := render("# Project Overview\n\n**Project Name:** Road\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Project Overview")
	assert.Contains(t, out, "Road")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.True(t, strings.Contains(buf.String(), "PC-1 proposal wizard"))
}
