package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCompletion(t *testing.T) {
	commands := []string{"login", "courses", "search"}
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCompletion(&buf, shell, "coursectl", commands))
			out := buf.String()
			assert.Contains(t, out, "coursectl")
			assert.Contains(t, out, "courses login search")
		})
	}

	var buf bytes.Buffer
	err := WriteCompletion(&buf, "powershell", "coursectl", commands)
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestWriteCompletion_FunctionName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCompletion(&buf, "bash", "course-ctl", nil))
	assert.Contains(t, buf.String(), "_course_ctl_completion()")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]any{"success": true}))
	assert.Equal(t, "{\n  \"success\": true\n}\n", buf.String())
}

func TestSpinner_DisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "loading", false)
	s.Start()
	s.Stop(true, "done")
	assert.Empty(t, buf.String())
}

func TestSpinner_Enabled(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "loading", true)
	s.Start()
	s.Start()
	time.Sleep(250 * time.Millisecond)
	s.Stop(false, "failed")
	s.Stop(false, "ignored")

	out := buf.String()
	assert.Contains(t, out, "loading")
	assert.True(t, strings.HasSuffix(out, "✗"+ColorReset+" failed\n"))
	assert.NotContains(t, out, "ignored")
}
