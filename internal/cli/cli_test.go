package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/easel"
)

// writeTestLog serializes a small two-buffer picture to a temp file.
func writeTestLog(t *testing.T) string {
	t.Helper()
	pic, err := easel.NewPicture(32, 32)
	require.NoError(t, err)

	for _, id := range []int{1, 2} {
		create := pic.Stamp(easel.NewBufferCreateEvent(id, easel.Transparent, true, 1)).(*easel.BufferCreateEvent)
		_, err := pic.AddBuffer(create)
		require.NoError(t, err)
	}
	brush := easel.NewBrushEvent(easel.Red, 1, 1, 6, easel.BlendNormal)
	brush.AddPoint(16, 16, 1)
	require.NoError(t, pic.PushEvent(1, pic.Stamp(brush)))

	s, err := pic.SerializeString()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "picture.easel")
	require.NoError(t, os.WriteFile(path, []byte(s), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspectJSON(t *testing.T) {
	path := writeTestLog(t)
	out, err := runCommand(t, "inspect", path, "--format", "json")
	require.NoError(t, err)

	var result InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 32, result.Width)
	require.Len(t, result.Buffers, 2)
	require.Equal(t, 1, result.Buffers[0].ID)
	require.Equal(t, 2, result.Buffers[0].Events)
	require.Equal(t, 1, result.Buffers[0].EventTypes["brush"])
}

func TestInspectText(t *testing.T) {
	path := writeTestLog(t)
	out, err := runCommand(t, "inspect", path)
	require.NoError(t, err)
	require.Contains(t, out, "Picture 32x32")
	require.Contains(t, out, "buffer 1")
}

func TestRenderWritesPNG(t *testing.T) {
	path := writeTestLog(t)
	outPath := filepath.Join(t.TempDir(), "out.png")
	_, err := runCommand(t, "render", path, "-o", outPath)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 32, img.Bounds().Dx())
}

func TestRenderUnknownBackend(t *testing.T) {
	path := writeTestLog(t)
	_, err := runCommand(t, "render", path, "--backend", "quantum", "-o", filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)
}

func TestBlameFindsContributor(t *testing.T) {
	path := writeTestLog(t)
	out, err := runCommand(t, "blame", path, "-x", "16", "-y", "16", "--format", "json")
	require.NoError(t, err)

	var result BlameResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Entries, 1)
	require.Equal(t, 1, result.Entries[0].BufferID)
	require.Equal(t, "brush", result.Entries[0].Type)
}

func TestBlameOutOfBounds(t *testing.T) {
	path := writeTestLog(t)
	_, err := runCommand(t, "blame", path, "-x", "99", "-y", "0")
	require.Error(t, err)
}

func TestVerifyCleanLog(t *testing.T) {
	path := writeTestLog(t)
	out, err := runCommand(t, "verify", path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "ok:"), out)
}

func TestInvalidFormatRejected(t *testing.T) {
	path := writeTestLog(t)
	_, err := runCommand(t, "inspect", path, "--format", "yaml")
	require.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := runCommand(t, "inspect", filepath.Join(t.TempDir(), "absent.easel"))
	require.Error(t, err)
}
