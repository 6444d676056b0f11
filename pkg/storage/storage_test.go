package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"connectsphere/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	a := ObjectName("Report.PDF")
	b := ObjectName("Report.PDF")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".pdf"))

	assert.Len(t, ObjectName("noext"), 36)
	assert.False(t, strings.Contains(ObjectName("../../etc/passwd"), "/"))
}

func TestLocal_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := New(context.Background(), config.UploadConfig{Backend: "local", Dir: dir, URLPrefix: "/uploads/"})
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.txt", url)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = store.Save(context.Background(), "a.txt", strings.NewReader("again"), 5, "")
	assert.Error(t, err, "existing files are never overwritten")

	_, err = store.Save(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "")
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.UploadConfig{Backend: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.UploadConfig{Backend: "s3"})
	assert.Error(t, err, "bucket is required")
}
