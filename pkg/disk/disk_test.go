package disk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	ctx := context.Background()
	d := New()

	t.Run("replaces_content_and_keeps_mode", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "script.sh")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o755))
		require.NoError(t, os.Chmod(path, 0o755))

		require.NoError(t, d.WriteFileAtomic(ctx, path, []byte("new")))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file should not be left behind")
	})

	t.Run("creates_missing_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fresh.txt")
		require.NoError(t, d.WriteFileAtomic(ctx, path, []byte("hello")))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(content))
	})

	t.Run("missing_directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "file.txt")
		err := d.WriteFileAtomic(ctx, path, []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating temp file")
	})
}

func TestBackupFile(t *testing.T) {
	ctx := context.Background()
	d := New()
	path := filepath.Join(t.TempDir(), "styles.css")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	require.NoError(t, d.BackupFile(ctx, path))
	require.NoError(t, d.WriteFileAtomic(ctx, path, []byte("changed")))

	backup, err := os.ReadFile(BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "original", string(backup))

	info, err := os.Stat(BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "changed", string(content))
}

func TestBackupMissingFile(t *testing.T) {
	d := New()
	path := filepath.Join(t.TempDir(), "nope.txt")
	require.NoError(t, d.BackupFile(context.Background(), path))

	_, err := os.Stat(BackupPath(path))
	assert.True(t, os.IsNotExist(err))
}

func TestIsScratch(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "src/a.ts", want: false},
		{path: "src/a.ts" + BackupSuffix, want: true},
		{path: "src/.a.ts.123456.tmp", want: true},
		{path: "src/build.tmp", want: false},
		{path: "src/.env", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsScratch(tt.path))
		})
	}
}

func TestIsScratchMatchesOwnFiles(t *testing.T) {
	ctx := context.Background()
	d := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, d.BackupFile(ctx, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var scratch []string
	for _, e := range entries {
		if IsScratch(e.Name()) {
			scratch = append(scratch, e.Name())
		}
	}
	assert.Equal(t, []string{"a.ts" + BackupSuffix}, scratch)
}

func TestReadFile(t *testing.T) {
	d := New()
	_, err := d.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
		wantErr error
	}{
		{name: "text", content: []byte("héllo\n"), want: "héllo\n"},
		{name: "empty", content: nil, want: ""},
		{name: "nul_byte", content: []byte("abc\x00def"), wantErr: ErrBinary},
		{name: "invalid_utf8", content: []byte{'a', 0xff, 0xfe}, wantErr: ErrInvalidUTF8},
		{
			name:    "nul_after_sniff_window_is_still_text",
			content: []byte(strings.Repeat("a", sniffLen) + "\x00"),
			want:    strings.Repeat("a", sniffLen) + "\x00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.content)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
