// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package disk reads and atomically rewrites source files.
package disk

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

const (
	// sniffLen is how much of a file is inspected for NUL bytes
	sniffLen = 512

	// BackupSuffix is appended to a file's name for its backup copy
	BackupSuffix = ".bak"

	tempSuffix = ".tmp"
)

var (
	ErrBinary      = errors.Base("binary content")
	ErrInvalidUTF8 = errors.Base("content is not valid UTF-8")
)

// 💾 FileSystem is the file access a rewrite run needs
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) error
}

var _ FileSystem = (*Disk)(nil)

// 🔧 Disk implements FileSystem on the local file system
type Disk struct{}

// 🏭 New creates a Disk
func New() *Disk {
	return &Disk{}
}

// BackupPath is where BackupFile copies path to
func BackupPath(path string) string {
	return path + BackupSuffix
}

// 🧹 IsScratch reports whether path is a file Disk itself creates: a backup
// copy or the temp file of an in-flight atomic write
func IsScratch(path string) bool {
	if strings.HasSuffix(path, BackupSuffix) {
		return true
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && strings.HasSuffix(base, tempSuffix)
}

func (d *Disk) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// ✍️ WriteFileAtomic writes content to a temp file next to path and renames it
// over path. The original permissions are kept.
func (d *Disk) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+tempSuffix)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tempPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// 📦 BackupFile copies path to its backup location. A missing file is not an error.
func (d *Disk) BackupFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("checking file existence: %w", err)
	}

	if err := copyFile(path, BackupPath(path)); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}
	return nil
}

// 🔍 Decode turns raw file bytes into text. Content with a NUL byte near the
// start is treated as binary.
func Decode(content []byte) (string, error) {
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return "", errors.WithStack(ErrBinary)
	}
	if !utf8.Valid(content) {
		return "", errors.WithStack(ErrInvalidUTF8)
	}
	return string(content), nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading source file info: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	return destination.Close()
}
