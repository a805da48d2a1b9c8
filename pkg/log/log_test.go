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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_file",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFile(context.Background(), FileEvent{
					Path:    "src/a.css",
					Status:  StatusRewritten,
					Changes: 3,
				})
			},
			wantLogs: []string{
				"⟳ src/a.css                           rewritten       3 changes",
			},
		},
		{
			name: "start_run",
			op: func(t *testing.T, logger *Logger) {
				logger.StartRun(context.Background(), RunInfo{
					Roots:  []string{"apps/frontend/src", "apps/backend/src"},
					Rules:  12,
					DryRun: true,
				})
				logger.EndRun(context.Background())
			},
			wantLogs: []string{
				"[rewriting apps/frontend/src, apps/backend/src]",
				"◆ 12 rules • dry run",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("rewriting source files")
			},
			wantLogs: []string{
				"rewriterc • rewriting source files",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.New(zerolog.NewTestWriter(t)))

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestFileEventFormatting(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		ev   FileEvent
		want string
	}{
		{
			name: "rewritten",
			ev:   FileEvent{Path: "src/a.css", Status: StatusRewritten, Changes: 3},
			want: "    ⟳ src/a.css                           rewritten       3 changes",
		},
		{
			name: "would_rewrite",
			ev:   FileEvent{Path: "src/a.css", Status: StatusWouldRewrite, Changes: 1},
			want: "    ~ src/a.css                           would rewrite   1 change",
		},
		{
			name: "unchanged",
			ev:   FileEvent{Path: "src/b.css", Status: StatusUnchanged},
			want: "    - src/b.css                           unchanged",
		},
		{
			name: "failed",
			ev:   FileEvent{Path: "src/c.css", Status: StatusFailed},
			want: "    ✗ src/c.css                           failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			logger.LogFile(context.Background(), tt.ev)

			assert.Equal(t, tt.want+"\n", buf.String(), "formatted output should match")
		})
	}
}
