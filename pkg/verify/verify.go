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

// Package verify runs the external check that follows a rewrite, such as a
// type checker or a test suite.
package verify

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🧪 Result is the outcome of one verification. It is reported, never interpreted.
type Result struct {
	Command  string
	Passed   bool
	ExitCode int
	Output   string
	Duration time.Duration
}

// Verifier is invoked once after a run that modified files
type Verifier interface {
	Verify(ctx context.Context) Result
}

var _ Verifier = (*Command)(nil)

// 🔧 Command verifies by running an external process. A zero exit code passes.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the current environment
	Env []string
}

// String returns the command line as typed
func (c *Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Verify runs the command with combined stdout and stderr captured. A
// command that cannot be started fails with exit code -1.
func (c *Command) Verify(ctx context.Context) Result {
	logger := zerolog.Ctx(ctx)
	res := Result{Command: c.String(), ExitCode: -1}

	if c.Name == "" {
		res.Output = "no verification command configured"
		return res
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debug().Str("command", res.Command).Str("dir", c.Dir).Msg("running verification")

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Output = out.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.Passed = true
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		if res.Output != "" && !strings.HasSuffix(res.Output, "\n") {
			res.Output += "\n"
		}
		res.Output += errors.Errorf("starting verification command: %w", err).Error()
	}

	logger.Debug().
		Str("command", res.Command).
		Bool("passed", res.Passed).
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Msg("verification finished")

	return res
}
