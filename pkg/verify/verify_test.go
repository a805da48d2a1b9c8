package verify

import (
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCommandVerify(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	dir := t.TempDir()

	tests := []struct {
		name       string
		cmd        Command
		wantPassed bool
		wantExit   int
		wantOutput string
	}{
		{
			name:       "passes",
			cmd:        Command{Name: "sh", Args: []string{"-c", "echo ok"}},
			wantPassed: true,
			wantExit:   0,
			wantOutput: "ok\n",
		},
		{
			name:       "fails_with_exit_code",
			cmd:        Command{Name: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}},
			wantPassed: false,
			wantExit:   3,
			wantOutput: "broken\n",
		},
		{
			name:       "runs_in_dir",
			cmd:        Command{Name: "sh", Args: []string{"-c", "pwd"}, Dir: dir},
			wantPassed: true,
			wantExit:   0,
		},
		{
			name:       "extra_env",
			cmd:        Command{Name: "sh", Args: []string{"-c", "echo $REWRITERC_TEST"}, Env: []string{"REWRITERC_TEST=yes"}},
			wantPassed: true,
			wantExit:   0,
			wantOutput: "yes\n",
		},
		{
			name:       "missing_binary",
			cmd:        Command{Name: "rewriterc-definitely-not-a-command"},
			wantPassed: false,
			wantExit:   -1,
		},
		{
			name:       "empty_command",
			cmd:        Command{},
			wantPassed: false,
			wantExit:   -1,
			wantOutput: "no verification command configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.cmd.Verify(ctx)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.Equal(t, tt.wantExit, res.ExitCode)
			assert.Equal(t, tt.cmd.String(), res.Command)
			if tt.wantOutput != "" {
				assert.Equal(t, tt.wantOutput, res.Output)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "npx tsc --noEmit", (&Command{Name: "npx", Args: []string{"tsc", "--noEmit"}}).String())
	assert.Equal(t, "make", (&Command{Name: "make"}).String())
}
