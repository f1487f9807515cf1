// Package render wraps the Render.com command-line tool. All platform
// operations (triggering deploys, launching blueprints, reading service
// metadata) go through the CLI rather than the raw API, so the tool
// behaves exactly like an operator typing the same commands.
package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"time"

	"github.com/dmarkhas/renderdeploy-go/internal/errors"
)

// binaryName is the Render CLI executable expected on PATH.
const binaryName = "render"

// defaultCommandTimeout bounds a single CLI invocation. Blueprint
// launches can take a while server-side but the CLI returns once the
// request is accepted.
const defaultCommandTimeout = 2 * time.Minute

// CheckCLI verifies the render binary is available on PATH. This check
// runs before anything else, including API-key validation.
func CheckCLI() error {
	if _, err := exec.LookPath(binaryName); err != nil {
		return errors.ErrCLINotFound
	}
	return nil
}

// Runner abstracts CLI execution so commands can be faked in tests.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// CLI executes render commands with the API key injected via the
// environment, never via argv (argv is visible in process listings).
type CLI struct {
	apiKey  string
	timeout time.Duration
}

// NewCLI creates a CLI runner authenticated with apiKey.
func NewCLI(apiKey string) *CLI {
	return &CLI{apiKey: apiKey, timeout: defaultCommandTimeout}
}

// Run executes `render <args...>` and returns stdout. Non-zero exits are
// returned as a CLIError carrying the exit code and stderr.
func (c *CLI) Run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryName, args...)
	cmd.Env = append(os.Environ(),
		"RENDER_API_KEY="+c.apiKey,
		// Non-interactive mode: the CLI must never prompt.
		"CI=true",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := stderr.String()
		if output == "" {
			output = stdout.String()
		}
		return nil, errors.NewCLIError(binaryName, args, exitCode(cmd, err), output, err)
	}
	return stdout.Bytes(), nil
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
