// Package image renders the bot's container build recipe (a Dockerfile)
// from a declarative Recipe value. Keeping the recipe in code makes the
// layer ordering an invariant instead of a convention: the dependency
// manifest is always installed before the source tree is copied, so
// source-only changes never invalidate the dependency cache layer.
package image

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Recipe describes the container image declaratively.
type Recipe struct {
	// BaseImage is the FROM line.
	BaseImage string

	// AptPackages are OS packages installed in one cached layer.
	AptPackages []string

	// RequirementsFile is the Python dependency manifest. It is copied
	// and installed before the rest of the source tree.
	RequirementsFile string

	// RuntimeDirs are pre-created inside the image so the application
	// never has to create them at startup.
	RuntimeDirs []string

	// Env holds interpreter-level environment flags. Rendered in sorted
	// key order for deterministic output.
	Env map[string]string

	// Cmd is the container's single fixed start command.
	Cmd []string

	// WorkDir is the working directory inside the image.
	WorkDir string
}

// DefaultRecipe returns the canonical recipe for the Telegram parser bot.
func DefaultRecipe() Recipe {
	return Recipe{
		BaseImage:        "python:3.11-slim",
		AptPackages:      []string{"gcc", "libffi-dev"},
		RequirementsFile: "requirements.txt",
		RuntimeDirs:      []string{"data", "data/sessions", "logs", "temp"},
		Env: map[string]string{
			"PYTHONUNBUFFERED":        "1",
			"PYTHONDONTWRITEBYTECODE": "1",
			"PYTHONHASHSEED":          "random",
		},
		Cmd:     []string{"python", "bot.py"},
		WorkDir: "/app",
	}
}

// Validate checks the recipe is renderable.
func (r Recipe) Validate() error {
	if r.BaseImage == "" {
		return fmt.Errorf("recipe: base image is required")
	}
	if r.RequirementsFile == "" {
		return fmt.Errorf("recipe: requirements file is required")
	}
	if len(r.Cmd) == 0 {
		return fmt.Errorf("recipe: start command is required")
	}
	return nil
}

// Render produces the Dockerfile text. Output is deterministic for a
// given recipe: env keys are sorted, everything else keeps declaration
// order.
func (r Recipe) Render() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FROM %s\n\n", r.BaseImage)

	workDir := r.WorkDir
	if workDir == "" {
		workDir = "/app"
	}
	fmt.Fprintf(&b, "WORKDIR %s\n\n", workDir)

	if len(r.AptPackages) > 0 {
		fmt.Fprintf(&b, "RUN apt-get update && apt-get install -y --no-install-recommends %s \\\n",
			strings.Join(r.AptPackages, " "))
		b.WriteString("    && rm -rf /var/lib/apt/lists/*\n\n")
	}

	// Dependency layer first: a source-only change must not bust the
	// pip install cache.
	fmt.Fprintf(&b, "COPY %s .\n", r.RequirementsFile)
	fmt.Fprintf(&b, "RUN pip install --no-cache-dir -r %s\n\n", r.RequirementsFile)

	b.WriteString("COPY . .\n\n")

	if len(r.RuntimeDirs) > 0 {
		fmt.Fprintf(&b, "RUN mkdir -p %s\n\n", strings.Join(r.RuntimeDirs, " "))
	}

	if len(r.Env) > 0 {
		keys := make([]string, 0, len(r.Env))
		for k := range r.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "ENV %s=%s\n", k, r.Env[k])
		}
		b.WriteByte('\n')
	}

	quoted := make([]string, len(r.Cmd))
	for i, part := range r.Cmd {
		quoted[i] = fmt.Sprintf("%q", part)
	}
	fmt.Fprintf(&b, "CMD [%s]\n", strings.Join(quoted, ", "))

	return b.String(), nil
}

// WriteFile renders the recipe and writes it to path, overwriting any
// existing file.
func (r Recipe) WriteFile(path string) error {
	content, err := r.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
