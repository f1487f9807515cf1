// Package envfile materializes the bot's .env file from the process
// environment. The file format is plain KEY=VALUE lines with a fixed key
// set in a fixed order, matching what the bot's settings loader expects.
package envfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Keys is the fixed set of keys written to the env file, in write order.
// The first three are required by the bot; the rest are copied through
// even when empty so the file shape is always the same.
var Keys = []string{
	"BOT_TOKEN",
	"TELEGRAM_API_ID",
	"TELEGRAM_API_HASH",
	"ADMIN_IDS",
	"PORT",
	"PYTHONUNBUFFERED",
}

// Lookup resolves a key to its value. os.Getenv satisfies this.
type Lookup func(key string) string

// Render produces the env file content for the given lookup: one
// KEY=VALUE line per key in Keys order, values verbatim, trailing
// newline. Unset keys render as KEY= with an empty value.
func Render(lookup Lookup) string {
	var b strings.Builder
	for _, key := range Keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(lookup(key))
		b.WriteByte('\n')
	}
	return b.String()
}

// Materialize writes the rendered env file to path, overwriting any prior
// content.
func Materialize(path string, lookup Lookup) error {
	if lookup == nil {
		lookup = os.Getenv
	}
	if err := os.WriteFile(path, []byte(Render(lookup)), 0o600); err != nil {
		return fmt.Errorf("write env file %s: %w", path, err)
	}
	return nil
}

// Read parses an env file back into a key/value map. Used to verify the
// round trip and by tools that want to inspect a previously materialized
// file.
func Read(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}
