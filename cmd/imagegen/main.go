// Package main renders the bot's Dockerfile from the canonical build
// recipe. Regenerating the file instead of hand-editing it keeps the
// dependency-before-source layer ordering from silently regressing.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmarkhas/renderdeploy-go/internal/image"
)

func main() {
	out := flag.String("out", "Dockerfile", "output path (use - for stdout)")
	flag.Parse()

	recipe := image.DefaultRecipe()

	if *out == "-" {
		content, err := recipe.Render()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(content)
		return
	}

	if err := recipe.WriteFile(*out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}
