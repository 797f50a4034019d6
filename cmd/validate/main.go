package main

import (
	"fmt"
	"os"

	"github.com/jwebster45206/royal-chronicle/pkg/event"
)

// validate loads a content directory and reports every content error at
// once. Intended for CI and for content authors before committing.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <content-dir>\n", os.Args[0])
		os.Exit(1)
	}

	dir := os.Args[1]
	fmt.Printf("Validating %s...\n", dir)

	reg, err := event.LoadRegistry(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Content is valid!")
	fmt.Printf("  historical:  %d\n", len(reg.Historical))
	fmt.Printf("  triggered:   %d\n", len(reg.Triggered))
	fmt.Printf("  random pool: %d\n", len(reg.Random))
	fmt.Printf("  chain steps: %d\n", len(reg.ChainSteps))
	fmt.Printf("  chains:      %d\n", len(reg.Chains))
	fmt.Printf("  templates:   %d\n", len(reg.Templates))
}
