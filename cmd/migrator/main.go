// Command migrator rewrites a legacy {key,type,value} params document into
// canonical EQUALS expression trees.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dsaferreira/doppelganger-go/internal/migrator"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: migrator <input.json> <output.json>")
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", inputPath, err)
	}

	migrated := migrator.Migrate(doc)

	out, err := json.MarshalIndent(migrated, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", outputPath, err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(outputPath, out, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}
