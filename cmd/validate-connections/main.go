package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/marcelsud/automation-connect/connections"
	"github.com/marcelsud/automation-connect/drivers"
)

/* validate-connections - Standalone CLI tool to validate automation.yaml
 * Usage: go run cmd/validate-connections/main.go [automation.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	file := "automation.yaml"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	fmt.Printf("Validating connections file: %s\n", file)
	fmt.Println(strings.Repeat("-", 50))

	loader := connections.NewLoader(drivers.Known)
	if err := loader.Load(file); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loaded := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Default driver: %s\n", loader.Default("(none)"))
	fmt.Printf("Loaded %d connection(s):\n", len(loaded))

	for i, c := range loaded {
		fmt.Printf("\n%d. Connection: %s\n", i+1, c.Name)
		fmt.Printf("   Driver:     %s\n", c.Driver)
		fmt.Printf("   Rate limit: %d/min\n", loader.Policy().LimitFor(c.Name))
		keys := make([]string, 0, len(c.Config))
		for key := range c.Config {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		shown := automation.Sanitize(c.Config)
		for _, key := range keys {
			fmt.Printf("   %-14s %v\n", key+":", shown[key])
		}
	}

	fmt.Printf("\n✓ All connections are valid!\n")
	os.Exit(0)
}
