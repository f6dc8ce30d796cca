// auditctl runs tender compliance audits from the command line.
//
// Usage:
//
//	auditctl run -p P001 -b 华建公司 -r requirements.json -a responses.json
//	auditctl run -p P001 -b 华建公司 -r requirements.json -a responses.json -c corpus.json --semantic
//	auditctl rules check -f rules.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "auditctl",
		Short:   "Run tender requirement compliance audits",
		Version: version,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(rulesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
