/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Lists the logical types found in the examples directory with their generators
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListTypes prints every logical type available for generation
func ListTypes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	types, err := s.ctx.ListTypes()
	if err != nil {
		return err
	}

	banner(out, "Logical Types")
	if len(types) == 0 {
		fmt.Fprintf(out, "No example documents found in %s\n", s.cfg.Paths.Examples)
		return nil
	}
	for _, t := range types {
		fmt.Fprintf(out, "  %-24s %4d documents  [%s]\n", t.LogicalType, t.Documents, t.Strategy)
		if t.Description != "" {
			fmt.Fprintf(out, "      %s\n", t.Description)
		}
	}
	fmt.Fprintf(out, "\n%d types\n", len(types))
	return nil
}
