/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: preserve.go
Description: Preserve policy commands. Fields on the preserve list keep their original
values when generating in preserve mode. Changes are written back to the config file.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/spf13/cobra"
)

// ListPreserved prints the preserved field names
func ListPreserved(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	fields := s.ctx.Preserved()
	fmt.Fprintln(out, "Fields that preserve original values:")
	for _, f := range fields {
		fmt.Fprintf(out, "  - %s\n", f)
	}
	fmt.Fprintf(out, "\n%d fields\n", len(fields))
	return nil
}

// AddPreserved adds fields to the preserve list
func AddPreserved(cmd *cobra.Command, args []string) error {
	return editPreserved(cmd, args, "add")
}

// RemovePreserved removes fields from the preserve list
func RemovePreserved(cmd *cobra.Command, args []string) error {
	return editPreserved(cmd, args, "remove")
}

func editPreserved(cmd *cobra.Command, fields []string, action string) error {
	out := cmd.OutOrStdout()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	for _, field := range fields {
		var status policy.Status
		if action == "add" {
			status, err = s.ctx.AddPreserve(field)
		} else {
			status, err = s.ctx.RemovePreserve(field)
		}
		if err != nil {
			return err
		}

		switch status {
		case policy.StatusAdded:
			fmt.Fprintf(out, "Added '%s' to preserve list\n", field)
		case policy.StatusRemoved:
			fmt.Fprintf(out, "Removed '%s' from preserve list\n", field)
		case policy.StatusAlreadyPresent:
			fmt.Fprintf(out, "'%s' is already preserved\n", field)
		case policy.StatusNotFound:
			fmt.Fprintf(out, "'%s' was not in preserve list\n", field)
		}
	}
	return nil
}
