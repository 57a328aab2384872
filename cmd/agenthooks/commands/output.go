package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// outputJSON writes v to the command's stdout as indented JSON.
func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
