package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-image <uri>",
		Short: `Replace your profile image ("" clears it)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.flow.UpdateProfileImage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile image updated successfully")
			return nil
		},
	})
	return cmd
}
