package main

import (
	"github.com/spf13/cobra"

	"tildes-reader/scraper"
)

var groupsFormat string

func init() {
	groupsCmd.Flags().StringVarP(&groupsFormat, "format", "f", formatTable, "Output format: table, json or pretty.")
	rootCmd.AddCommand(groupsCmd)
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Prints the names of all groups.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(groupsFormat, formatTable, formatJSON, formatPretty); err != nil {
			return err
		}

		groups, err := scraper.NewLister(scr).Groups(cmd.Context())
		if err != nil {
			return err
		}
		return renderGroups(cmd.OutOrStdout(), groups, groupsFormat)
	},
}
