package main

import (
	"github.com/spf13/cobra"
)

var postFormat string

func init() {
	postCmd.Flags().StringVarP(&postFormat, "format", "f", formatTree, "Output format: tree, json or pretty.")
	rootCmd.AddCommand(postCmd)
}

var postCmd = &cobra.Command{
	Use:   "post <group> <id>",
	Short: "Prints a topic and its full comment tree.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(postFormat, formatTree, formatJSON, formatPretty); err != nil {
			return err
		}

		post, err := scr.Post(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return renderPost(cmd.OutOrStdout(), post, postFormat)
	},
}
