package main

import (
	"errors"

	"github.com/spf13/cobra"
	"google.golang.org/api/iterator"

	"tildes-reader/pkg/tildes"
)

var (
	topicsLimit  int
	topicsAfter  string
	topicsFormat string
)

func init() {
	topicsCmd.Flags().IntVarP(&topicsLimit, "limit", "n", 25, "Stop after this many topics (0 walks the whole listing).")
	topicsCmd.Flags().StringVar(&topicsAfter, "after", "", "Start after this topic ID.")
	topicsCmd.Flags().StringVarP(&topicsFormat, "format", "f", formatTable, "Output format: table, json or pretty.")
	rootCmd.AddCommand(topicsCmd)
}

var topicsCmd = &cobra.Command{
	Use:   "topics [group]",
	Short: "Walks a group's topic listing, or the front page when no group is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(topicsFormat, formatTable, formatJSON, formatPretty); err != nil {
			return err
		}
		if topicsLimit < 0 {
			return errors.New("limit must not be negative")
		}

		group := ""
		if len(args) == 1 {
			group = args[0]
		}

		ctx := cmd.Context()
		w, err := scr.WalkAfter(ctx, group, topicsAfter)
		if err != nil {
			return err
		}

		var topics []*tildes.Topic
		for topicsLimit == 0 || len(topics) < topicsLimit {
			topic, err := w.Next(ctx)
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				return err
			}
			topics = append(topics, topic)
		}

		logger.Debug("Listing walk finished", "group", group, "topics", len(topics), "cursor", w.Cursor())
		return renderTopics(cmd.OutOrStdout(), topics, topicsFormat)
	},
}
