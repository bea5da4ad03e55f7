package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/policydesk/content"
)

var (
	slugDate string
	slugID   string
)

// slugCmd previews the slug an article title would receive.
var slugCmd = &cobra.Command{
	Use:   "slug <title>",
	Short: "Print the slug generated for a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := slugDate
		if date == "" {
			date = time.Now().Format(time.DateOnly)
		}
		id := slugID
		if id == "" {
			id = content.NewIDGenerator(nil).Generate()
		}
		fmt.Fprintln(cmd.OutOrStdout(), content.MakeSlug(args[0], date, id))
		return nil
	},
}

func init() {
	slugCmd.Flags().StringVar(&slugDate, "date", "", "publication date, YYYY-MM-DD (default today)")
	slugCmd.Flags().StringVar(&slugID, "id", "", "article id (default random)")
}
