package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/franz/playtest-history/internal/util"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Inspect tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tag with the number of actions carrying it",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd)
}

func runTagList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	tags, err := db.ListTags()
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		util.InfoLog("No tags yet")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tACTIONS")
	for _, t := range tags {
		fmt.Fprintf(tw, "%s\t%d\n", t.Name, t.Uses)
	}
	return tw.Flush()
}
