package main

import (
	"github.com/spf13/cobra"

	"github.com/franz/playtest-history/internal/report"
	"github.com/franz/playtest-history/internal/search"
	"github.com/franz/playtest-history/internal/util"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Count logged actions and break them down",
	Long: `Count the actions matching every given filter, optionally broken down
by one or more dimensions.

Version and type match exactly. Primary, secondary and tag match any
part of the name, ignoring case.

Examples:
  pth search --type Salvo --secondary "tank 2" --by version
  pth search --version v1.3 --by type,tag`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("version", "", "exact game version")
	searchCmd.Flags().String("type", "", "action type (unique prefixes accepted)")
	searchCmd.Flags().String("primary", "", "primary participant contains")
	searchCmd.Flags().String("secondary", "", "any secondary participant contains")
	searchCmd.Flags().String("tag", "", "any tag contains")
	searchCmd.Flags().String("by", "", "breakdowns, comma-separated: version,type,primary,secondary,tag")
}

func runSearch(cmd *cobra.Command, args []string) error {
	var f search.Filters
	f.Version, _ = cmd.Flags().GetString("version")
	f.Type, _ = cmd.Flags().GetString("type")
	f.Primary, _ = cmd.Flags().GetString("primary")
	f.Secondary, _ = cmd.Flags().GetString("secondary")
	f.Tag, _ = cmd.Flags().GetString("tag")
	by, _ := cmd.Flags().GetString("by")

	var dims []search.Dimension
	for _, name := range util.SplitList(by) {
		d, err := search.ParseDimension(name)
		if err != nil {
			return err
		}
		dims = append(dims, d)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if f.Type != "" {
		resolved, err := db.Catalog().Resolve(f.Type)
		if err != nil {
			// Logged types outside the current catalog are still searchable
			util.WarnLog("%v; searching for it verbatim", err)
		} else {
			f.Type = resolved
		}
	}

	res, err := search.New(db.DB()).Search(f, dims...)
	if err != nil {
		return err
	}

	return report.WriteSearchResult(cmd.OutOrStdout(), res, dims)
}
