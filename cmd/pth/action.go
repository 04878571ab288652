package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/franz/playtest-history/internal/actions"
	"github.com/franz/playtest-history/internal/report"
	"github.com/franz/playtest-history/internal/store"
	"github.com/franz/playtest-history/internal/turn"
	"github.com/franz/playtest-history/internal/util"
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Log, correct and remove actions",
}

var actionAddCmd = &cobra.Command{
	Use:   "add <session-id> <type>",
	Short: "Append an action to a session's log",
	Long: `Append an action to the end of a session's log.

The type may be abbreviated to any unique prefix ("ove" for OverWatch).
Secondary participants and tags are comma-separated.

Without --player the acting player is suggested from the log: after a
small action play passes to the other player, otherwise the last player
keeps acting.`,
	Args: cobra.ExactArgs(2),
	RunE: runActionAdd,
}

var actionEditCmd = &cobra.Command{
	Use:   "edit <action-id>",
	Short: "Change an action's type, notes, participants or tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionEdit,
}

var actionDeleteCmd = &cobra.Command{
	Use:   "delete <action-id>",
	Short: "Remove an action from its session's log",
	Args:  cobra.ExactArgs(1),
	RunE:  runActionDelete,
}

var actionTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the action types that can be logged",
	Args:  cobra.NoArgs,
	RunE:  runActionTypes,
}

func init() {
	rootCmd.AddCommand(actionCmd)
	actionCmd.AddCommand(actionAddCmd, actionEditCmd, actionDeleteCmd, actionTypesCmd)

	actionAddCmd.Flags().StringP("player", "p", "", "acting player (default: suggested from the log)")
	for _, c := range []*cobra.Command{actionAddCmd, actionEditCmd} {
		c.Flags().String("primary", "", "primary participant")
		c.Flags().StringP("secondary", "s", "", "secondary participants, comma-separated")
		c.Flags().StringP("tags", "t", "", "tags, comma-separated")
		c.Flags().StringP("notes", "n", "", "free-form notes")
	}
	actionEditCmd.Flags().String("type", "", "new action type")
}

// suggestPlayer returns who acts next: the first player for an empty log,
// the other player after a small action, otherwise the last player again
func suggestPlayer(catalog *actions.Catalog, sess *store.Session, acts []*store.Action) string {
	if len(sess.Players) == 0 {
		return ""
	}
	if len(acts) == 0 {
		return sess.Players[0]
	}

	last := acts[len(acts)-1]
	kind, _ := catalog.Lookup(last.Type)
	return turn.NextPlayer(sess.Players, last.Player, kind.Size == actions.Small)
}

func runActionAdd(cmd *cobra.Command, args []string) error {
	sessionID, err := parseID("session", args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	actionType, err := db.Catalog().Resolve(args[1])
	if err != nil {
		logger.LogError(report.EventActionAdded, sessionID, err)
		return err
	}

	sess, err := db.GetSession(sessionID)
	if err != nil {
		return err
	}

	player, _ := cmd.Flags().GetString("player")
	if player == "" {
		acts, err := db.ActionsForSession(sessionID)
		if err != nil {
			return err
		}
		player = suggestPlayer(db.Catalog(), sess, acts)
		util.DebugLog("Acting player: %s (suggested)", player)
	}

	primary, _ := cmd.Flags().GetString("primary")
	secondary, _ := cmd.Flags().GetString("secondary")
	tags, _ := cmd.Flags().GetString("tags")
	notes, _ := cmd.Flags().GetString("notes")

	id, err := db.AddAction(store.NewAction{
		SessionID: sessionID,
		Player:    player,
		Type:      actionType,
		Notes:     notes,
		Primary:   primary,
		Secondary: util.SplitList(secondary),
		Tags:      util.SplitList(tags),
	})
	if err != nil {
		logger.LogError(report.EventActionAdded, sessionID, err)
		return fmt.Errorf("failed to add action: %w", err)
	}
	logger.LogActionAdded(sessionID, id, player, actionType)

	util.SuccessLog("Logged %s by %s (action %d)", actionType, player, id)

	acts, err := db.ActionsForSession(sessionID)
	if err == nil {
		if next := suggestPlayer(db.Catalog(), sess, acts); next != "" {
			util.InfoLog("Next player: %s", next)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runActionEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID("action", args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	current, err := db.GetAction(id)
	if err != nil {
		return err
	}

	edit := store.ActionEdit{
		Type:      current.Type,
		Notes:     current.Notes,
		Primary:   current.Primary,
		Secondary: current.Secondary,
		Tags:      current.Tags,
	}

	flags := cmd.Flags()
	if flags.Changed("type") {
		raw, _ := flags.GetString("type")
		if edit.Type, err = db.Catalog().Resolve(raw); err != nil {
			return err
		}
	}
	if flags.Changed("notes") {
		edit.Notes, _ = flags.GetString("notes")
	}
	if flags.Changed("primary") {
		edit.Primary, _ = flags.GetString("primary")
	}
	if flags.Changed("secondary") {
		raw, _ := flags.GetString("secondary")
		edit.Secondary = util.SplitList(raw)
	}
	if flags.Changed("tags") {
		raw, _ := flags.GetString("tags")
		edit.Tags = util.SplitList(raw)
	}

	if err := db.UpdateAction(id, edit); err != nil {
		logger.LogError(report.EventActionUpdated, current.SessionID, err)
		return fmt.Errorf("failed to update action: %w", err)
	}
	logger.LogActionUpdated(id, edit.Type)

	util.SuccessLog("Updated action %d", id)
	return nil
}

func runActionDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID("action", args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	if err := db.DeleteAction(id); err != nil {
		logger.LogError(report.EventActionDeleted, 0, err)
		return fmt.Errorf("failed to delete action: %w", err)
	}
	logger.LogActionDeleted(id)

	util.SuccessLog("Deleted action %d", id)
	return nil
}

func runActionTypes(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tSIZE\tCATEGORY\tUPPERCASE TARGETS")
	for _, k := range catalog.Kinds() {
		upper := ""
		if k.UppercaseSecondary {
			upper = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k.Name, k.Size, k.Category(), upper)
	}
	return tw.Flush()
}
