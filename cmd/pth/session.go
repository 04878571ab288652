package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/playtest-history/internal/report"
	"github.com/franz/playtest-history/internal/store"
	"github.com/franz/playtest-history/internal/util"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create, list, inspect and remove playtest sessions",
}

var sessionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Start a new session between two players",
	Long: `Start a new session between two players.

Players are created on first use and matched by exact name afterwards.
The date defaults to today.`,
	Args: cobra.NoArgs,
	RunE: runSessionAdd,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's action log with turn numbers",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionEditCmd = &cobra.Command{
	Use:   "edit <session-id>",
	Short: "Change a session's version or notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionEdit,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and everything logged in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionPlayersCmd = &cobra.Command{
	Use:   "players <session-id>",
	Short: "List the players of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionPlayers,
}

var sessionVersionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the game versions that have sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionVersions,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionAddCmd, sessionListCmd, sessionShowCmd, sessionEditCmd,
		sessionDeleteCmd, sessionPlayersCmd, sessionVersionsCmd)

	sessionAddCmd.Flags().String("player1", "", "first player (required)")
	sessionAddCmd.Flags().String("player2", "", "second player (required)")
	sessionAddCmd.Flags().String("version", "", "game version under test")
	sessionAddCmd.Flags().String("date", "", "session date as YYYY-MM-DD (default today)")
	sessionAddCmd.Flags().String("notes", "", "free-form notes")
	sessionAddCmd.MarkFlagRequired("player1")
	sessionAddCmd.MarkFlagRequired("player2")

	sessionListCmd.Flags().String("version", "", "only sessions of this version")

	sessionEditCmd.Flags().String("version", "", "new version")
	sessionEditCmd.Flags().String("notes", "", "new notes")

	sessionDeleteCmd.Flags().Bool("yes", false, "confirm the deletion")
}

// parseID reads a positive integer id argument
func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.Validationf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

func runSessionAdd(cmd *cobra.Command, args []string) error {
	player1, _ := cmd.Flags().GetString("player1")
	player2, _ := cmd.Flags().GetString("player2")
	version, _ := cmd.Flags().GetString("version")
	date, _ := cmd.Flags().GetString("date")
	notes, _ := cmd.Flags().GetString("notes")

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	id, err := db.AddSession(store.NewSession{
		Version: version,
		Player1: player1,
		Player2: player2,
		Date:    date,
		Notes:   notes,
	})
	if err != nil {
		logger.LogError(report.EventSessionAdded, 0, err)
		return fmt.Errorf("failed to add session: %w", err)
	}

	sess, err := db.GetSession(id)
	if err != nil {
		return err
	}
	logger.LogSessionAdded(id, sess.Version, sess.Players)

	util.SuccessLog("Created session %d (%s, %s)", id, sess.Date, strings.Join(sess.Players, " vs "))
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	version, _ := cmd.Flags().GetString("version")

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := db.ListSessions()
	if err != nil {
		return err
	}

	if version != "" {
		filtered := sessions[:0]
		for _, s := range sessions {
			if s.Version == util.NormalizeName(version) {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}

	if len(sessions) == 0 {
		util.InfoLog("No sessions found. Run 'pth session add' to start one.")
		return nil
	}

	notesWidth := 0
	if width := util.GetTerminalWidth(); width > 0 {
		notesWidth = max(width-70, 20)
	}
	return writeSessionTable(cmd.OutOrStdout(), sessions, time.Now(), notesWidth)
}

// writeSessionTable renders sessions with the age of each relative to now.
// Notes are cut to notesWidth runes unless it is 0.
func writeSessionTable(w io.Writer, sessions []*store.Session, now time.Time, notesWidth int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tWHEN\tVERSION\tPLAYERS\tNOTES")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Date, sessionAge(s.Date, now), s.Version, strings.Join(s.Players, " vs "), util.Truncate(firstLine(s.Notes), notesWidth))
	}
	return tw.Flush()
}

// sessionAge renders a YYYY-MM-DD date relative to now, e.g. "3 days ago"
func sessionAge(date string, now time.Time) string {
	t, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return "-"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !t.Before(today) {
		return "today"
	}
	return humanize.RelTime(t, today, "ago", "from now")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	id, err := parseID("session", args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := db.GetSession(id)
	if err != nil {
		return err
	}
	acts, err := db.ActionsForSession(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.WriteSessionLog(out, report.BuildSessionLog(sess, acts, db.Catalog())); err != nil {
		return err
	}

	if next := suggestPlayer(db.Catalog(), sess, acts); next != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderMuted("Next player: "+next))
	}
	return nil
}

func runSessionEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID("session", args[0])
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("version") && !cmd.Flags().Changed("notes") {
		return util.Validationf("nothing to change (use --version or --notes)")
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logger := openEventLogger()
	defer logger.Close()

	sess, err := db.GetSession(id)
	if err != nil {
		return err
	}

	version, notes := sess.Version, sess.Notes
	if cmd.Flags().Changed("version") {
		version, _ = cmd.Flags().GetString("version")
	}
	if cmd.Flags().Changed("notes") {
		notes, _ = cmd.Flags().GetString("notes")
	}

	if err := db.UpdateSession(id, version, notes); err != nil {
		logger.LogError(report.EventSessionUpdated, id, err)
		return fmt.Errorf("failed to update session: %w", err)
	}
	logger.LogSessionUpdated(id, util.NormalizeName(version))

	util.SuccessLog("Updated session %d", id)
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID("session", args[0])
	if err != nil {
		return err
	}
	confirmed, _ := cmd.Flags().GetBool("yes")

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	sess, err := db.GetSession(id)
	if err != nil {
		return err
	}
	acts, err := db.ActionsForSession(id)
	if err != nil {
		return err
	}

	if !confirmed {
		util.WarnLog("Session %d (%s, %s) has %d actions. Re-run with --yes to delete it.",
			id, sess.Date, strings.Join(sess.Players, " vs "), len(acts))
		return nil
	}

	logger := openEventLogger()
	defer logger.Close()

	if err := db.DeleteSession(id); err != nil {
		logger.LogError(report.EventSessionDeleted, id, err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logger.LogSessionDeleted(id, len(acts))

	util.SuccessLog("Deleted session %d and %d actions", id, len(acts))
	return nil
}

func runSessionPlayers(cmd *cobra.Command, args []string) error {
	id, err := parseID("session", args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	players, err := db.GetSessionPlayers(id)
	if err != nil {
		return err
	}

	for _, p := range players {
		fmt.Fprintln(cmd.OutOrStdout(), p.Name)
	}
	return nil
}

func runSessionVersions(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	versions, err := db.Versions()
	if err != nil {
		return err
	}

	for _, v := range versions {
		fmt.Fprintln(cmd.OutOrStdout(), versionOrPlaceholder(v))
	}
	return nil
}

func versionOrPlaceholder(v string) string {
	if v == "" {
		return "(no version)"
	}
	return v
}
