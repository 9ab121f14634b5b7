package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List interview sessions",
	Run: func(cmd *cobra.Command, args []string) {
		runSessions()
	},
}

var sessionsUser string

func init() {
	RootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().StringVar(&sessionsUser, "for", "", "Only show sessions for this user")
}

func runSessions() {
	app := buildApp()
	defer app.Close()

	sessions, err := app.Sessions.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list sessions: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tUSER\tROLE\tSTATE\tANSWERS\tUPDATED")
	shown := 0
	for _, s := range sessions {
		if sessionsUser != "" && s.UserID != sessionsUser {
			continue
		}
		id := s.SessionID
		if len(id) > 8 {
			id = id[:8]
		}
		role := s.TargetRole
		if role == "" {
			role = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			id, s.UserID, role, s.State, s.Answered(), s.UpdatedAt.Format("2006-01-02 15:04"))
		shown++
	}
	w.Flush()

	if shown == 0 {
		fmt.Println("(no sessions)")
		return
	}

	if app.TurnLog != nil && sessionsUser != "" {
		counts, err := app.TurnLog.CountByIntent(context.Background(), sessionsUser)
		if err == nil && len(counts) > 0 {
			fmt.Printf("\nclassified turns for %s:\n", sessionsUser)
			for label, n := range counts {
				fmt.Printf("  %s: %d\n", label, n)
			}
		}
	}
}
