package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/careermate/careermate/internal/ui"
	"github.com/careermate/careermate/internal/ui/tui"
)

var (
	configPath   string
	providerType string
	modelName    string
	userID       string
	verbose      bool
	jsonLogs     bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "careermate",
	Short: "Conversational career coach",
	Long: `CareerMate is a conversational assistant for career questions: it
classifies what you are asking for, remembers your skills and history across
restarts, and runs structured mock-interview sessions.`,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Run: func(cmd *cobra.Command, args []string) {
		runChat()
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAsk(strings.Join(args, " "))
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(chatCmd)
	RootCmd.AddCommand(askCmd)

	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (JSON or YAML)")
	RootCmd.PersistentFlags().StringVarP(&providerType, "provider", "p", "", "AI Provider (ollama, openai, gemini, stub)")
	RootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model name (default depends on provider)")
	RootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "Conversation identity (defaults to the OS login name)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
}

func runChat() {
	app := buildApp()
	defer app.Close()

	if err := app.Gateway.Probe(context.Background()); err != nil {
		app.Obs.Log().Warn().Str("provider", app.Gateway.ProviderName()).Err(err).
			Msg("provider health probe failed, replies may be canned")
	}

	model := tui.NewModel(currentUserID(), app.Dispatcher.Handle)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat session failed: %v\n", err)
		os.Exit(1)
	}
}

func runAsk(message string) {
	app := buildApp()
	defer app.Close()

	console := ui.Console{Out: os.Stdout}
	reply := app.Dispatcher.Handle(context.Background(), currentUserID(), message)
	console.Reply(reply.Text)
	if reply.Degraded {
		console.Notice("offline reply; the model was unreachable")
	}
}
