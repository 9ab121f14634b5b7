package cli

import (
	"testing"

	"github.com/careermate/careermate/internal/config"
)

func TestCLI_Root(t *testing.T) {
	if len(RootCmd.Commands()) < 4 {
		t.Errorf("Expected at least 4 subcommands (chat, ask, sessions, config), got %d", len(RootCmd.Commands()))
	}
}

func TestCLI_Config(t *testing.T) {
	found := false
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "config" {
			found = true
			if len(cmd.Commands()) < 2 {
				t.Errorf("Expected show and init subcommands for config, got %d", len(cmd.Commands()))
			}
		}
	}
	if !found {
		t.Error("config command not found")
	}
}

func TestNewProvider(t *testing.T) {
	t.Run("stub", func(t *testing.T) {
		cfg := config.Default()
		cfg.Provider = "stub"
		p, err := newProvider(cfg)
		if err != nil {
			t.Fatalf("newProvider failed: %v", err)
		}
		if p.Name() != "stub" {
			t.Errorf("provider name = %q", p.Name())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Default()
		cfg.Provider = "mystery"
		if _, err := newProvider(cfg); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("openai without key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		cfg := config.Default()
		cfg.Provider = "openai"
		if _, err := newProvider(cfg); err == nil {
			t.Error("expected error when the API key env is unset")
		}
	})
}

func TestCurrentUserID(t *testing.T) {
	prev := userID
	defer func() { userID = prev }()

	userID = "explicit"
	if got := currentUserID(); got != "explicit" {
		t.Errorf("currentUserID = %q, want the --user value", got)
	}

	userID = ""
	t.Setenv("USER", "login-name")
	if got := currentUserID(); got != "login-name" {
		t.Errorf("currentUserID = %q, want the login name", got)
	}

	t.Setenv("USER", "")
	if got := currentUserID(); got != "local" {
		t.Errorf("currentUserID = %q, want local", got)
	}
}
