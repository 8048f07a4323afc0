package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "feeltrack" {
		t.Errorf("Use = %q, want %q", cmd.Use, "feeltrack")
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	tests := []struct {
		flagName  string
		shorthand string
		defValue  string
	}{
		{"config", "c", "config.yaml"},
		{"log-level", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("--%s shorthand = %q, want %q", tt.flagName, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"serve", "worker", "migrate", "sweep", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%q): %v", name, err)
			}
			if sub.Name() != name {
				t.Errorf("Find(%q) = %q", name, sub.Name())
			}
		})
	}
}

func TestServeCmd_SchedulerFlag(t *testing.T) {
	cmd := NewServeCmd(&globalFlags{})

	flag := cmd.Flags().Lookup("scheduler")
	if flag == nil {
		t.Fatal("--scheduler flag not found")
	}
	if flag.DefValue != "true" {
		t.Errorf("--scheduler default = %q, want %q", flag.DefValue, "true")
	}
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2024-01-01")
	defer SetVersion("dev", "none", "unknown")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := out.String()
	for _, want := range []string{"feeltrack 1.2.3", "abc123", "2024-01-01"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}

func TestGlobalFlags_LoadAppliesLogLevel(t *testing.T) {
	t.Setenv("DB_NAME", "feeltrack_test")

	flags := &globalFlags{configPath: t.TempDir() + "/missing.yaml", logLevel: "debug"}
	cfg, log, err := flags.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Server.LogLevel)
	}
	if log == nil {
		t.Error("logger should not be nil")
	}
}
