package main

import (
	"io"
	"strings"
	"testing"
)

func TestRootCommand_RejectsBadArguments(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown command", args: []string{"sideways"}, wantErr: "unknown command"},
		{name: "force needs a number", args: []string{"force", "latest"}, wantErr: "invalid version"},
		{name: "force needs exactly one version", args: []string{"force"}, wantErr: "accepts 1 arg"},
		{name: "down needs a positive step count", args: []string{"down", "--steps", "0"}, wantErr: "--steps must be at least 1"},
		{name: "up takes no arguments", args: []string{"up", "extra"}, wantErr: "unknown command"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := newRootCommand()
			root.SetArgs(tc.args)
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)

			err := root.Execute()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Execute(%v) error = %v, want containing %q", tc.args, err, tc.wantErr)
			}
		})
	}
}

func TestRootCommand_Flags(t *testing.T) {
	t.Setenv("MIGRATIONS_PATH", "file:///srv/migrations")

	root := newRootCommand()

	if got := root.PersistentFlags().Lookup("path").DefValue; got != "file:///srv/migrations" {
		t.Errorf("--path default = %q, want MIGRATIONS_PATH value", got)
	}
	for _, name := range []string{"up", "down", "version", "force"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
