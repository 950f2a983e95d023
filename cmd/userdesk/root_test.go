package main

import "testing"

func TestRootCommand_RegistersCommands(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"serve"}, {"migrate"}, {"login"}, {"users", "list"}} {
		cmd, _, err := rootCmd.Find(args)
		if err != nil || cmd == nil || cmd.Name() != args[len(args)-1] {
			t.Fatalf("%v command not registered: cmd=%v err=%v", args, cmd, err)
		}
	}
}

func TestCommandUsesStructuredLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "serve", args: []string{"serve"}, want: true},
		{name: "migrate", args: []string{"migrate"}, want: true},
		{name: "login", args: []string{"login"}, want: false},
		{name: "users list", args: []string{"users", "list"}, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd, _, err := rootCmd.Find(tc.args)
			if err != nil {
				t.Fatalf("Find(%v) error = %v", tc.args, err)
			}
			if cmd == nil {
				t.Fatalf("Find(%v) returned nil command", tc.args)
			}

			if got := commandUsesStructuredLogging(cmd); got != tc.want {
				t.Fatalf("commandUsesStructuredLogging(%q) = %v, want %v", cmd.CommandPath(), got, tc.want)
			}
		})
	}
}
