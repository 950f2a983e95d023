package main

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/open-sspm/userdesk/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const cliRequestTimeout = 15 * time.Second

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange directory credentials for a token and print it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(loginEmail)
		if email == "" {
			return errors.New("--email is required")
		}

		password, err := resolveLoginPassword(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cliRequestTimeout)
		defer cancel()

		client, err := newDirectoryClient(ctx, cfg)
		if err != nil {
			return err
		}
		token, err := client.Login(ctx, email, password)
		if err != nil {
			return directoryExitError(err)
		}

		cmd.Println(token)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")
}

func resolveLoginPassword(cmd *cobra.Command) (string, error) {
	if loginPasswordStdin {
		raw, err := readStdinLine()
		if err != nil {
			return "", err
		}
		password := strings.TrimRight(raw, "\r\n")
		if password == "" {
			return "", errors.New("password is empty")
		}
		return password, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no password provided (use --password-stdin or run in a terminal)")
	}

	cmd.Print("Password: ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", err
	}
	if len(pass) == 0 {
		return "", errors.New("password is empty")
	}
	return string(pass), nil
}

func readStdinLine() (string, error) {
	in, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if in.Mode()&os.ModeCharDevice != 0 {
		return "", errors.New("stdin is a terminal; omit --password-stdin to be prompted")
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return scanner.Text(), nil
}
