package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/assessment-console/pkg/apperrors"
	"github.com/ekaya-inc/assessment-console/pkg/auth"
	"github.com/ekaya-inc/assessment-console/pkg/services"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the bearer token used for API requests",
		Long:  "Store the bearer token used for API requests. Without --token the token is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				read, err := readToken(cmd.InOrStdin())
				if err != nil {
					return err
				}
				token = read
			}

			// Opaque tokens are stored as is; only JWTs can be checked for expiry.
			if info, err := auth.Inspect(token); err == nil && info.Expired(time.Now()) {
				return fmt.Errorf("token expired at %s", info.ExpiresAt.Format(time.RFC3339))
			}

			if err := a.tokens.Save(token); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Token saved to %s\n", a.tokens.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token (read from stdin when empty)")
	return cmd
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no token given")
	}
	return line, nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored token's identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, savedAt, err := a.tokens.Load()
			if errors.Is(err, apperrors.ErrNoToken) {
				fmt.Fprintln(a.out, services.MsgNotSignedIn)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Token file: %s\n", a.tokens.Path())
			if !savedAt.IsZero() {
				fmt.Fprintf(a.out, "Saved:      %s\n", savedAt.Format(time.RFC3339))
			}

			info, err := auth.Inspect(token)
			if err != nil {
				fmt.Fprintln(a.out, "Token is opaque; no identity details.")
				return nil
			}
			printField(a.out, "Subject:    ", info.Subject)
			printField(a.out, "Email:      ", info.Email)
			printField(a.out, "Name:       ", info.Name)
			printField(a.out, "Issuer:     ", info.Issuer)
			if info.ExpiresAt != nil {
				state := ""
				if info.Expired(time.Now()) {
					state = " (expired)"
				}
				fmt.Fprintf(a.out, "Expires:    %s%s\n", info.ExpiresAt.Format(time.RFC3339), state)
			}
			return nil
		},
	}
}

func printField(w io.Writer, label, value string) {
	if value != "" {
		fmt.Fprintf(w, "%s%s\n", label, value)
	}
}
