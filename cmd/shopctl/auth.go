package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/client/shopclient"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		email      string
		password   string
		rememberMe bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session tokens locally",
		Long: "Sign in with email and password. Only the returned tokens are stored; " +
			"when --password is omitted it is read from the first line of stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			user, tokens, err := a.api.Login(cmd.Context(), email, password, rememberMe)
			if err != nil {
				if shopclient.StatusOf(err) == http.StatusUnauthorized {
					return errors.New("invalid email or password")
				}
				return err
			}
			if err := a.session.Save(tokens); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&rememberMe, "remember-me", false, "request a long-lived refresh token")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// rotate first so the refresh token sent for revocation is live
			if _, err := a.session.AccessToken(cmd.Context()); err != nil && !errors.Is(err, shopclient.ErrNoSession) {
				a.log.Warn("Session refresh before logout failed", zap.Error(err))
			}
			tokens, err := a.session.Tokens()
			if errors.Is(err, shopclient.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.api.Logout(cmd.Context(), tokens.RefreshToken); err != nil {
				// the local session goes regardless
				a.log.Warn("Server-side logout failed", zap.Error(err))
			}
			if err := a.session.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
