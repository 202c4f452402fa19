package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mellow/internal/client"
	"mellow/internal/session"
)

func newSignupCmd(a *app) *cobra.Command {
	var req client.SignupRequest
	var image string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := promptPassword(cmd, req.Password)
			if err != nil {
				return err
			}
			req.Password = pw
			if image != "" {
				req.ProfileImage = &image
			}

			s, err := a.flow.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are logged in as %s.\n", s.User.Name, s.User.EmailOrPhone)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.EmailOrPhone, "identifier", "", "email or 10 digit phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&image, "image", "", "profile image URI")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("identifier")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var identifier, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with your email or phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := promptPassword(cmd, password)
			if err != nil {
				return err
			}
			s, err := a.flow.Login(cmd.Context(), identifier, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (@%s).\n", s.User.Name, s.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "email or phone number")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("identifier")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.flow.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := a.sessions.Current()
			if !ok {
				return session.ErrNoSession
			}
			user := s.User
			if remote {
				u, err := a.flow.Whoami(cmd.Context())
				if err != nil {
					return err
				}
				user = *u
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(user.Name))
			fmt.Fprintf(out, "username: %s\n", user.Username)
			fmt.Fprintf(out, "contact:  %s\n", user.EmailOrPhone)
			image := "(none)"
			if user.ProfileImage != nil {
				image = *user.ProfileImage
			}
			fmt.Fprintf(out, "avatar:   %s\n", image)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the account from the server")
	return cmd
}
