package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and show the dashboard for your role",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerPassword string

var registerCmd = &cobra.Command{
	Use:   "register <email> <role> <full name>",
	Short: "Create an account",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := contextOrBackground(cmd.Context())
	password, err := resolvePassword(cmd, loginPassword)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx, cmd.OutOrStdout(), domain.HashLogin)
	if err != nil {
		return err
	}
	defer rt.Close()

	err = rt.oneShot(ctx, func(ctx context.Context) error {
		return rt.app.Session.Login(ctx, args[0], password)
	})
	if err != nil {
		return err
	}
	if rt.lastFailed() {
		return failedSilently()
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := contextOrBackground(cmd.Context())
	password, err := resolvePassword(cmd, registerPassword)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx, cmd.OutOrStdout(), domain.HashRegister)
	if err != nil {
		return err
	}
	defer rt.Close()

	req := dto.RegisterRequest{
		Email:    args[0],
		Role:     args[1],
		FullName: strings.Join(args[2:], " "),
		Password: password,
	}
	err = rt.oneShot(ctx, func(ctx context.Context) error {
		return rt.app.Session.Register(ctx, req)
	})
	if err != nil {
		return err
	}
	if rt.lastFailed() {
		return failedSilently()
	}
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := contextOrBackground(cmd.Context())
	rt, err := openRuntime(ctx, cmd.OutOrStdout(), domain.HashNone)
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.oneShot(ctx, rt.app.Session.Logout)
}
