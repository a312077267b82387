package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"parlmonitor/internal/bootstrap"
	"parlmonitor/internal/errs"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and their email alert settings",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a user",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")

		user, err := app.Tracking.RegisterUser(cmd.Context(), email, name)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "user %d created: %s (alert types %s)\n", user.ID, user.Email, user.AlertTypes); err != nil {
			return errs.Wrap(err, "write user output")
		}
		return nil
	}),
}

var userNotifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Enable or disable email alerts and pick the alert types mailed",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userID, err := userFlag(cmd)
		if err != nil {
			return err
		}
		enabled, _ := cmd.Flags().GetBool("enable")
		types, _ := cmd.Flags().GetStringSlice("types")

		user, err := app.Tracking.UpdateNotifications(cmd.Context(), userID, enabled, types)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "user %d email_alerts=%t types=%s\n", user.ID, user.EmailAlertsEnabled, user.AlertTypes); err != nil {
			return errs.Wrap(err, "write user output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userNotifyCmd)

	userAddCmd.Flags().String("email", "", "Email address")
	userAddCmd.Flags().String("name", "", "Display name")
	_ = userAddCmd.MarkFlagRequired("email")

	userNotifyCmd.Flags().Uint64("user", 0, "User id")
	userNotifyCmd.Flags().Bool("enable", true, "Send alert emails")
	userNotifyCmd.Flags().StringSlice("types", nil, "Alert types to mail (status_change,committee_scheduled,debate_scheduled,new_document,vote_result)")
}
