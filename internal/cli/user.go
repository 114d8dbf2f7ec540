package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Show the local user",
	RunE:  runUser,
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the local user",
	RunE:  runUser,
}

var userRenameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Change the display name",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRename,
}

var userCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Sign in as a new user",
	Long: `Create starts a new user with its own, initially empty, journal. Entries
of the previous user stay stored but are no longer listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserCreate,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every entry and reset the local user",
	Long: `Clear removes all stored journal entries and the local user. The next
command starts over with the default user.

Examples:
  mindcare clear --yes`,
	RunE: runClear,
}

var clearYes bool

func init() {
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userRenameCmd)
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deleting all data")
}

func runUser(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.svc.User(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:    %s\n", u.Name)
	fmt.Fprintf(out, "ID:      %s\n", u.ID)
	fmt.Fprintf(out, "Since:   %s\n", u.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(out, "Avatar:  %s\n", u.Picture)
	return nil
}

func runUserRename(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.svc.RenameUser(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("renaming user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed to %s\n", u.Name)
	return nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.svc.SignIn(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s (%s)\n", u.Name, u.ID)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return fmt.Errorf("refusing to delete all data without --yes")
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ All entries deleted")
	return nil
}
