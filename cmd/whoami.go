package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietdv277/keyrot/internal/aws"
	"github.com/vietdv277/keyrot/internal/ui"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the AWS identity whose keys are rotated",
	Long: `Display the caller identity used for the IAM calls.

Equivalent to 'aws sts get-caller-identity'.

Examples:
  keyrot whoami
  keyrot whoami --auth-profile admin`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := newAWSClient(ctx)
	if err != nil {
		return err
	}

	identity, err := aws.GetCallerIdentity(ctx, client.STS)
	if err != nil {
		return err
	}

	profile := client.Profile()
	if profile == "" {
		profile = "(default chain)"
	}

	fmt.Println()
	fmt.Println(ui.HeaderStyle.Render("AWS Identity"))
	fmt.Println(ui.MutedStyle.Render("───────────────────────────────"))
	fmt.Printf("  Profile: %s\n", ui.NameStyle.Render(profile))
	fmt.Println()
	fmt.Printf("  Account: %s\n", identity.Account)
	fmt.Printf("  UserID:  %s\n", identity.UserID)
	fmt.Printf("  ARN:     %s\n", ui.MutedStyle.Render(identity.Arn))

	return nil
}
