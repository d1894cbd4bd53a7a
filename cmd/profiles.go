package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietdv277/keyrot/internal/aws"
	"github.com/vietdv277/keyrot/internal/credstore"
	"github.com/vietdv277/keyrot/internal/rotate"
	"github.com/vietdv277/keyrot/internal/ui"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List profiles whose access key can be rotated",
	Long: `List the local profiles whose access key belongs to the authenticated IAM user,
with the key creation date and age.

Examples:
  keyrot profiles
  keyrot profiles --auth-profile admin`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store := credstore.New(credentialsPath())
	names, err := store.ListProfileNames()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(names) == 0 {
		fmt.Println("No AWS profiles found")
		fmt.Printf("Create profiles in %s\n", store.Path())
		return nil
	}

	client, err := newAWSClient(ctx)
	if err != nil {
		return err
	}

	resolver := rotate.NewResolver(aws.NewKeyGateway(client.IAM), aws.NewProfileLoader(store.Path()), log)
	profiles, err := spinningResolver{resolver}.Resolve(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to list access keys: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Println("No profile uses an access key of this IAM user")
		return nil
	}

	ui.PrintProfileTable(os.Stdout, profiles, time.Now())
	return nil
}
