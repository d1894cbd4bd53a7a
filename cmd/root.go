package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vietdv277/keyrot/internal/aws"
	"github.com/vietdv277/keyrot/internal/config"
	"github.com/vietdv277/keyrot/internal/credstore"
	"github.com/vietdv277/keyrot/internal/rotate"
	"github.com/vietdv277/keyrot/internal/ui"
	"github.com/vietdv277/keyrot/pkg/types"
)

// Viper keys
const (
	keyCredentialsFile = "credentials_file"
	keyEnvFile         = "env_file"
	keyRegion          = "region"
	keyAuthProfile     = "auth_profile"
	keyOutput          = "output"
	keyDebug           = "debug"
)

var (
	// Global flags
	configPath string

	// Rotation flags
	multiProfile bool
	mirrorName   string
	dryRun       bool

	log = logrus.New()

	// pickProfiles runs the interactive picker
	pickProfiles = ui.SelectProfiles
)

var rootCmd = &cobra.Command{
	Use:   "keyrot",
	Short: "Rotate AWS IAM access keys of local profiles",
	Long: `keyrot creates a new IAM access key for a local AWS profile, writes it into
the shared credentials file and deletes the old key once the new one is in place.

Without flags only the [default] profile is rotated. With -p you pick up to two
profiles interactively.

Examples:
  keyrot                         # Rotate the default profile
  keyrot -p                      # Choose profiles interactively
  keyrot -e                      # Also update ./.env
  keyrot --env=app/.env -o       # Update app/.env and print the new key
  keyrot --mirror /ci/aws-key    # Also store the new key in SSM
  keyrot -p --dry-run            # Show what would be rotated`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRotate,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags (available to all subcommands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.GetConfigPath(), "config file")
	flags.String("credentials-file", "", "AWS shared credentials file (default $AWS_SHARED_CREDENTIALS_FILE or ~/.aws/credentials)")
	flags.String("region", "", "AWS region for API calls")
	flags.String("auth-profile", "", "profile used to authenticate IAM calls (default SDK credential chain)")
	flags.Bool("debug", false, "enable debug logging")

	// Rotation flags
	rootCmd.Flags().BoolP("output", "o", false, "print the new access keys")
	rootCmd.Flags().BoolVarP(&multiProfile, "profiles", "p", false, "choose profiles to rotate interactively")
	rootCmd.Flags().StringP("env", "e", "", "also update AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY in an env file (single profile only)")
	rootCmd.Flags().Lookup("env").NoOptDefVal = credstore.DefaultEnvPath
	rootCmd.Flags().StringVar(&mirrorName, "mirror", "", "also store the new key in an SSM parameter (/name) or Secrets Manager secret (single profile only)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the profiles that would be rotated and exit")

	// Bind flags to viper
	_ = viper.BindPFlag(keyCredentialsFile, flags.Lookup("credentials-file"))
	_ = viper.BindPFlag(keyRegion, flags.Lookup("region"))
	_ = viper.BindPFlag(keyAuthProfile, flags.Lookup("auth-profile"))
	_ = viper.BindPFlag(keyDebug, flags.Lookup("debug"))
	_ = viper.BindPFlag(keyOutput, rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag(keyEnvFile, rootCmd.Flags().Lookup("env"))
}

func initConfig() {
	// Read from environment variables
	viper.SetEnvPrefix("KEYROT")
	viper.AutomaticEnv()

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if viper.GetBool(keyDebug) {
		log.SetLevel(logrus.DebugLevel)
	}

	// Config file values sit below flags and environment
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.WithError(err).Warn("Ignoring config file")
		return
	}
	setDefault(keyCredentialsFile, cfg.CredentialsFile)
	setDefault(keyEnvFile, cfg.EnvFile)
	setDefault(keyRegion, cfg.Region)
	setDefault(keyAuthProfile, cfg.AuthProfile)
	if cfg.Output {
		viper.SetDefault(keyOutput, true)
	}
}

func setDefault(key, value string) {
	if value != "" {
		viper.SetDefault(key, value)
	}
}

// credentialsPath returns the credentials file to rotate
func credentialsPath() string {
	if path := viper.GetString(keyCredentialsFile); path != "" {
		return path
	}
	return credstore.DefaultCredentialsPath()
}

// newAWSClient builds the client that signs IAM, STS, SSM and Secrets Manager calls
func newAWSClient(ctx context.Context) (*aws.Client, error) {
	return aws.NewClient(ctx,
		aws.WithProfile(viper.GetString(keyAuthProfile)),
		aws.WithRegion(viper.GetString(keyRegion)),
		aws.WithCredentialsFile(viper.GetString(keyCredentialsFile)),
	)
}

func runRotate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := newAWSClient(ctx)
	if err != nil {
		return err
	}

	store := credstore.New(credentialsPath())
	keys := aws.NewKeyGateway(client.IAM)
	resolver := rotate.NewResolver(keys, aws.NewProfileLoader(store.Path()), log)

	opts := []rotate.RotatorOption{
		rotate.WithSelector(rotate.SelectorFunc(selectProfiles)),
	}
	if mirrorName != "" {
		opts = append(opts, rotate.WithSecretsProvider(aws.NewSecretsProvider(client.SSM, client.SecretsManager)))
	}

	rotator := rotate.NewRotator(store, keys, spinningResolver{resolver}, log, opts...)
	report, err := rotator.Run(ctx, rotate.Options{
		MultiProfile: multiProfile,
		EnvPath:      viper.GetString(keyEnvFile),
		MirrorName:   mirrorName,
		DryRun:       dryRun,
	})
	if err != nil {
		return err
	}

	ui.PrintRotationReport(os.Stdout, report, viper.GetBool(keyOutput))
	return nil
}

// selectProfiles shows the interactive picker
func selectProfiles(profiles []types.Profile) ([]types.Profile, error) {
	selected, err := pickProfiles(profiles, rotate.MaxProfiles)
	if errors.Is(err, ui.ErrCancelled) {
		return nil, rotate.ErrSelectionCancelled
	}
	return selected, err
}

// spinningResolver shows a spinner while profiles are resolved
type spinningResolver struct {
	resolver rotate.ProfileResolver
}

func (s spinningResolver) Resolve(ctx context.Context, names []string) ([]types.Profile, error) {
	var profiles []types.Profile
	err := ui.Spin("Looking up access keys...", func() error {
		var err error
		profiles, err = s.resolver.Resolve(ctx, names)
		return err
	})
	return profiles, err
}
