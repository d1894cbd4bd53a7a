package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vietdv277/keyrot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change persistent defaults",
	Long: `Show or change the defaults stored in ~/.keyrot/config.yaml.

Flags and KEYROT_* environment variables take precedence over these values.

Examples:
  keyrot config show
  keyrot config set region eu-west-1
  keyrot config set output true`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value",
	Long: fmt.Sprintf(`Set one config value.

Keys: %s`, strings.Join(config.Keys(), ", ")),
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys(),
	RunE:      runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	fmt.Printf("# %s\n", configPath)
	fmt.Print(string(data))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := config.Set(configPath, args[0], args[1]); err != nil {
		return err
	}

	fmt.Printf("%s set to %s\n", args[0], args[1])
	fmt.Printf("Saved to: %s\n", configPath)
	return nil
}
