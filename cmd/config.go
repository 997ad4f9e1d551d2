package cmd

import (
	"os"

	"github.com/aitests/aitests/config"
	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// configCmd groups the API key subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the AI provider API key",
	Long: `The 'config' subcommands store, show and delete the provider API key in the project .env file
as ` + config.APIKeyEnv + `. The key is resolved from --api_key, then the environment, then .env.`,
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key <apiKey>",
	Short: "Store the API key in the project .env file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := findProjectRoot(cmd.Context())
		if err != nil {
			return err
		}
		if err := config.SetAPIKey(rootDir, args[0]); err != nil {
			return err
		}
		logger.Success("API key saved to %s", config.EnvFilePath(rootDir))

		if added, err := utils.AddToGitignore(afero.NewOsFs(), rootDir, ".env"); err != nil {
			logger.Warn("Could not update .gitignore: %v", err)
		} else if added {
			logger.Info("Added .env to .gitignore")
		}
		return nil
	},
}

var showKeyCmd = &cobra.Command{
	Use:   "show-key",
	Short: "Show whether an API key is set",
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := findProjectRoot(cmd.Context())
		if err != nil {
			return err
		}
		key, err := config.GetAPIKey(rootDir)
		if err != nil {
			return err
		}
		if key == "" {
			logger.Warn("No API key set. Use `aitests config set-key <apiKey>` to set it.")
			return nil
		}

		if reveal, _ := cmd.Flags().GetBool("reveal"); reveal {
			logger.Success("API key is set: %s", config.MaskAPIKey(key))
			return nil
		}
		logger.Success("API key is set.")
		return nil
	},
}

var deleteKeyCmd = &cobra.Command{
	Use:   "delete-key",
	Short: "Delete the API key from the project .env file",
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, err := findProjectRoot(cmd.Context())
		if err != nil {
			return err
		}
		deleted, err := config.DeleteAPIKey(rootDir)
		if err != nil {
			return err
		}
		if !deleted {
			logger.Warn("No API key stored in %s", config.EnvFilePath(rootDir))
			return nil
		}
		logger.Success("API key deleted.")
		if os.Getenv(config.APIKeyEnv) != "" {
			logger.Warn("%s is still set in the environment", config.APIKeyEnv)
		}
		return nil
	},
}

func init() {
	showKeyCmd.Flags().Bool("reveal", false, "Print the key with all but its first and last four characters masked.")

	configCmd.AddCommand(setKeyCmd, showKeyCmd, deleteKeyCmd)
	rootCmd.AddCommand(configCmd)
}
