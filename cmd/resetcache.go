package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/aitests/aitests/constants/lipgloss"
	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/token_management"
	"github.com/aitests/aitests/utils"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Reset the token count cache for aitests",
	Long: `The 'reset-cache' command removes all cached token counts in the project '.cache/aitests' directory.
Use this command to clear a corrupted cache or after switching tokenizers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")

		rootDir, err := findProjectRoot(cmd.Context())
		if err != nil {
			return err
		}

		cacheManager, err := token_management.NewCacheManager(token_management.DefaultCacheDir(rootDir))
		if err != nil {
			return err
		}

		return handleResetCacheCommand(cacheManager, force, stats, bufio.NewReader(os.Stdin))
	},
}

func init() {
	// Define command-specific flags
	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")
	resetCacheCmd.Flags().BoolP("stats", "s", false, "Show cache statistics without resetting")

	// Add the reset-cache command to the root command
	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(cacheManager *token_management.CacheManager, force bool, showStats bool, reader *bufio.Reader) error {
	// Show cache statistics if requested
	if showStats {
		cacheStats, err := cacheManager.GetCacheStats()
		if err != nil {
			return fmt.Errorf("could not show statistics: %w", err)
		}

		fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
		if dir, ok := cacheStats["cache_dir"].(string); ok {
			fmt.Printf("  Cache Directory: %s\n", dir)
		}
		if files, ok := cacheStats["cache_files"].(int); ok {
			fmt.Printf("  Cached Counts: %d\n", files)
		}
		if size, ok := cacheStats["total_size"].(int64); ok {
			fmt.Printf("  Total Size: %.2f MB\n", float64(size)/(1024*1024))
		}
		if hitRate, ok := cacheStats["hit_rate"].(float64); ok {
			fmt.Printf("  Hit Rate: %.1f%%\n", hitRate)
		}

		// Only show stats, skip the actual reset
		return nil
	}

	// Confirm reset for full cache reset (if not forced)
	if !force {
		confirmed, err := utils.ConfirmPrompt("Are you sure you want to reset the token cache?", reader)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
			return nil
		}
	}

	spinnerInstance, _ := newSpinner().Start("Resetting token cache...")
	err := cacheManager.ClearCache()
	spinnerInstance.Stop()
	fmt.Print("\r")
	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	logger.Success("✓ Token cache has been successfully reset!")
	return nil
}
