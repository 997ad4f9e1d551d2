package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/aitests/aitests/code_analyzer"
	"github.com/aitests/aitests/config"
	"github.com/aitests/aitests/constants/lipgloss"
	"github.com/aitests/aitests/context_assembler"
	assembler_contracts "github.com/aitests/aitests/context_assembler/contracts"
	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/token_management"
	token_contracts "github.com/aitests/aitests/token_management/contracts"
	"github.com/aitests/aitests/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// RootDependencies holds everything a subcommand needs, built once per invocation.
type RootDependencies struct {
	Config          *config.Config
	Cwd             string
	Fs              afero.Fs
	Git             *utils.GitOperations
	TokenManagement token_contracts.ITokenManagement
	TokenCounter    token_contracts.ITokenCounter
	CacheManager    *token_management.CacheManager
	Assembler       assembler_contracts.IContextAssembler
}

var rootCmd = &cobra.Command{
	Use:   "aitests",
	Short: "Generate unit tests for your staged changes with AI",
	Long: `aitests reads the files you changed in git, follows their relative imports, packs the most
relevant files into a token budget and asks an AI provider to write unit tests for them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("aitests version %s", config.DefaultConfig.Version)))
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
	rootCmd.PersistentFlags().Bool("verbose", false, "Print debug output.")
	rootCmd.PersistentFlags().Bool("no_color", false, "Disable coloured log output.")
}

// handleRootCommand loads the configuration and wires the context pipeline for the repository
// containing the working directory.
func handleRootCommand(ctx context.Context, cmd *cobra.Command) (*RootDependencies, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetVerbose(true)
	}
	if noColor, _ := cmd.Flags().GetBool("no_color"); noColor {
		logger.DisableColors()
	}

	rootDir, err := findProjectRoot(ctx)
	if err != nil {
		return nil, err
	}
	git := utils.NewGitOperations(rootDir, nil)

	cfg, err := config.LoadConfigs(rootCmd, rootDir)
	if err != nil {
		return nil, err
	}

	return buildRootDependencies(cfg, rootDir, afero.NewOsFs(), git), nil
}

// newTokenCache opens the project token cache and keeps it out of git, so cache entries never
// show up as added files.
func newTokenCache(fs afero.Fs, rootDir string) *token_management.CacheManager {
	manager, err := token_management.NewCacheManager(token_management.DefaultCacheDir(rootDir))
	if err != nil {
		logger.Warn("Token cache disabled: %v", err)
		return nil
	}

	if _, err := utils.AddToGitignore(fs, rootDir, token_management.CacheDirName); err != nil {
		logger.Warn("Could not add %s to .gitignore: %v", token_management.CacheDirName, err)
	}
	return manager
}

func buildRootDependencies(cfg *config.Config, rootDir string, fs afero.Fs, git *utils.GitOperations) *RootDependencies {
	var cacheManager *token_management.CacheManager
	if cfg.EnableCache {
		cacheManager = newTokenCache(fs, rootDir)
	}

	encoder, encodingName := token_management.NewEncoder(cfg.AIProviderConfig.Model)
	counter := token_management.NewTokenCounter(encoder, encodingName, cacheManager)

	resolver := code_analyzer.NewPathResolver(fs, nil)
	reader := code_analyzer.NewFileReader(fs, resolver, code_analyzer.DefaultReadCacheSize)
	extractor := code_analyzer.NewImportExtractor(resolver, rootDir, cfg.PathAliases)

	assembler := context_assembler.NewContextAssembler(
		code_analyzer.NewChangeCollector(git, reader, rootDir, cfg.ChangeSource, cfg.ContextFiles),
		code_analyzer.NewImportWalker(reader, extractor),
		context_assembler.NewConfigFileGatherer(fs, rootDir, context_assembler.ProjectConfigPaths{
			EslintConfig:     cfg.EslintConfig,
			TsConfig:         cfg.TsConfig,
			TestConfig:       cfg.TestConfig,
			TestInstructions: cfg.TestInstructions,
		}),
		token_management.NewContextBudgeter(counter),
		counter,
		code_analyzer.NewOutliner(),
		context_assembler.Options{
			RootDir:           rootDir,
			MaxImportDepth:    cfg.MaxImportDepth,
			ContextTokenLimit: cfg.ContextTokenLimit,
			OutlineExcluded:   cfg.OutlineExcluded,
		},
	)

	return &RootDependencies{
		Config:          cfg,
		Cwd:             rootDir,
		Fs:              fs,
		Git:             git,
		TokenManagement: token_management.NewTokenManager(),
		TokenCounter:    counter,
		CacheManager:    cacheManager,
		Assembler:       assembler,
	}
}

// findProjectRoot returns the repository root, or the working directory outside a repository.
func findProjectRoot(ctx context.Context) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	topLevel, err := utils.NewGitOperations(cwd, nil).TopLevel(ctx)
	if err != nil || topLevel == "" {
		logger.Debug("Using %s as project root: %v", cwd, err)
		return cwd, nil
	}
	return topLevel, nil
}
