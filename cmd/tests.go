package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aitests/aitests/code_analyzer/models"
	"github.com/aitests/aitests/constants/lipgloss"
	"github.com/aitests/aitests/context_assembler"
	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/providers"
	"github.com/aitests/aitests/token_management"
	"github.com/aitests/aitests/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// testsCmd: aitests tests
var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "Detect changes in the codebase and generate tests using AI",
	Long: `The 'tests' subcommand collects the staged changes (or the working tree changes with
--change_source worktree), follows relative imports from every added or modified file, packs config,
context, changed and imported files into the token budget and asks the configured provider for tests.
The result is written to the output file, which is also added to .gitignore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		rootDependencies, err := handleRootCommand(ctx, cmd)
		if err != nil {
			return err
		}

		options := testsOptions{}
		options.output, _ = cmd.Flags().GetString("output")
		options.print, _ = cmd.Flags().GetBool("print")
		options.dryRun, _ = cmd.Flags().GetBool("dry-run")
		options.instructions, _ = cmd.Flags().GetString("instructions")
		options.framework, _ = cmd.Flags().GetString("framework")

		return handleTestsCommand(ctx, rootDependencies, options)
	},
}

type testsOptions struct {
	output       string
	print        bool
	dryRun       bool
	instructions string
	framework    string
}

func init() {
	testsCmd.Flags().StringP("output", "o", "", "Path of the generated tests file (default from outputFilePath).")
	testsCmd.Flags().BoolP("print", "p", false, "Print the generated tests with syntax highlighting.")
	testsCmd.Flags().Bool("dry-run", false, "Show which files fit the token budget without calling the AI provider.")
	testsCmd.Flags().StringP("instructions", "i", "", "Extra instructions appended to the system prompt.")
	testsCmd.Flags().String("framework", "", "Test framework to target (default from testFramework).")

	rootCmd.AddCommand(testsCmd)
}

func newSpinner() *pterm.SpinnerPrinter {
	return pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
}

func handleTestsCommand(ctx context.Context, rootDependencies *RootDependencies, options testsOptions) error {
	cfg := rootDependencies.Config
	if options.output != "" {
		cfg.OutputFilePath = options.output
	}
	if options.framework != "" {
		cfg.TestFramework = options.framework
	}

	if err := rootDependencies.Git.CheckGitRepo(ctx); err != nil {
		return fmt.Errorf("%w: run aitests inside a git repository", err)
	}

	spinnerLoadContext, _ := newSpinner().Start("Collecting changes and imports...")
	assembled := rootDependencies.Assembler.AssembleContext(ctx)
	spinnerLoadContext.Stop()
	fmt.Print("\r")

	if assembled.Changes.IsEmpty() {
		logger.Warn("No %s changes found", cfg.ChangeSource)
	}

	reportExclusions(assembled)

	if err := context_assembler.RequireContext(assembled); err != nil {
		return err
	}

	provider := cfg.AIProviderConfig
	if maxInput := token_management.MaxInputTokens(provider.Provider, provider.Model); maxInput > 0 && cfg.ContextTokenLimit > maxInput {
		logger.Warn("contextTokenLimit (%d) exceeds the input window of %s (%d tokens)", cfg.ContextTokenLimit, provider.Model, maxInput)
	}

	if options.dryRun {
		return renderBudgetTable(os.Stdout, assembled)
	}

	chatProvider, err := providers.ChatProviderFactory(provider, rootDependencies.TokenManagement)
	if err != nil {
		if errors.Is(err, providers.ErrNoAPIKey) {
			return fmt.Errorf("%w. Please set it using `aitests config set-key <apiKey>`", err)
		}
		return err
	}

	spinnerAI, _ := newSpinner().Start(fmt.Sprintf("Generating %s tests with %s...", cfg.TestFramework, provider.Model))
	generated, err := utils.NewTestGenerator(chatProvider).GenerateTests(ctx, utils.TestGenerationRequest{
		Framework:    cfg.TestFramework,
		Instructions: options.instructions,
		Included:     assembled.Result.IncludedFiles,
		Outlines:     assembled.Outlines,
	})
	spinnerAI.Stop()
	fmt.Print("\r")
	if err != nil {
		rootDependencies.TokenManagement.DisplayTokens(provider.Provider, provider.Model)
		return err
	}

	target, err := utils.WriteGeneratedTests(rootDependencies.Fs, rootDependencies.Cwd, cfg.OutputFilePath, generated)
	if err != nil {
		return err
	}
	logger.Success("Generated tests have been saved to: %s", target)

	if options.print {
		if err := utils.RenderMarkdownWithContext(ctx, os.Stdout, generated, cfg.Theme); err != nil {
			return err
		}
	}

	rootDependencies.TokenManagement.DisplayTokens(provider.Provider, provider.Model)
	return nil
}

func reportExclusions(assembled models.AssembledContext) {
	excluded := assembled.Result.ExcludedFiles
	if len(excluded) == 0 {
		return
	}

	logger.Info("Excluded Files (Exceeded Context Limit):")
	for _, file := range excluded {
		logger.Warn("File: %s excluded (Tokens: %d)", file.Path, file.TokenCount)
	}
	if len(assembled.Outlines) > 0 {
		logger.Info("Sending outlines of %d excluded files (%d tokens)", len(assembled.Outlines), assembled.OutlineTokens())
	}
}

// renderBudgetTable prints every candidate file with its category, token count and admission.
func renderBudgetTable(w io.Writer, assembled models.AssembledContext) error {
	data := pterm.TableData{{"Category", "File", "Tokens", "Status"}}

	for _, category := range models.Categories {
		for _, file := range assembled.Result.IncludedFiles.Get(category) {
			data = append(data, []string{string(category), file.Path, strconv.Itoa(file.TokenCount), "included"})
		}
	}
	for _, file := range assembled.Result.ExcludedFiles {
		data = append(data, []string{"-", file.Path, strconv.Itoa(file.TokenCount), "excluded"})
	}
	for _, outline := range assembled.Outlines {
		data = append(data, []string{"outline", outline.Path, strconv.Itoa(outline.TokenCount), "included"})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render budget table: %w", err)
	}
	fmt.Fprintln(w, table)

	used := assembled.Result.TotalTokens + assembled.OutlineTokens()
	fmt.Fprintln(w, lipgloss.BoxStyle.Render(fmt.Sprintf("Tokens: %d / %d (%d files included, %d excluded)",
		used, assembled.Ceiling, assembled.Result.IncludedFiles.Count(), len(assembled.Result.ExcludedFiles))))
	return nil
}
