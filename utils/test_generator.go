package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/aitests/aitests/code_analyzer/models"
	"github.com/aitests/aitests/embed_data"
	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/providers"
	"github.com/aitests/aitests/providers/contracts"
	"github.com/spf13/afero"
)

// ErrEmptyGeneration is returned when the provider answered with no content.
var ErrEmptyGeneration = errors.New("failed to generate tests")

const defaultTestFramework = "jest"

// TestGenerationRequest represents the material sent to the provider for one generation.
type TestGenerationRequest struct {
	Framework    string
	Instructions string
	Included     models.IncludedFiles
	Outlines     []models.FileOutline
}

// TestGenerator generates unit tests for the budgeted context using AI
type TestGenerator struct {
	aiProvider contracts.IChatAIProvider
}

// NewTestGenerator creates a new test generator
func NewTestGenerator(aiProvider contracts.IChatAIProvider) *TestGenerator {
	return &TestGenerator{aiProvider: aiProvider}
}

// GenerateTests sends the prompts to the provider and returns the collected answer.
func (g *TestGenerator) GenerateTests(ctx context.Context, request TestGenerationRequest) (string, error) {
	systemPrompt, userPrompt, err := BuildTestPrompt(request)
	if err != nil {
		return "", err
	}

	generated, err := providers.Complete(ctx, g.aiProvider, userPrompt, systemPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate tests: %w", err)
	}

	result := strings.TrimSpace(generated)
	if result == "" {
		return "", ErrEmptyGeneration
	}
	return result, nil
}

// BuildTestPrompt renders the system prompt for the configured framework and lists every
// included file by category in the user prompt.
func BuildTestPrompt(request TestGenerationRequest) (string, string, error) {
	framework := strings.TrimSpace(request.Framework)
	if framework == "" {
		framework = defaultTestFramework
	}

	tmpl, err := template.New("test_generation").Parse(string(embed_data.TestGenerationPrompt))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var system bytes.Buffer
	err = tmpl.Execute(&system, struct {
		Framework    string
		Instructions string
	}{
		Framework:    framework,
		Instructions: strings.TrimSpace(request.Instructions),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return system.String(), createTestUserPrompt(request), nil
}

func createTestUserPrompt(request TestGenerationRequest) string {
	included := request.Included
	sections := []struct {
		title string
		files []models.FileObject
	}{
		{"Added Files", included.AddedFiles},
		{"Modified Files", included.ModifiedFiles},
		{"Context Files", included.ContextFiles},
		{"Config Files", included.ConfigFiles},
		{"Deleted Files", included.DeletedFiles},
		{"Imported Files", included.ImportedFiles},
	}

	var prompt strings.Builder
	prompt.WriteString("Generate tests for the following changes.")
	for _, section := range sections {
		prompt.WriteString(fmt.Sprintf("\n\n%s:\n", section.title))
		prompt.WriteString(formatFileList(section.files))
	}

	if len(request.Outlines) > 0 {
		prompt.WriteString("\n\nOutlines of files left out for size:\n")
		for _, outline := range request.Outlines {
			prompt.WriteString(fmt.Sprintf("File Name: %s\n", outline.Path))
			for _, element := range outline.Elements {
				prompt.WriteString(fmt.Sprintf("- %s\n", element))
			}
		}
	}

	return prompt.String()
}

func formatFileList(files []models.FileObject) string {
	if len(files) == 0 {
		return "(No files)"
	}

	entries := make([]string, 0, len(files))
	for _, file := range files {
		content := "(No content)"
		if file.Content != nil {
			content = *file.Content
		}
		entries = append(entries, fmt.Sprintf("File Name: %s\nContent: %s", file.Path, content))
	}
	return strings.Join(entries, "\n\n")
}

// WriteGeneratedTests writes content to outputPath (relative paths join onto rootDir) and
// lists the output in .gitignore. It returns the path written.
func WriteGeneratedTests(fs afero.Fs, rootDir string, outputPath string, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyGeneration
	}

	target := outputPath
	if !filepath.IsAbs(target) {
		target = filepath.Join(rootDir, target)
	}

	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := afero.WriteFile(fs, target, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write generated tests: %w", err)
	}

	rel, err := filepath.Rel(rootDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		logger.Debug("Output %s is outside the project, .gitignore left untouched", target)
		return target, nil
	}

	added, err := AddToGitignore(fs, rootDir, rel)
	if err != nil {
		logger.Warn("Could not update .gitignore: %v", err)
	} else if added {
		logger.Info("Added %s to .gitignore", filepath.ToSlash(rel))
	}

	return target, nil
}
