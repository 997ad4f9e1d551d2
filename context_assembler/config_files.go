package context_assembler

import (
	"context"
	"path/filepath"

	"github.com/aitests/aitests/code_analyzer/models"
	"github.com/aitests/aitests/context_assembler/contracts"
	"github.com/aitests/aitests/logger"
	"github.com/spf13/afero"
)

const packageJSON = "package.json"

// ProjectConfigPaths names the optional project files offered to the model next to package.json.
type ProjectConfigPaths struct {
	EslintConfig     string
	TsConfig         string
	TestConfig       string
	TestInstructions string
}

// ordered returns package.json followed by every configured path, in admission order.
func (p ProjectConfigPaths) ordered() []string {
	paths := []string{packageJSON}
	for _, path := range []string{p.EslintConfig, p.TsConfig, p.TestConfig, p.TestInstructions} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// ConfigFileGatherer reads the project's build and test configuration files.
type ConfigFileGatherer struct {
	fs      afero.Fs
	rootDir string
	paths   ProjectConfigPaths
}

func NewConfigFileGatherer(fs afero.Fs, rootDir string, paths ProjectConfigPaths) contracts.IConfigFileGatherer {
	return &ConfigFileGatherer{fs: fs, rootDir: rootDir, paths: paths}
}

// GatherProjectConfigFiles returns the readable config files. Relative paths are joined onto the
// project root; missing files are skipped with a warning.
func (g *ConfigFileGatherer) GatherProjectConfigFiles(ctx context.Context) []models.FileObject {
	var configs []models.FileObject

	for _, path := range g.paths.ordered() {
		if ctx.Err() != nil {
			break
		}

		fullPath := path
		if !filepath.IsAbs(fullPath) {
			fullPath = filepath.Join(g.rootDir, path)
		}

		info, err := g.fs.Stat(fullPath)
		if err != nil || info.IsDir() {
			logger.Warn("Config file not found: %s", fullPath)
			continue
		}

		data, err := afero.ReadFile(g.fs, fullPath)
		if err != nil {
			logger.Error("Failed to read config file %s: %v", fullPath, err)
			continue
		}

		configs = append(configs, models.NewFileObject(path, string(data)))
	}

	return configs
}
