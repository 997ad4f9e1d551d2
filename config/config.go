package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aitests/aitests/logger"
	"github.com/aitests/aitests/providers"
	"github.com/aitests/aitests/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configName = "aitests.config"

// Config represents the structure of the configuration file
type Config struct {
	Version           string                      `mapstructure:"version"`
	Theme             string                      `mapstructure:"theme"`
	EnableCache       bool                        `mapstructure:"enableCache"`
	MaxImportDepth    int                         `mapstructure:"maxImportDepth"`
	ContextTokenLimit int                         `mapstructure:"contextTokenLimit"`
	ContextFiles      []string                    `mapstructure:"contextFiles"`
	PathAliases       map[string]string           `mapstructure:"pathAliases"`
	OutputFilePath    string                      `mapstructure:"outputFilePath"`
	TestFramework     string                      `mapstructure:"testFramework"`
	EslintConfig      string                      `mapstructure:"eslintConfig"`
	TsConfig          string                      `mapstructure:"tsConfig"`
	TestConfig        string                      `mapstructure:"testConfig"`
	TestInstructions  string                      `mapstructure:"testInstructions"`
	ChangeSource      string                      `mapstructure:"changeSource"`
	OutlineExcluded   bool                        `mapstructure:"outlineExcluded"`
	AIProviderConfig  *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:           "1.0.0",
	Theme:             "dracula",
	EnableCache:       true,
	MaxImportDepth:    1,
	ContextTokenLimit: 3000,
	OutputFilePath:    "generated-tests.md",
	TestFramework:     "jest",
	ChangeSource:      utils.ChangeSourceStaged,
	OutlineExcluded:   true,
	AIProviderConfig: &providers.AIProviderConfig{
		Provider:    "openai",
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o",
		Stream:      true,
		Temperature: 0.7,
		MaxTokens:   4096,
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs resolves the configuration from defaults, the project config file, environment
// variables and flags, in increasing priority. The API key falls back to the project .env file.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if cfgFile != "" {
		configType := GetConfigFileType(cfgFile)
		if configType == "" {
			return nil, fmt.Errorf("unsupported config file %s (use .json, .yaml or .yml)", cfgFile)
		}
		v.SetConfigFile(cfgFile)
		v.SetConfigType(configType)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			logger.Debug("No configuration file found in %s, using defaults", cwd)
		}
	}

	if rootCmd != nil {
		bindFlags(v, rootCmd)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.AIProviderConfig == nil {
		config.AIProviderConfig = &providers.AIProviderConfig{}
	}
	if config.AIProviderConfig.ApiKey == "" {
		key, err := GetAPIKey(cwd)
		if err != nil {
			logger.Debug("Could not read %s: %v", EnvFilePath(cwd), err)
		}
		config.AIProviderConfig.ApiKey = key
	}

	config.Normalize()
	return &config, nil
}

// Normalize replaces missing or invalid values with their defaults.
func (c *Config) Normalize() {
	if c.MaxImportDepth <= 0 {
		c.MaxImportDepth = DefaultConfig.MaxImportDepth
	}
	if c.ContextTokenLimit <= 0 {
		c.ContextTokenLimit = DefaultConfig.ContextTokenLimit
	}
	if strings.TrimSpace(c.OutputFilePath) == "" {
		c.OutputFilePath = DefaultConfig.OutputFilePath
	}
	if strings.TrimSpace(c.TestFramework) == "" {
		c.TestFramework = DefaultConfig.TestFramework
	}
	if c.Theme == "" {
		c.Theme = DefaultConfig.Theme
	}

	switch strings.ToLower(c.ChangeSource) {
	case utils.ChangeSourceStaged, utils.ChangeSourceWorktree:
		c.ChangeSource = strings.ToLower(c.ChangeSource)
	default:
		if c.ChangeSource != "" {
			logger.Warn("Unknown changeSource %q, using %s", c.ChangeSource, DefaultConfig.ChangeSource)
		}
		c.ChangeSource = DefaultConfig.ChangeSource
	}

	if c.AIProviderConfig == nil {
		provider := *DefaultConfig.AIProviderConfig
		c.AIProviderConfig = &provider
	}
	if c.AIProviderConfig.Provider == "" {
		c.AIProviderConfig.Provider = DefaultConfig.AIProviderConfig.Provider
	}
	if c.AIProviderConfig.Model == "" {
		c.AIProviderConfig.Model = DefaultConfig.AIProviderConfig.Model
	}
	if c.AIProviderConfig.MaxTokens <= 0 {
		c.AIProviderConfig.MaxTokens = DefaultConfig.AIProviderConfig.MaxTokens
	}
}

// OutputPath returns the output file path joined onto rootDir when it is relative.
func (c *Config) OutputPath(rootDir string) string {
	if filepath.IsAbs(c.OutputFilePath) {
		return c.OutputFilePath
	}
	return filepath.Join(rootDir, c.OutputFilePath)
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("enableCache", DefaultConfig.EnableCache)
	v.SetDefault("maxImportDepth", DefaultConfig.MaxImportDepth)
	v.SetDefault("contextTokenLimit", DefaultConfig.ContextTokenLimit)
	v.SetDefault("contextFiles", []string{})
	v.SetDefault("outputFilePath", DefaultConfig.OutputFilePath)
	v.SetDefault("testFramework", DefaultConfig.TestFramework)
	v.SetDefault("changeSource", DefaultConfig.ChangeSource)
	v.SetDefault("outlineExcluded", DefaultConfig.OutlineExcluded)
	v.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	v.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	v.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	v.SetDefault("ai_provider_config.stream", DefaultConfig.AIProviderConfig.Stream)
	v.SetDefault("ai_provider_config.temperature", DefaultConfig.AIProviderConfig.Temperature)
	v.SetDefault("ai_provider_config.max_tokens", DefaultConfig.AIProviderConfig.MaxTokens)
	v.SetDefault("ai_provider_config.reasoning_effort", DefaultConfig.AIProviderConfig.ReasoningEffort)
	v.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("theme", "AITESTS_THEME")
	_ = v.BindEnv("enableCache", "AITESTS_ENABLE_CACHE")
	_ = v.BindEnv("maxImportDepth", "AITESTS_MAX_IMPORT_DEPTH")
	_ = v.BindEnv("contextTokenLimit", "AITESTS_CONTEXT_TOKEN_LIMIT")
	_ = v.BindEnv("outputFilePath", "AITESTS_OUTPUT_FILE_PATH")
	_ = v.BindEnv("testFramework", "AITESTS_TEST_FRAMEWORK")
	_ = v.BindEnv("changeSource", "AITESTS_CHANGE_SOURCE")
	_ = v.BindEnv("ai_provider_config.provider", "AITESTS_PROVIDER")
	_ = v.BindEnv("ai_provider_config.base_url", "AITESTS_BASE_URL")
	_ = v.BindEnv("ai_provider_config.model", "AITESTS_MODEL")
	_ = v.BindEnv("ai_provider_config.temperature", "AITESTS_TEMPERATURE")
	_ = v.BindEnv("ai_provider_config.max_tokens", "AITESTS_MAX_TOKENS")
	_ = v.BindEnv("ai_provider_config.reasoning_effort", "AITESTS_REASONING_EFFORT")
	_ = v.BindEnv("ai_provider_config.api_key", APIKeyEnv)
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("theme", flags.Lookup("theme"))
	_ = v.BindPFlag("enableCache", flags.Lookup("enable_cache"))
	_ = v.BindPFlag("maxImportDepth", flags.Lookup("max_depth"))
	_ = v.BindPFlag("contextTokenLimit", flags.Lookup("context_limit"))
	_ = v.BindPFlag("changeSource", flags.Lookup("change_source"))
	_ = v.BindPFlag("ai_provider_config.provider", flags.Lookup("provider"))
	_ = v.BindPFlag("ai_provider_config.base_url", flags.Lookup("base_url"))
	_ = v.BindPFlag("ai_provider_config.model", flags.Lookup("model"))
	_ = v.BindPFlag("ai_provider_config.temperature", flags.Lookup("temperature"))
	_ = v.BindPFlag("ai_provider_config.max_tokens", flags.Lookup("max_tokens"))
	_ = v.BindPFlag("ai_provider_config.reasoning_effort", flags.Lookup("reasoning_effort"))
	_ = v.BindPFlag("ai_provider_config.api_key", flags.Lookup("api_key"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML). Defaults to aitests.config.{json,yaml,yml} in the project root.")

	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set the highlighting theme for printed output. (e.g., 'dracula', 'monokai', 'github')")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Enable or disable the on-disk token count cache")
	rootCmd.PersistentFlags().Int("max_depth", DefaultConfig.MaxImportDepth, "How many levels of relative imports to follow from each changed file.")
	rootCmd.PersistentFlags().Int("context_limit", DefaultConfig.ContextTokenLimit, "The token ceiling for the files sent to the model.")
	rootCmd.PersistentFlags().String("change_source", DefaultConfig.ChangeSource, "Which changes to read: 'staged' (git diff --cached) or 'worktree' (git status).")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	// AI Provider configuration
	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider (e.g., 'openai', 'ollama', 'gemini')")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of AI Provider (e.g., default is 'https://api.openai.com/v1').")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The name of the model used for chat completions, such as 'gpt-4o'.")
	rootCmd.PersistentFlags().Float32("temperature", DefaultConfig.AIProviderConfig.Temperature, "Adjusts the AI model's creativity (0-1, default 0.7).")
	rootCmd.PersistentFlags().Int("max_tokens", DefaultConfig.AIProviderConfig.MaxTokens, "The maximum number of tokens the model may generate.")
	rootCmd.PersistentFlags().String("reasoning_effort", "", "Adjusts the AI Reasoning model's effort (e.g., 'low', 'medium', 'high').")
	rootCmd.PersistentFlags().String("api_key", "", "The API key used to authenticate with the AI service provider.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}
