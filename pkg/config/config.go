/*
Package config manages TOML config for wordcraft services.

The file lives at [UserConfigDir]/wordcraft/config.toml and is created
with defaults on first run. A file that fails to decode is salvaged
section by section, so one bad value never discards the rest.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/rerank"
)

const (
	envDisableReranker  = "WORDCRAFT_DISABLE_RERANKER"
	envRerankerArtifact = "WORDCRAFT_RERANKER_ARTIFACT"
)

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Engine  EngineConfig  `toml:"engine"`
	Weights WeightsConfig `toml:"weights"`
	Rerank  RerankConfig  `toml:"rerank"`
	Embed   EmbedConfig   `toml:"embed"`
	Network NetworkConfig `toml:"network"`
	Lexicon LexiconConfig `toml:"lexicon"`
	Tagger  TaggerConfig  `toml:"tagger"`
	CLI     CliConfig     `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit         int `toml:"max_limit"`
	RequestTimeoutMS int `toml:"request_timeout_ms"`
}

// EngineConfig holds suggestion pipeline knobs.
type EngineConfig struct {
	TopK           int     `toml:"top_k"`
	PoolCap        int     `toml:"pool_cap"`
	DriftBudget    float64 `toml:"drift_budget"`
	MaxVariants    int     `toml:"max_variants"`
	DefaultContext string  `toml:"default_context"`
	DefaultMode    string  `toml:"default_mode"`
}

// Weights is one feature weight tuple for the ranker.
type Weights struct {
	Semantic  float64 `toml:"semantic"`
	Context   float64 `toml:"context"`
	Emotion   float64 `toml:"emotion"`
	Grammar   float64 `toml:"grammar"`
	Frequency float64 `toml:"frequency"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Semantic + w.Context + w.Emotion + w.Grammar + w.Frequency
}

// WeightsConfig holds the mode weight tuples.
type WeightsConfig struct {
	Default Weights `toml:"default"`
	Write   Weights `toml:"write"`
	Edit    Weights `toml:"edit"`
	Rewrite Weights `toml:"rewrite"`
	Blank   Weights `toml:"blank"`
}

// RerankConfig controls the learned reranker blend.
type RerankConfig struct {
	Artifact       string  `toml:"artifact"`
	Disabled       bool    `toml:"disabled"`
	SuggestEnabled bool    `toml:"suggest_enabled"`
	BlendSuggest   float64 `toml:"blend_suggest"`
	BlendLexical   float64 `toml:"blend_lexical"`
	BlendOneWord   float64 `toml:"blend_oneword"`
}

// EmbedConfig selects the embedding encoder.
type EmbedConfig struct {
	Provider  string `toml:"provider"`
	Endpoint  string `toml:"endpoint"`
	Model     string `toml:"model"`
	TimeoutMS int    `toml:"timeout_ms"`
	CacheDB   string `toml:"cache_db"`
}

// NetworkConfig configures the ConceptNet client.
type NetworkConfig struct {
	Enabled    bool    `toml:"enabled"`
	BaseURL    string  `toml:"base_url"`
	TimeoutMS  int     `toml:"timeout_ms"`
	RatePerSec float64 `toml:"rate_per_sec"`
	Burst      int     `toml:"burst"`
	Limit      int     `toml:"limit"`
}

// LexiconConfig points at data files overriding the embedded ones.
type LexiconConfig struct {
	DataDir       string `toml:"data_dir"`
	WordNetPath   string `toml:"wordnet_path"`
	PhoneticsPath string `toml:"phonetics_path"`
	EmotionsPath  string `toml:"emotions_path"`
	ContextsPath  string `toml:"contexts_path"`
}

// TaggerConfig selects the POS tagger backend.
type TaggerConfig struct {
	Backend string `toml:"backend"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultContext string `toml:"default_context"`
	DefaultMode    string `toml:"default_mode"`
	ShowNotes      bool   `toml:"show_notes"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wordcraft
// 2. ~/Library/Application Support/wordcraft (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordcraft")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordcraft")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordcraft/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied last in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config.withEnv(), customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig().withEnv(), ""
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig().withEnv(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config.withEnv(), defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:         64,
			RequestTimeoutMS: 8000,
		},
		Engine: EngineConfig{
			TopK:           5,
			PoolCap:        320,
			DriftBudget:    0.52,
			MaxVariants:    3,
			DefaultContext: "neutral",
			DefaultMode:    "write",
		},
		Weights: DefaultWeights(),
		Rerank: RerankConfig{
			Artifact:       "reranker.msgpack",
			SuggestEnabled: false,
			BlendSuggest:   rerank.BlendSuggest,
			BlendLexical:   rerank.BlendLexical,
			BlendOneWord:   rerank.BlendOneWord,
		},
		Embed: EmbedConfig{
			Provider:  "ollama",
			Endpoint:  "http://localhost:11434",
			Model:     "all-minilm",
			TimeoutMS: 3000,
		},
		Network: NetworkConfig{
			Enabled:    true,
			BaseURL:    "https://api.conceptnet.io/related/c/en/",
			TimeoutMS:  2000,
			RatePerSec: 4,
			Burst:      4,
			Limit:      20,
		},
		Tagger: TaggerConfig{
			Backend: "prose",
		},
		CLI: CliConfig{
			DefaultContext: "neutral",
			DefaultMode:    "write",
			ShowNotes:      true,
		},
	}
}

// DefaultWeights returns the ranker's mode weight tuples.
func DefaultWeights() WeightsConfig {
	return WeightsConfig{
		Default: Weights{Semantic: 0.42, Context: 0.24, Emotion: 0.08, Grammar: 0.18, Frequency: 0.08},
		Write:   Weights{Semantic: 0.45, Context: 0.23, Emotion: 0.08, Grammar: 0.16, Frequency: 0.08},
		Edit:    Weights{Semantic: 0.34, Context: 0.12, Emotion: 0.04, Grammar: 0.36, Frequency: 0.14},
		Rewrite: Weights{Semantic: 0.44, Context: 0.24, Emotion: 0.08, Grammar: 0.16, Frequency: 0.08},
		Blank:   Weights{Semantic: 0.34, Context: 0.16, Emotion: 0.08, Grammar: 0.34, Frequency: 0.08},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse attempts to salvage sections from a TOML file that
// failed to decode into Config.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.ExtractSection(tempConfig, "weights"); ok {
		extractWeightsConfig(section, &config.Weights)
	}
	if section, ok := utils.ExtractSection(tempConfig, "rerank"); ok {
		extractRerankConfig(section, &config.Rerank)
	}
	if section, ok := utils.ExtractSection(tempConfig, "embed"); ok {
		extractEmbedConfig(section, &config.Embed)
	}
	if section, ok := utils.ExtractSection(tempConfig, "network"); ok {
		extractNetworkConfig(section, &config.Network)
	}
	if section, ok := utils.ExtractSection(tempConfig, "lexicon"); ok {
		extractLexiconConfig(section, &config.Lexicon)
	}
	if section, ok := utils.ExtractSection(tempConfig, "tagger"); ok {
		if val, ok := utils.ExtractString(section, "backend"); ok {
			config.Tagger.Backend = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	config.sanitize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "request_timeout_ms"); ok {
		server.RequestTimeoutMS = val
	}
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "top_k"); ok {
		engine.TopK = val
	}
	if val, ok := utils.ExtractInt64(data, "pool_cap"); ok {
		engine.PoolCap = val
	}
	if val, ok := utils.ExtractFloat(data, "drift_budget"); ok {
		engine.DriftBudget = val
	}
	if val, ok := utils.ExtractInt64(data, "max_variants"); ok {
		engine.MaxVariants = val
	}
	if val, ok := utils.ExtractString(data, "default_context"); ok {
		engine.DefaultContext = val
	}
	if val, ok := utils.ExtractString(data, "default_mode"); ok {
		engine.DefaultMode = val
	}
}

func extractWeightsConfig(data map[string]any, weights *WeightsConfig) {
	tuples := map[string]*Weights{
		"default": &weights.Default,
		"write":   &weights.Write,
		"edit":    &weights.Edit,
		"rewrite": &weights.Rewrite,
		"blank":   &weights.Blank,
	}
	for name, target := range tuples {
		section, ok := utils.ExtractSection(data, name)
		if !ok {
			continue
		}
		if val, ok := utils.ExtractFloat(section, "semantic"); ok {
			target.Semantic = val
		}
		if val, ok := utils.ExtractFloat(section, "context"); ok {
			target.Context = val
		}
		if val, ok := utils.ExtractFloat(section, "emotion"); ok {
			target.Emotion = val
		}
		if val, ok := utils.ExtractFloat(section, "grammar"); ok {
			target.Grammar = val
		}
		if val, ok := utils.ExtractFloat(section, "frequency"); ok {
			target.Frequency = val
		}
	}
}

func extractRerankConfig(data map[string]any, rc *RerankConfig) {
	if val, ok := utils.ExtractString(data, "artifact"); ok {
		rc.Artifact = val
	}
	if val, ok := utils.ExtractBool(data, "disabled"); ok {
		rc.Disabled = val
	}
	if val, ok := utils.ExtractBool(data, "suggest_enabled"); ok {
		rc.SuggestEnabled = val
	}
	if val, ok := utils.ExtractFloat(data, "blend_suggest"); ok {
		rc.BlendSuggest = val
	}
	if val, ok := utils.ExtractFloat(data, "blend_lexical"); ok {
		rc.BlendLexical = val
	}
	if val, ok := utils.ExtractFloat(data, "blend_oneword"); ok {
		rc.BlendOneWord = val
	}
}

func extractEmbedConfig(data map[string]any, embed *EmbedConfig) {
	if val, ok := utils.ExtractString(data, "provider"); ok {
		embed.Provider = val
	}
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		embed.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "model"); ok {
		embed.Model = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		embed.TimeoutMS = val
	}
	if val, ok := utils.ExtractString(data, "cache_db"); ok {
		embed.CacheDB = val
	}
}

func extractNetworkConfig(data map[string]any, network *NetworkConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		network.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		network.BaseURL = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		network.TimeoutMS = val
	}
	if val, ok := utils.ExtractFloat(data, "rate_per_sec"); ok {
		network.RatePerSec = val
	}
	if val, ok := utils.ExtractInt64(data, "burst"); ok {
		network.Burst = val
	}
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		network.Limit = val
	}
}

func extractLexiconConfig(data map[string]any, lexicon *LexiconConfig) {
	if val, ok := utils.ExtractString(data, "data_dir"); ok {
		lexicon.DataDir = val
	}
	if val, ok := utils.ExtractString(data, "wordnet_path"); ok {
		lexicon.WordNetPath = val
	}
	if val, ok := utils.ExtractString(data, "phonetics_path"); ok {
		lexicon.PhoneticsPath = val
	}
	if val, ok := utils.ExtractString(data, "emotions_path"); ok {
		lexicon.EmotionsPath = val
	}
	if val, ok := utils.ExtractString(data, "contexts_path"); ok {
		lexicon.ContextsPath = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractString(data, "default_context"); ok {
		cli.DefaultContext = val
	}
	if val, ok := utils.ExtractString(data, "default_mode"); ok {
		cli.DefaultMode = val
	}
	if val, ok := utils.ExtractBool(data, "show_notes"); ok {
		cli.ShowNotes = val
	}
}

// sanitize replaces out-of-range values with defaults.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Server.MaxLimit <= 0 {
		c.Server.MaxLimit = def.Server.MaxLimit
	}
	if c.Server.RequestTimeoutMS <= 0 {
		c.Server.RequestTimeoutMS = def.Server.RequestTimeoutMS
	}
	if c.Engine.TopK <= 0 {
		c.Engine.TopK = def.Engine.TopK
	}
	if c.Engine.PoolCap <= 0 {
		c.Engine.PoolCap = def.Engine.PoolCap
	}
	if c.Engine.DriftBudget <= 0 || c.Engine.DriftBudget > 1 {
		c.Engine.DriftBudget = def.Engine.DriftBudget
	}
	if c.Engine.MaxVariants <= 0 {
		c.Engine.MaxVariants = def.Engine.MaxVariants
	}
	for _, pair := range []struct{ got, want *Weights }{
		{&c.Weights.Default, &def.Weights.Default},
		{&c.Weights.Write, &def.Weights.Write},
		{&c.Weights.Edit, &def.Weights.Edit},
		{&c.Weights.Rewrite, &def.Weights.Rewrite},
		{&c.Weights.Blank, &def.Weights.Blank},
	} {
		if pair.got.Sum() <= 0 {
			*pair.got = *pair.want
		}
	}
	for _, blend := range []*float64{&c.Rerank.BlendSuggest, &c.Rerank.BlendLexical, &c.Rerank.BlendOneWord} {
		*blend = utils.Clamp(*blend, 0, 1)
	}
	c.Tagger.Backend = strings.ToLower(c.Tagger.Backend)
	c.Embed.Provider = strings.ToLower(c.Embed.Provider)
}

// withEnv applies the reranker environment overrides.
func (c *Config) withEnv() *Config {
	if utils.TruthyEnv(os.Getenv(envDisableReranker)) {
		c.Rerank.Disabled = true
	}
	if path := strings.TrimSpace(os.Getenv(envRerankerArtifact)); path != "" {
		c.Rerank.Artifact = path
	}
	return c
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
