package config

import "time"

// Config is the root configuration for vizdocs.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Docs       DocsConfig       `yaml:"docs"`
	Detection  DetectionConfig  `yaml:"detection"`
	Limits     LimitsConfig     `yaml:"limits"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"` // "stdio" or "http"
	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
}

// DocsConfig points at the upstream documentation API.
type DocsConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Organization string        `yaml:"organization"`
	Timeout      time.Duration `yaml:"timeout"`
	UpdatesURL   string        `yaml:"updates_url"` // optional SSE update feed
}

// DetectionConfig locates the caller project inspected by the sniffer.
type DetectionConfig struct {
	ProjectDir string `yaml:"project_dir"`
	Manifest   string `yaml:"manifest"`
	ModulesDir string `yaml:"modules_dir"`
}

// LimitsConfig bounds token budgets and topic counts.
type LimitsConfig struct {
	MinTokens       int `yaml:"min_tokens"`
	MaxTokens       int `yaml:"max_tokens"`
	DefaultTokens   int `yaml:"default_tokens"`
	SubTaskTokenCap int `yaml:"subtask_token_cap"`
	MinTopics       int `yaml:"min_topics"`
	MaxTopics       int `yaml:"max_topics"`
	DefaultTopics   int `yaml:"default_topics"`
}

// ExtractionConfig carries the complex-task decomposition policy embedded
// in the extraction prompt. These thresholds are instructions for the
// calling LLM, not locally enforced rules.
type ExtractionConfig struct {
	ComplexTopicCount  int `yaml:"complex_topic_count"`
	ComplexQueryLength int `yaml:"complex_query_length"`
	ComplexActionVerbs int `yaml:"complex_action_verbs"`
	MinSubTasks        int `yaml:"min_subtasks"`
	MaxSubTasks        int `yaml:"max_subtasks"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      3000,
			Transport: "stdio",
			LogLevel:  "info",
		},
		Docs: DocsConfig{
			BaseURL:      "https://context7.com/api",
			Organization: "antvis",
			Timeout:      30 * time.Second,
		},
		Detection: DetectionConfig{
			ProjectDir: ".",
			Manifest:   "package.json",
			ModulesDir: "node_modules/@antv",
		},
		Limits: LimitsConfig{
			MinTokens:       1000,
			MaxTokens:       20000,
			DefaultTokens:   5000,
			SubTaskTokenCap: 1000,
			MinTopics:       3,
			MaxTopics:       8,
			DefaultTopics:   5,
		},
		Extraction: ExtractionConfig{
			ComplexTopicCount:  3,
			ComplexQueryLength: 50,
			ComplexActionVerbs: 2,
			MinSubTasks:        2,
			MaxSubTasks:        4,
		},
	}
}
