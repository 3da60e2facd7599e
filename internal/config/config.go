// Package config provides configuration management for the cognitive
// orchestration core.
//
// Configuration can be loaded from multiple sources (in order of precedence):
// 1. Environment variables (highest priority)
// 2. Configuration file (JSON)
// 3. Default values (lowest priority)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the complete core configuration.
type Config struct {
	Server       ServerConfig       `json:"server"`
	Reasoning    ReasoningConfig    `json:"reasoning"`
	Learning     LearningConfig     `json:"learning"`
	Memory       MemoryConfig       `json:"memory"`
	Knowledge    KnowledgeConfig    `json:"knowledge"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Logging      LoggingConfig      `json:"logging"`
}

// ServerConfig contains process-level identification, not transport.
type ServerConfig struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// ReasoningConfig controls the Reasoning Engine.
type ReasoningConfig struct {
	// BackendsEnabled subsets {classical, fuzzy, probabilistic, modal,
	// temporal, quantum, tensor, decision, inference, problem_solver}.
	BackendsEnabled []string `json:"backends_enabled"`

	// AdaptiveThreshold is the success_rate above which a strategy may be
	// reused even when not otherwise selected.
	AdaptiveThreshold float64 `json:"adaptive_threshold"`

	// QuantumMaxStates bounds the superposition generated per measurement.
	QuantumMaxStates int `json:"quantum_max_states"`
}

// LearningConfig controls the Learning Engine.
type LearningConfig struct {
	HistoryCapacity int `json:"history_capacity"`
}

// MemoryConfig controls the Memory Manager.
type MemoryConfig struct {
	CapacityShort              int     `json:"capacity_short"`
	CapacityWorking            int     `json:"capacity_working"`
	ConsolidationSimilarity    float64 `json:"consolidation_similarity_threshold"`
	OptimizationCompressionSim float64 `json:"optimization_compression_similarity"`
}

// KnowledgeConfig controls the Knowledge Base's optional external stores.
type KnowledgeConfig struct {
	EmbeddingsEnabled  bool   `json:"embeddings_enabled"`
	GraphMirrorEnabled bool   `json:"graph_mirror_enabled"`
	Neo4jURI           string `json:"neo4j_uri"`
	Neo4jUsername      string `json:"neo4j_username"`
	Neo4jPassword      string `json:"neo4j_password"`
	Neo4jDatabase      string `json:"neo4j_database"`
}

// OrchestratorConfig controls lifecycle and fan-out.
type OrchestratorConfig struct {
	RequestTimeoutMS int `json:"request_timeout_ms"`
	FanoutMax        int `json:"fanout_max"`
}

// LoggingConfig governs the in-process log.Printf calls each engine makes
// at its boundaries. There is no export path; level/format only affect
// what's written locally.
type LoggingConfig struct {
	Level            string `json:"level"`
	Format           string `json:"format"`
	EnableTimestamps bool   `json:"enable_timestamps"`
}

var allBackends = []string{
	"classical", "fuzzy", "probabilistic", "modal", "temporal",
	"quantum", "tensor", "decision", "inference", "problem_solver",
}

// Default returns the default configuration with every backend enabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:        "cognitive-core",
			Version:     "0.1.0",
			Environment: "development",
		},
		Reasoning: ReasoningConfig{
			BackendsEnabled:   append([]string(nil), allBackends...),
			AdaptiveThreshold: 0.7,
			QuantumMaxStates:  4,
		},
		Learning: LearningConfig{
			HistoryCapacity: 1000,
		},
		Memory: MemoryConfig{
			CapacityShort:              1000,
			CapacityWorking:            100,
			ConsolidationSimilarity:    0.7,
			OptimizationCompressionSim: 0.8,
		},
		Knowledge: KnowledgeConfig{
			EmbeddingsEnabled:  false,
			GraphMirrorEnabled: false,
			Neo4jURI:           "bolt://localhost:7687",
			Neo4jUsername:      "neo4j",
			Neo4jDatabase:      "neo4j",
		},
		Orchestrator: OrchestratorConfig{
			RequestTimeoutMS: 30000,
			FanoutMax:        8,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			EnableTimestamps: true,
		},
	}
}

// Load loads configuration from environment variables over defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file, then applies env
// overrides on top of it.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromEnv overrides fields from COG_<SECTION>_<KEY> environment
// variables, e.g. COG_MEMORY_CAPACITY_SHORT, COG_REASONING_ADAPTIVE_THRESHOLD.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("COG_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
	if v := os.Getenv("COG_SERVER_ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}

	if v := os.Getenv("COG_REASONING_BACKENDS_ENABLED"); v != "" {
		c.Reasoning.BackendsEnabled = strings.Split(v, ",")
	}
	if v := os.Getenv("COG_REASONING_ADAPTIVE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Reasoning.AdaptiveThreshold = f
		}
	}
	if v := os.Getenv("COG_REASONING_QUANTUM_MAX_STATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reasoning.QuantumMaxStates = n
		}
	}

	if v := os.Getenv("COG_LEARNING_HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Learning.HistoryCapacity = n
		}
	}

	if v := os.Getenv("COG_MEMORY_CAPACITY_SHORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Memory.CapacityShort = n
		}
	}
	if v := os.Getenv("COG_MEMORY_CAPACITY_WORKING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Memory.CapacityWorking = n
		}
	}
	if v := os.Getenv("COG_MEMORY_CONSOLIDATION_SIMILARITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Memory.ConsolidationSimilarity = f
		}
	}
	if v := os.Getenv("COG_MEMORY_OPTIMIZATION_COMPRESSION_SIMILARITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Memory.OptimizationCompressionSim = f
		}
	}

	if v := os.Getenv("COG_KNOWLEDGE_EMBEDDINGS_ENABLED"); v != "" {
		c.Knowledge.EmbeddingsEnabled = parseBool(v)
	}
	if v := os.Getenv("COG_KNOWLEDGE_GRAPH_MIRROR_ENABLED"); v != "" {
		c.Knowledge.GraphMirrorEnabled = parseBool(v)
	}
	if v := os.Getenv("COG_KNOWLEDGE_NEO4J_URI"); v != "" {
		c.Knowledge.Neo4jURI = v
	}
	if v := os.Getenv("COG_KNOWLEDGE_NEO4J_USERNAME"); v != "" {
		c.Knowledge.Neo4jUsername = v
	}
	if v := os.Getenv("COG_KNOWLEDGE_NEO4J_PASSWORD"); v != "" {
		c.Knowledge.Neo4jPassword = v
	}
	if v := os.Getenv("COG_KNOWLEDGE_NEO4J_DATABASE"); v != "" {
		c.Knowledge.Neo4jDatabase = v
	}

	if v := os.Getenv("COG_ORCHESTRATOR_REQUEST_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Orchestrator.RequestTimeoutMS = n
		}
	}
	if v := os.Getenv("COG_ORCHESTRATOR_FANOUT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Orchestrator.FanoutMax = n
		}
	}

	if v := os.Getenv("COG_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("COG_LOGGING_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("COG_LOGGING_ENABLE_TIMESTAMPS"); v != "" {
		c.Logging.EnableTimestamps = parseBool(v)
	}

	return nil
}

// Validate checks invariants on the configuration's numeric ranges.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name cannot be empty")
	}
	if c.Reasoning.AdaptiveThreshold < 0 || c.Reasoning.AdaptiveThreshold > 1 {
		return fmt.Errorf("reasoning.adaptive_threshold must be in [0,1]")
	}
	if c.Reasoning.QuantumMaxStates < 1 || c.Reasoning.QuantumMaxStates > 4 {
		return fmt.Errorf("reasoning.quantum_max_states must be in [1,4]")
	}
	for _, b := range c.Reasoning.BackendsEnabled {
		if !isKnownBackend(b) {
			return fmt.Errorf("reasoning.backends_enabled: unknown backend %q", b)
		}
	}
	if c.Learning.HistoryCapacity < 1 {
		return fmt.Errorf("learning.history_capacity must be >= 1")
	}
	if c.Memory.CapacityShort < 1 {
		return fmt.Errorf("memory.capacity_short must be >= 1")
	}
	if c.Memory.CapacityWorking < 1 {
		return fmt.Errorf("memory.capacity_working must be >= 1")
	}
	if c.Memory.ConsolidationSimilarity < 0 || c.Memory.ConsolidationSimilarity > 1 {
		return fmt.Errorf("memory.consolidation_similarity_threshold must be in [0,1]")
	}
	if c.Memory.OptimizationCompressionSim < 0 || c.Memory.OptimizationCompressionSim > 1 {
		return fmt.Errorf("memory.optimization_compression_similarity must be in [0,1]")
	}
	if c.Orchestrator.RequestTimeoutMS < 1 {
		return fmt.Errorf("orchestrator.request_timeout_ms must be >= 1")
	}
	if c.Orchestrator.FanoutMax < 1 {
		return fmt.Errorf("orchestrator.fanout_max must be >= 1")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json'")
	}
	return nil
}

func isKnownBackend(b string) bool {
	for _, k := range allBackends {
		if k == b {
			return true
		}
	}
	return false
}

// IsBackendEnabled reports whether the given backend kind is enabled.
func (c *Config) IsBackendEnabled(backend string) bool {
	for _, b := range c.Reasoning.BackendsEnabled {
		if b == backend {
			return true
		}
	}
	return false
}

// parseBool parses a boolean from string (handles various formats).
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}

// ToJSON serializes the configuration to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
