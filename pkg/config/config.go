package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Embedding struct {
		BaseURL   string  `yaml:"base_url"`
		Model     string  `yaml:"model"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"embedding"`

	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"database"`

	Chunker struct {
		WindowSize int `yaml:"window_size"`
		Overlap    int `yaml:"overlap"`
	} `yaml:"chunker"`

	Retrieval struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retrieval"`

	Sync struct {
		MinBodyLength int `yaml:"min_body_length"`
	} `yaml:"sync"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/autogmail/config.yaml"),
			"/etc/autogmail/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Embedding.Model == "" {
		config.Embedding.Model = "nomic-embed-text:latest"
	}
	if config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = "http://localhost:11434"
	}
	if config.Embedding.RateLimit == 0 {
		config.Embedding.RateLimit = 4.0
	}

	if config.LLM.Model == "" {
		config.LLM.Model = "mistral"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "chunks"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}

	if config.Chunker.WindowSize == 0 {
		config.Chunker.WindowSize = 1000
	}
	if config.Chunker.Overlap == 0 {
		config.Chunker.Overlap = 100
	}

	if config.Retrieval.TopK == 0 {
		config.Retrieval.TopK = 3
	}

	if config.Sync.MinBodyLength == 0 {
		config.Sync.MinBodyLength = 50
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Embedding.BaseURL = baseURL
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
