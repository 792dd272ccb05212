package main

import (
	"os"

	"gopkg.in/yaml.v3"

	responserules "github.com/vasistbhargav/respcache/pkg/response-rules"
)

type Config struct {
	// Store selects the backend: memory, ristretto, sqlite or redis.
	Store string `yaml:"store"`
	// DB is the database file for the sqlite backend.
	DB string `yaml:"db"`
	// Redis is the address of the redis backend.
	Redis string `yaml:"redis"`

	MaxCacheSize      int64 `yaml:"maxCacheSize"`
	MaxCachedBodySize int64 `yaml:"maxCachedBodySize"`

	VaryByHeaders   []string `yaml:"varyByHeaders"`
	VaryByQueryKeys []string `yaml:"varyByQueryKeys"`

	Rules responserules.Rules `yaml:"rules"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}
