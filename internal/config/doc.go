// Package config provides centralized configuration management for the
// dashboard service. It handles loading configuration from multiple sources,
// validation, and resolving filesystem paths.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML file (AGRI_CONFIG_FILE, ./config.yaml or ./configs/config.yaml)
//  3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern AGRI_<SECTION>_<FIELD>:
//
//	AGRI_SERVER_PORT=8080
//	AGRI_PATHS_DATASET_FILE=data/agri_environmental_indicators.csv
//	AGRI_LOGGING_LEVEL=debug
//	AGRI_SNAPSHOT_SCHEDULE="0 * * * *"
//	AGRI_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.ResolvePaths()
package config
