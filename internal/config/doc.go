// Package config loads lobstat configuration.
//
// # Configuration Sources
//
// Values are resolved in this order, later sources overriding earlier ones:
//
//	1. Built-in defaults (Default)
//	2. A YAML file (config.yaml, configs/config.yaml or an explicit path)
//	3. Environment variables prefixed LOBSTAT_, optionally read from a .env file
//
// Environment variable names follow the struct layout:
//
//	LOBSTAT_RUN_WORKERS=8
//	LOBSTAT_RUN_SEED_POLICY=backfill
//	LOBSTAT_STORAGE_BACKEND=s3
//	LOBSTAT_STORAGE_S3_BUCKET=lob-artifacts
//	LOBSTAT_LOGGING_LEVEL=debug
//
// # Sweep Files
//
// Response sweeps are described in TOML and loaded with LoadSweep. A sweep
// names a year, a ticker list and any number of jobs; Expand turns it into
// one ResponseJob per ticker pair and shift.
package config
