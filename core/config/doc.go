// Package config provides configuration management for emby-tagger.
//
// It uses Viper to read environment variables, optionally seeded from a .env
// file through godotenv. Every field declares its key with a mapstructure tag
// and its fallback with a default tag.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and request limits
//   - Database: sqlite file or MySQL connection
//   - Log: level and format
//   - Storage: S3/MinIO sync report archive
//   - Emby: remote client timeout and retries
//   - Sync: fuzzy threshold, candidate cap and active server cache TTL
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.FuzzyThreshold)
package config
