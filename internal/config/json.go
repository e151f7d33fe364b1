package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/seqarchive/seqsubmit/internal/flagx"
	"github.com/seqarchive/seqsubmit/internal/transfer"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are given in seconds so operators do not need to know Go duration syntax.
type JsonConfig struct {
	ManifestPath          string   `json:"manifest"`
	BaseDir               string   `json:"base_dir"`
	LogDir                string   `json:"log_dir"`
	Threads               int      `json:"threads"`
	MaxRetries            *int     `json:"max_retries"`
	RetryPauseSeconds     int      `json:"retry_pause_seconds"`
	AttemptTimeoutSeconds int      `json:"attempt_timeout_seconds"`
	Mode                  string   `json:"mode"`
	ToolPath              string   `json:"tool_path"`
	ToolArgs              []string `json:"tool_args"`
	TokenPath             string   `json:"token_path"`
	VocabularyPath        string   `json:"vocabulary"`
	RunIDTokens           int      `json:"run_id_tokens"`
	RunIDDelimiter        string   `json:"run_id_delimiter"`
	S3Bucket              string   `json:"s3_bucket"`
	S3Region              string   `json:"s3_region"`
	S3Endpoint            string   `json:"s3_endpoint"`
	S3AccessKey           string   `json:"s3_access_key"`
	S3SecretKey           string   `json:"s3_secret_key"`
	HTTPEndpoint          string   `json:"http_endpoint"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c/-config. Absent file path means no JSON stage. Read or unmarshal
// errors panic; the CLI entry point treats that as a startup failure.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	applyJson(cfg, &jc)
}

func applyJson(cfg *Config, jc *JsonConfig) {
	if jc.ManifestPath != "" {
		cfg.ManifestPath = jc.ManifestPath
	}
	if jc.BaseDir != "" {
		cfg.BaseDir = jc.BaseDir
	}
	if jc.LogDir != "" {
		cfg.LogDir = jc.LogDir
	}
	if jc.Threads > 0 {
		cfg.Threads = jc.Threads
	}
	if jc.MaxRetries != nil && *jc.MaxRetries >= 0 {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.RetryPauseSeconds > 0 {
		cfg.RetryPause = time.Duration(jc.RetryPauseSeconds) * time.Second
	}
	if jc.AttemptTimeoutSeconds > 0 {
		cfg.AttemptTimeout = time.Duration(jc.AttemptTimeoutSeconds) * time.Second
	}
	if jc.Mode != "" {
		cfg.Mode = transfer.Mode(jc.Mode)
	}
	if jc.ToolPath != "" {
		cfg.ToolPath = jc.ToolPath
	}
	if len(jc.ToolArgs) > 0 {
		cfg.ToolArgs = jc.ToolArgs
	}
	if jc.TokenPath != "" {
		cfg.TokenPath = jc.TokenPath
	}
	if jc.VocabularyPath != "" {
		cfg.VocabularyPath = jc.VocabularyPath
	}
	if jc.RunIDTokens > 0 {
		cfg.RunIDTokens = jc.RunIDTokens
	}
	if jc.RunIDDelimiter != "" {
		cfg.RunIDDelimiter = jc.RunIDDelimiter
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3Endpoint != "" {
		cfg.S3Endpoint = jc.S3Endpoint
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.HTTPEndpoint != "" {
		cfg.HTTPEndpoint = jc.HTTPEndpoint
	}
}
