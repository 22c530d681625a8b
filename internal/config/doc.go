// Package config loads and watches the hotlist configuration file (config.yaml).
//
// Top-level types:
//   - Config{Server, Upstream, Refresh, Ranking}: full config tree parsed from YAML
//   - ServerConfig: http_port, ws_interval
//   - UpstreamConfig: url, timeout, auth, tls
//   - AuthConfig: mode (apikey|bearer|basic|none), header, key_env, token_env,
//     username, password_env; Key(), Token() and Password() resolve from
//     environment variables
//   - RefreshConfig: interval between refresh cycles
//   - RankingConfig: gravity exponent and snapshot cap
//
// Load(path) reads the YAML file, applies defaults (port 8080, 10s upstream
// timeout, 15m refresh, gravity 1.8, 50 items), then validates required
// fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. The parent directory is watched so
// atomic-save editors (vim, VS Code) that rename over the file keep working.
package config
