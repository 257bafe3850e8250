// Package config loads and watches the crowdplay configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Bot, Policy, Debug} — full config tree parsed from YAML
//   - BotConfig — server address, transport (tcp|websocket), tls,
//     websocket_url, nick, token_env, channel, journal_path, loop and
//     window geometry; Token() resolves the OAuth token from the
//     environment so the secret never lives in the file
//   - PolicyConfig — send_enabled plus the activity thresholds and the
//     outbound rate floor
//   - DebugConfig — optional debug listener address and the WebSocket
//     broadcast interval
//
// Load(path) reads the YAML file, applies the production defaults (100ms
// buckets, 100/20 windows, 10ms poll, journal every 10 rotations), then
// validates required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after each
// reload; a reload that fails to parse keeps the previous config active.
package config
