// Package tbclient provides the main entry point for creating Tablebase API
// clients.
//
// New resolves configuration with the documented precedence (explicit Config
// field, then TABLEBASE_* environment variables, then built-in defaults),
// normalizes the endpoint URL, and returns a ready tablebase.Client:
//
//	cli, err := tbclient.New(&tablebase.Config{APIKey: "key..."})
//	if err != nil { ... }
//	records := cli.Records("appBase", "Tasks")
package tbclient
