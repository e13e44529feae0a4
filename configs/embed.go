// Package configs provides embedded configuration templates.
package configs

import (
	_ "embed"
)

// ConfigJSON contains the embedded JSON configuration template.
//
//go:embed config.example.json
var ConfigJSON []byte

// EnvExample contains the embedded environment variables template.
//
//go:embed env.example
var EnvExample []byte
