// Package configs provides the embedded configuration template for patchbay.
//
// The template is embedded at build time using Go's //go:embed directive,
// so it is available in all distributions:
//   - Source builds (go install)
//   - Binary releases
//
// It is used by:
//   - cmd/patchbay/cmd/config.go → `patchbay config init` creates the user
//     config at ~/.config/patchbay/config.yaml
//
// Configuration precedence (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. User config (~/.config/patchbay/config.yaml)
//  3. Environment variables (PATCHBAY_*)
//
// To modify the template, edit config.example.yaml in this directory and
// rebuild.
package configs

import _ "embed"

// ConfigTemplate is the commented starter configuration.
// Created by: `patchbay config init` at ~/.config/patchbay/config.yaml
// Contains: server transport, search defaults, and one commented block
// per shipped connector with its credential keys and environment fallbacks.
//
//go:embed config.example.yaml
var ConfigTemplate string
