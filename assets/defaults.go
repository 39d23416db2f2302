package assets

import (
	_ "embed"
)

// DefaultPersona contains the embedded default system prompt.
//
//go:embed defaults/persona.md
var DefaultPersona string
