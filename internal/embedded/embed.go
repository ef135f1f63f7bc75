package embedded

import (
	"embed"
)

// FS embeds the canonical game definitions at build time.
//
//go:embed catalog/*
var FS embed.FS

// GamesFile is the path of the definition list inside FS.
const GamesFile = "catalog/games.yaml"
