package frontend

import "embed"

// Assets holds the fables document bundle. Paths inside are rooted at dist/.
//
//go:embed all:dist
var Assets embed.FS
