package main

import (
	"embed"
)

// embeddedAssets contains the default page templates and stylesheet.
//
//go:embed assets
var embeddedAssets embed.FS
