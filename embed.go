package policydesk

import "embed"

// EmbeddedAssets contains assets shipped with the site: the viewport gate
// driver script and the built-in static pages.
//
//go:embed embedded
var EmbeddedAssets embed.FS
