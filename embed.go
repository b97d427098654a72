package inkblog

import "embed"

// EmbeddedAssets contains the static assets shipped with the engine:
// blog.js (search overlay, infinite scroll, view counter) and blog.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
