// Package shaders embeds the WGSL sources the core needs for window blits.
package shaders

import (
	_ "embed"
)

//go:embed blit_color.wgsl
var BlitColorWGSL string

//go:embed blit_depth.wgsl
var BlitDepthWGSL string
