package rendergraph

import (
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowInfoFromGLFW wraps a GLFW window into a WindowInfo using its current
// framebuffer size.
func WindowInfoFromGLFW(name string, win *glfw.Window) WindowInfo {
	width, height := win.GetFramebufferSize()
	return WindowInfo{
		Name:       name,
		Descriptor: wgpuglfw.GetSurfaceDescriptor(win),
		Width:      uint32(width),
		Height:     uint32(height),
	}
}
