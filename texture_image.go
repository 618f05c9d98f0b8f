package rendergraph

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// WriteTextureImage uploads an image into mip level mip of a writable RGBA
// texture, scaling it to the mip's extent when the sizes differ.
func (c *Core) WriteTextureImage(texture int, mip uint32, img image.Image) error {
	if texture < 0 || texture >= len(c.vm.m.Textures) {
		return modelErr(UnknownReference, "texture", texture)
	}
	decl := c.vm.m.Textures[texture]
	if decl.Kind == TextureDepth || (decl.Kind == TextureColor && decl.Channels != ChannelsRGBA) {
		return fmt.Errorf("texture %d is not an RGBA texture", texture)
	}
	if decl.Kind == TextureColor && decl.Texel != TexelUnorm8 {
		return fmt.Errorf("texture %d does not hold 8-bit texels", texture)
	}

	extent := decl.mipExtent(mip)
	bounds := image.Rect(0, 0, int(extent.Width), int(extent.Height))
	dst := image.NewNRGBA(bounds)
	if img.Bounds().Dx() == bounds.Dx() && img.Bounds().Dy() == bounds.Dy() {
		draw.Draw(dst, bounds, img, img.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, bounds, img, img.Bounds(), draw.Src, nil)
	}

	return c.WriteTexture(texture,
		TextureRegion{Width: extent.Width, Height: extent.Height},
		mip,
		LayerRange{Base: 0, Count: 1},
		TextureLayout{BytesPerRow: uint32(dst.Stride), RowsPerLayer: extent.Height},
		dst.Pix)
}
