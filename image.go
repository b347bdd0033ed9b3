package lumen

import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/core1_0"
)

// ImageConfig is the immutable description of an image. Only 2D color images
// are expressible; a Depth greater than one is rejected outright.
type ImageConfig struct {
	// Label tags the image in log output.
	Label string
	// Width and Height are the image extent in texels.
	Width  int
	Height int
	// Depth may be left zero; any value above one is a precondition
	// violation.
	Depth int
	// Format must be one of the supported color formats.
	Format core1_0.Format
	// Usage declares every role the image will serve. Staging excludes all
	// other roles.
	Usage ImageUsage
	// HostAccess is the host's access pattern, driving memory-type
	// selection. Only staging images are sensibly mappable.
	HostAccess MemoryAccess
}

// Image is a typed device allocation with its backing memory and, unless it
// is staging-only, a default 2D view over its single mip and layer.
type Image struct {
	ctxt      *Context
	memory    core1_0.DeviceMemory
	image     core1_0.Image
	view      core1_0.ImageView
	cfg       ImageConfig
	isStaging bool
}

// ImageView is a non-owning 2D window of an image, used at binding and
// command-recording time.
type ImageView struct {
	Image   *Image
	XOffset int
	YOffset int
	Width   int
	Height  int
}

func validateImageConfig(cfg ImageConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return preconditionf("image '%s' must have a positive extent", cfg.Label)
	}
	if cfg.Depth > 1 {
		return preconditionf("image '%s' requests a 3D extent; only 2D images are supported", cfg.Label)
	}
	if cfg.Usage&ImageUsageStaging != 0 && cfg.Usage != ImageUsageStaging {
		return preconditionf("staging image '%s' can only be used for transfer", cfg.Label)
	}
	if cfg.Usage == ImageUsageNone {
		return preconditionf("image '%s' must declare at least one usage", cfg.Label)
	}
	return nil
}

// imageUsageFlags lowers the role bitset to Vulkan usage flags. Descriptor
// roles keep their transfer companions; attachments additionally stay
// sampleable so passes can feed later ones.
func imageUsageFlags(usage ImageUsage) core1_0.ImageUsageFlags {
	var flags core1_0.ImageUsageFlags
	if usage&ImageUsageSampled != 0 {
		flags |= core1_0.ImageUsageSampled | core1_0.ImageUsageTransferDst
	}
	if usage&ImageUsageStorage != 0 {
		flags |= core1_0.ImageUsageStorage |
			core1_0.ImageUsageTransferSrc | core1_0.ImageUsageTransferDst
	}
	if usage&ImageUsageAttachment != 0 {
		flags |= core1_0.ImageUsageTransferSrc | core1_0.ImageUsageTransferDst |
			core1_0.ImageUsageSampled | core1_0.ImageUsageColorAttachment |
			core1_0.ImageUsageInputAttachment
	}
	if usage&ImageUsageStaging != 0 {
		flags |= core1_0.ImageUsageTransferSrc | core1_0.ImageUsageTransferDst
	}
	return flags
}

// NewImage creates a 2D image and binds it to freshly-allocated device
// memory. Staging images use linear tiling and a preinitialized layout so
// the host can fill them by mapping; everything else is optimally tiled and
// starts undefined.
func NewImage(ctxt *Context, cfg ImageConfig) (*Image, error) {
	if err := validateImageConfig(cfg); err != nil {
		return nil, err
	}
	if _, err := formatTexelSize(cfg.Format); err != nil {
		return nil, err
	}

	isStaging := cfg.Usage == ImageUsageStaging
	usage := imageUsageFlags(cfg.Usage)

	tiling := core1_0.ImageTilingOptimal
	initialLayout := core1_0.ImageLayoutUndefined
	if isStaging {
		tiling = core1_0.ImageTilingLinear
		initialLayout = core1_0.ImageLayoutPreInitialized
	}

	// Let the driver veto the use case before committing an allocation.
	_, res, err := ctxt.physicalDevice.ImageFormatProperties(
		cfg.Format, core1_0.ImageType2D, tiling, usage, 0)
	if err != nil {
		return nil, unsupportedf("image '%s': format %d unusable with usage %s: %s",
			cfg.Label, cfg.Format, cfg.Usage, res)
	}

	image, res, err := ctxt.device.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    cfg.Format,
		Extent: core1_0.Extent3D{
			Width:  cfg.Width,
			Height: cfg.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       core1_0.Samples1,
		Tiling:        tiling,
		Usage:         usage,
		SharingMode:   core1_0.SharingModeExclusive,
		InitialLayout: initialLayout,
	})
	if err != nil {
		return nil, backendError(res, err, "creating image '%s'", cfg.Label)
	}

	requirements := image.MemoryRequirements()
	memoryTypeIndex, err := ctxt.memoryTypeFor(cfg.HostAccess, requirements.MemoryTypeBits)
	if err != nil {
		image.Destroy(nil)
		return nil, err
	}

	memory, res, err := ctxt.device.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		image.Destroy(nil)
		return nil, backendError(res, err, "allocating memory for image '%s'", cfg.Label)
	}

	res, err = image.BindImageMemory(memory, 0)
	if err != nil {
		memory.Free(nil)
		image.Destroy(nil)
		return nil, backendError(res, err, "binding memory for image '%s'", cfg.Label)
	}

	var view core1_0.ImageView
	if !isStaging {
		view, res, err = ctxt.device.CreateImageView(nil, core1_0.ImageViewCreateInfo{
			Image:    image,
			ViewType: core1_0.ImageViewType2D,
			Format:   cfg.Format,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			memory.Free(nil)
			image.Destroy(nil)
			return nil, backendError(res, err, "creating view for image '%s'", cfg.Label)
		}
	}

	ctxt.logger.Debug("created image", "image", cfg.Label)
	return &Image{
		ctxt:      ctxt,
		memory:    memory,
		image:     image,
		view:      view,
		cfg:       cfg,
		isStaging: isStaging,
	}, nil
}

// Config returns the configuration the image was built with.
func (img *Image) Config() ImageConfig {
	return img.cfg
}

// IsStaging reports whether the image is a host-fed linear staging image.
func (img *Image) IsStaging() bool {
	return img.isStaging
}

// View returns a window of the image.
func (img *Image) View(xOffset, yOffset, width, height int) ImageView {
	return ImageView{
		Image:   img,
		XOffset: xOffset,
		YOffset: yOffset,
		Width:   width,
		Height:  height,
	}
}

// FullView returns a view covering the whole image.
func (img *Image) FullView() ImageView {
	return img.View(0, 0, img.cfg.Width, img.cfg.Height)
}

// Map exposes the image's subresource memory and reports its row pitch in
// bytes. Only meaningful for linear (staging) images.
func (v ImageView) Map() (unsafe.Pointer, int, error) {
	layout := v.Image.image.SubresourceLayout(&core1_0.ImageSubresource{
		AspectMask: core1_0.ImageAspectColor,
		MipLevel:   0,
		ArrayLayer: 0,
	})

	ptr, res, err := v.Image.memory.Map(layout.Offset, layout.Size, 0)
	if err != nil {
		return nil, 0, backendError(res, err, "mapping image '%s'", v.Image.cfg.Label)
	}
	v.Image.ctxt.logger.Debug("mapped image",
		"image", v.Image.cfg.Label,
		"x", v.XOffset, "y", v.YOffset, "width", v.Width, "height", v.Height)
	return ptr, layout.RowPitch, nil
}

// Unmap releases the mapping created by Map.
func (v ImageView) Unmap() {
	v.Image.memory.Unmap()
	v.Image.ctxt.logger.Debug("unmapped image", "image", v.Image.cfg.Label)
}

// Destroy releases the image, its default view and its memory. The image
// must not be referenced by any in-flight submission.
func (img *Image) Destroy() {
	if img.image == nil {
		return
	}
	if img.view != nil {
		img.view.Destroy(nil)
	}
	img.image.Destroy(nil)
	img.memory.Free(nil)
	img.image = nil
	img.ctxt.logger.Debug("destroyed image", "image", img.cfg.Label)
}
