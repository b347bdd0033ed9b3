package lumen

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// RenderPassConfig parameterizes render pass construction.
type RenderPassConfig struct {
	// Attachment is the single color attachment; the pass references but
	// does not own it. It must carry the Attachment usage.
	Attachment *Image
	// ClearColor is the value the attachment is cleared to when the pass
	// begins.
	ClearColor [4]float32
}

// RenderPass is a single-subpass color pass bound to one attachment image.
// The caller transitions the attachment into and out of
// COLOR_ATTACHMENT_OPTIMAL around the pass with image barriers.
type RenderPass struct {
	ctxt        *Context
	attachment  *Image
	pass        core1_0.RenderPass
	framebuffer core1_0.Framebuffer
	area        core1_0.Rect2D
	clearValue  core1_0.ClearValueFloat
}

// NewRenderPass builds the pass and a framebuffer sized to the attachment.
func NewRenderPass(ctxt *Context, cfg RenderPassConfig) (*RenderPass, error) {
	attachment := cfg.Attachment
	if attachment == nil {
		return nil, preconditionf("render pass requires an attachment image")
	}
	if attachment.cfg.Usage&ImageUsageAttachment == 0 {
		return nil, preconditionf("image '%s' was not declared as an attachment", attachment.cfg.Label)
	}

	pass, res, err := ctxt.device.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:  attachment.cfg.Format,
				Samples: core1_0.Samples1,
				LoadOp:  core1_0.AttachmentLoadOpClear,
				StoreOp: core1_0.AttachmentStoreOpStore,
				// Layout transitions stay in the caller's hands.
				InitialLayout: core1_0.ImageLayoutColorAttachmentOptimal,
				FinalLayout:   core1_0.ImageLayoutColorAttachmentOptimal,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, backendError(res, err, "creating render pass")
	}

	framebuffer, res, err := ctxt.device.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  pass,
		Attachments: []core1_0.ImageView{attachment.view},
		Width:       attachment.cfg.Width,
		Height:      attachment.cfg.Height,
		Layers:      1,
	})
	if err != nil {
		pass.Destroy(nil)
		return nil, backendError(res, err, "creating framebuffer")
	}

	ctxt.logger.Debug("created render pass", "attachment", attachment.cfg.Label)
	return &RenderPass{
		ctxt:        ctxt,
		attachment:  attachment,
		pass:        pass,
		framebuffer: framebuffer,
		area: core1_0.Rect2D{
			Extent: core1_0.Extent2D{
				Width:  attachment.cfg.Width,
				Height: attachment.cfg.Height,
			},
		},
		clearValue: core1_0.ClearValueFloat(cfg.ClearColor),
	}, nil
}

// Attachment returns the pass's color attachment image.
func (p *RenderPass) Attachment() *Image {
	return p.attachment
}

// Destroy releases the framebuffer and the pass; the attachment image is
// untouched.
func (p *RenderPass) Destroy() {
	if p.pass == nil {
		return
	}
	p.framebuffer.Destroy(nil)
	p.pass.Destroy(nil)
	p.pass = nil
	p.ctxt.logger.Debug("destroyed render pass")
}
