package lumen

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// ResourcePool is a descriptor pool sized for exactly one descriptor set of
// its owning task, plus that set. Binding indices follow the order of the
// task's resource-type list.
type ResourcePool struct {
	task     *Task
	descPool core1_0.DescriptorPool
	descSet  core1_0.DescriptorSet
}

// NewResourcePool allocates the pool and set. A task with no resources
// yields an empty pool that dispatch and draw commands simply skip.
func NewResourcePool(task *Task) (*ResourcePool, error) {
	if len(task.poolSizes) == 0 {
		task.ctxt.logger.Debug("created resource pool with no entry", "task", task.label)
		return &ResourcePool{task: task}, nil
	}

	device := task.ctxt.device

	descPool, res, err := device.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets:   1,
		PoolSizes: task.poolSizes,
	})
	if err != nil {
		return nil, backendError(res, err, "creating descriptor pool for task '%s'", task.label)
	}

	descSets, res, err := device.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: descPool,
		SetLayouts:     []core1_0.DescriptorSetLayout{task.descSetLayout},
	})
	if err != nil {
		descPool.Destroy(nil)
		return nil, backendError(res, err, "allocating descriptor set for task '%s'", task.label)
	}

	task.ctxt.logger.Debug("created resource pool", "task", task.label)
	return &ResourcePool{task: task, descPool: descPool, descSet: descSets[0]}, nil
}

func (p *ResourcePool) resourceTypeAt(index int) (ResourceType, error) {
	if p.descPool == nil {
		return 0, preconditionf("cannot bind to empty resource pool")
	}
	if index < 0 || index >= len(p.task.resourceTypes) {
		return 0, preconditionf("binding index %d out of range for task '%s'", index, p.task.label)
	}
	return p.task.resourceTypes[index], nil
}

// BindBuffer points the binding at index to a buffer view. The task must
// have declared a buffer resource type there.
func (p *ResourcePool) BindBuffer(index int, view BufferView) error {
	resourceType, err := p.resourceTypeAt(index)
	if err != nil {
		return err
	}

	var descType core1_0.DescriptorType
	switch resourceType {
	case ResourceTypeUniformBuffer:
		descType = core1_0.DescriptorTypeUniformBuffer
	case ResourceTypeStorageBuffer:
		descType = core1_0.DescriptorTypeStorageBuffer
	default:
		return preconditionf("binding %d of task '%s' is %s, not a buffer", index, p.task.label, resourceType)
	}

	err = p.task.ctxt.device.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          p.descSet,
			DstBinding:      index,
			DstArrayElement: 0,
			DescriptorType:  descType,
			BufferInfo: []core1_0.DescriptorBufferInfo{
				{
					Buffer: view.Buffer.buffer,
					Offset: view.Offset,
					Range:  view.Size,
				},
			},
		},
	}, nil)
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "binding buffer '%s'", view.Buffer.cfg.Label)
	}

	p.task.ctxt.logger.Debug("bound pool resource",
		"index", index, "buffer", view.Buffer.cfg.Label)
	return nil
}

// BindImage points the binding at index to an image view. The task must
// have declared an image resource type there. Storage images bind in the
// GENERAL layout, sampled images in SHADER_READ_ONLY_OPTIMAL.
func (p *ResourcePool) BindImage(index int, view ImageView) error {
	resourceType, err := p.resourceTypeAt(index)
	if err != nil {
		return err
	}

	imageInfo := core1_0.DescriptorImageInfo{
		ImageView: view.Image.view,
	}
	var descType core1_0.DescriptorType
	switch resourceType {
	case ResourceTypeSampledImage:
		descType = core1_0.DescriptorTypeCombinedImageSampler
		imageInfo.ImageLayout = core1_0.ImageLayoutShaderReadOnlyOptimal
	case ResourceTypeStorageImage:
		descType = core1_0.DescriptorTypeStorageImage
		imageInfo.ImageLayout = core1_0.ImageLayoutGeneral
	default:
		return preconditionf("binding %d of task '%s' is %s, not an image", index, p.task.label, resourceType)
	}

	err = p.task.ctxt.device.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:          p.descSet,
			DstBinding:      index,
			DstArrayElement: 0,
			DescriptorType:  descType,
			ImageInfo:       []core1_0.DescriptorImageInfo{imageInfo},
		},
	}, nil)
	if err != nil {
		return backendError(core1_0.VKErrorUnknown, err, "binding image '%s'", view.Image.cfg.Label)
	}

	p.task.ctxt.logger.Debug("bound pool resource",
		"index", index, "image", view.Image.cfg.Label)
	return nil
}

// Destroy releases the descriptor pool (and with it the set). The pool must
// not be referenced by any in-flight submission.
func (p *ResourcePool) Destroy() {
	if p.descPool == nil {
		return
	}
	p.descPool.Destroy(nil)
	p.descPool = nil
	p.task.ctxt.logger.Debug("destroyed resource pool", "task", p.task.label)
}
