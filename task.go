package lumen

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Task is a compiled pipeline together with the layout objects derived from
// its resource-type list. Resource pools are sized from the precomputed
// descriptor-pool sizes without re-parsing the list.
type Task struct {
	ctxt          *Context
	descSetLayout core1_0.DescriptorSetLayout
	pipeLayout    core1_0.PipelineLayout
	pipeline      core1_0.Pipeline
	bindPoint     core1_0.PipelineBindPoint

	resourceTypes []ResourceType
	shaderModules []core1_0.ShaderModule
	poolSizes     []core1_0.DescriptorPoolSize

	label string
}

// descriptorTypeOf maps a resource type to its descriptor kind. Sampled
// images bind as combined image-samplers carrying the context's fast
// sampler.
func descriptorTypeOf(resourceType ResourceType) (core1_0.DescriptorType, error) {
	switch resourceType {
	case ResourceTypeUniformBuffer:
		return core1_0.DescriptorTypeUniformBuffer, nil
	case ResourceTypeStorageBuffer:
		return core1_0.DescriptorTypeStorageBuffer, nil
	case ResourceTypeSampledImage:
		return core1_0.DescriptorTypeCombinedImageSampler, nil
	case ResourceTypeStorageImage:
		return core1_0.DescriptorTypeStorageImage, nil
	}
	return 0, preconditionf("unexpected resource type %d", resourceType)
}

// descriptorPoolSizes totals the resource-type list per descriptor kind:
// one entry per kind, counts summed across bindings.
func descriptorPoolSizes(resourceTypes []ResourceType) ([]core1_0.DescriptorPoolSize, error) {
	counts := map[core1_0.DescriptorType]int{}
	var order []core1_0.DescriptorType
	for _, resourceType := range resourceTypes {
		descType, err := descriptorTypeOf(resourceType)
		if err != nil {
			return nil, err
		}
		if counts[descType] == 0 {
			order = append(order, descType)
		}
		counts[descType]++
	}

	sizes := make([]core1_0.DescriptorPoolSize, 0, len(order))
	for _, descType := range order {
		sizes = append(sizes, core1_0.DescriptorPoolSize{
			Type:            descType,
			DescriptorCount: counts[descType],
		})
	}
	return sizes, nil
}

// createDescriptorSetLayout builds the positional layout: binding index =
// list position, one descriptor each, visible to all graphics stages and
// compute.
func createDescriptorSetLayout(ctxt *Context, resourceTypes []ResourceType) (core1_0.DescriptorSetLayout, error) {
	bindings := make([]core1_0.DescriptorSetLayoutBinding, 0, len(resourceTypes))
	for i, resourceType := range resourceTypes {
		descType, err := descriptorTypeOf(resourceType)
		if err != nil {
			return nil, err
		}
		binding := core1_0.DescriptorSetLayoutBinding{
			Binding:         i,
			DescriptorType:  descType,
			DescriptorCount: 1,
			StageFlags:      core1_0.StageAllGraphics | core1_0.StageCompute,
		}
		if resourceType == ResourceTypeSampledImage {
			binding.ImmutableSamplers = []core1_0.Sampler{ctxt.fastSampler}
		}
		bindings = append(bindings, binding)
	}

	layout, res, err := ctxt.device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: bindings,
	})
	if err != nil {
		return nil, backendError(res, err, "creating descriptor set layout")
	}
	return layout, nil
}

func createPipelineLayout(ctxt *Context, descSetLayout core1_0.DescriptorSetLayout) (core1_0.PipelineLayout, error) {
	layout, res, err := ctxt.device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{descSetLayout},
	})
	if err != nil {
		return nil, backendError(res, err, "creating pipeline layout")
	}
	return layout, nil
}

func createShaderModule(ctxt *Context, code []uint32) (core1_0.ShaderModule, error) {
	if len(code) == 0 {
		return nil, preconditionf("shader bytecode must not be empty")
	}
	module, res, err := ctxt.device.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return nil, backendError(res, err, "creating shader module")
	}
	return module, nil
}

// ComputeTaskConfig parameterizes compute task construction.
type ComputeTaskConfig struct {
	// Label tags the task in log output.
	Label string
	// EntryName is the shader entry point.
	EntryName string
	// Code is the SPIR-V bytecode, as 32-bit words.
	Code []uint32
	// ResourceTypes declares the bindings, in binding-index order.
	ResourceTypes []ResourceType
	// WorkgroupSize fixes the shader's local size through specialization
	// constants 0, 1 and 2; shaders declare local_size_{x,y,z}_id = 0,1,2.
	WorkgroupSize [3]int
}

// NewComputeTask compiles a compute pipeline with the workgroup size
// specialized in.
func NewComputeTask(ctxt *Context, cfg ComputeTaskConfig) (*Task, error) {
	poolSizes, err := descriptorPoolSizes(cfg.ResourceTypes)
	if err != nil {
		return nil, err
	}
	descSetLayout, err := createDescriptorSetLayout(ctxt, cfg.ResourceTypes)
	if err != nil {
		return nil, err
	}
	pipeLayout, err := createPipelineLayout(ctxt, descSetLayout)
	if err != nil {
		descSetLayout.Destroy(nil)
		return nil, err
	}
	module, err := createShaderModule(ctxt, cfg.Code)
	if err != nil {
		pipeLayout.Destroy(nil)
		descSetLayout.Destroy(nil)
		return nil, err
	}

	pipelines, res, err := ctxt.device.CreateComputePipelines(nil, nil, []core1_0.ComputePipelineCreateInfo{
		{
			Stage: core1_0.PipelineShaderStageCreateInfo{
				Stage:  core1_0.StageCompute,
				Module: module,
				Name:   cfg.EntryName,
				SpecializationInfo: map[uint32]any{
					0: int32(cfg.WorkgroupSize[0]),
					1: int32(cfg.WorkgroupSize[1]),
					2: int32(cfg.WorkgroupSize[2]),
				},
			},
			Layout: pipeLayout,
		},
	})
	if err != nil {
		module.Destroy(nil)
		pipeLayout.Destroy(nil)
		descSetLayout.Destroy(nil)
		return nil, backendError(res, err, "creating compute task '%s'", cfg.Label)
	}

	ctxt.logger.Debug("created compute task", "task", cfg.Label)
	return &Task{
		ctxt:          ctxt,
		descSetLayout: descSetLayout,
		pipeLayout:    pipeLayout,
		pipeline:      pipelines[0],
		bindPoint:     core1_0.PipelineBindPointCompute,
		resourceTypes: append([]ResourceType(nil), cfg.ResourceTypes...),
		shaderModules: []core1_0.ShaderModule{module},
		poolSizes:     poolSizes,
		label:         cfg.Label,
	}, nil
}

// GraphicsTaskConfig parameterizes graphics task construction.
type GraphicsTaskConfig struct {
	// Label tags the task in log output.
	Label string
	// VertexEntryName and FragmentEntryName are the stage entry points.
	VertexEntryName   string
	FragmentEntryName string
	// VertexCode and FragmentCode are SPIR-V bytecode, as 32-bit words.
	VertexCode   []uint32
	FragmentCode []uint32
	// ResourceTypes declares the bindings, in binding-index order.
	ResourceTypes []ResourceType
	// VertexInputs declares the vertex attributes, in location order; the
	// interleaved layout is inferred from the formats.
	VertexInputs []VertexInput
	// Topology selects the primitive topology.
	Topology Topology
}

func primitiveTopology(topology Topology) (core1_0.PrimitiveTopology, error) {
	switch topology {
	case TopologyPoint:
		return core1_0.PrimitiveTopologyPointList, nil
	case TopologyLine:
		return core1_0.PrimitiveTopologyLineList, nil
	case TopologyTriangle:
		return core1_0.PrimitiveTopologyTriangleList, nil
	}
	return 0, preconditionf("unexpected topology %d", topology)
}

// NewGraphicsTask compiles a graphics pipeline targeting the given render
// pass. The viewport and scissor cover the pass's whole framebuffer; the rest
// of the state is fixed: no primitive restart, no culling, counter-clockwise
// front face, filled polygons, one sample, depth test and write with LESS,
// blending disabled with a full color write mask, and no dynamic state.
func NewGraphicsTask(pass *RenderPass, cfg GraphicsTaskConfig) (*Task, error) {
	ctxt := pass.ctxt

	topology, err := primitiveTopology(cfg.Topology)
	if err != nil {
		return nil, err
	}
	vertexBindings, vertexAttributes, err := inferVertexInput(cfg.VertexInputs)
	if err != nil {
		return nil, err
	}
	poolSizes, err := descriptorPoolSizes(cfg.ResourceTypes)
	if err != nil {
		return nil, err
	}

	descSetLayout, err := createDescriptorSetLayout(ctxt, cfg.ResourceTypes)
	if err != nil {
		return nil, err
	}
	pipeLayout, err := createPipelineLayout(ctxt, descSetLayout)
	if err != nil {
		descSetLayout.Destroy(nil)
		return nil, err
	}
	vertModule, err := createShaderModule(ctxt, cfg.VertexCode)
	if err != nil {
		pipeLayout.Destroy(nil)
		descSetLayout.Destroy(nil)
		return nil, err
	}
	fragModule, err := createShaderModule(ctxt, cfg.FragmentCode)
	if err != nil {
		vertModule.Destroy(nil)
		pipeLayout.Destroy(nil)
		descSetLayout.Destroy(nil)
		return nil, err
	}

	cleanup := func() {
		fragModule.Destroy(nil)
		vertModule.Destroy(nil)
		pipeLayout.Destroy(nil)
		descSetLayout.Destroy(nil)
	}

	pipelines, res, err := ctxt.device.CreateGraphicsPipelines(nil, nil, []core1_0.GraphicsPipelineCreateInfo{
		{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				{
					Stage:  core1_0.StageVertex,
					Module: vertModule,
					Name:   cfg.VertexEntryName,
				},
				{
					Stage:  core1_0.StageFragment,
					Module: fragModule,
					Name:   cfg.FragmentEntryName,
				},
			},
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{
				VertexBindingDescriptions:   vertexBindings,
				VertexAttributeDescriptions: vertexAttributes,
			},
			InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
				Topology:               topology,
				PrimitiveRestartEnable: false,
			},
			ViewportState: &core1_0.PipelineViewportStateCreateInfo{
				Viewports: []core1_0.Viewport{
					{
						X:        0,
						Y:        0,
						Width:    float32(pass.area.Extent.Width),
						Height:   float32(pass.area.Extent.Height),
						MinDepth: 0,
						MaxDepth: 1,
					},
				},
				Scissors: []core1_0.Rect2D{pass.area},
			},
			RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
				PolygonMode: core1_0.PolygonModeFill,
				CullMode:    core1_0.CullModeFlags(0),
				FrontFace:   core1_0.FrontFaceCounterClockwise,
				LineWidth:   1.0,
			},
			MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
				RasterizationSamples: core1_0.Samples1,
				MinSampleShading:     1.0,
			},
			DepthStencilState: &core1_0.PipelineDepthStencilStateCreateInfo{
				DepthTestEnable:  true,
				DepthWriteEnable: true,
				DepthCompareOp:   core1_0.CompareOpLess,
				MinDepthBounds:   0,
				MaxDepthBounds:   1,
			},
			ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
				Attachments: []core1_0.PipelineColorBlendAttachmentState{
					{
						BlendEnabled: false,
						ColorWriteMask: core1_0.ColorComponentRed |
							core1_0.ColorComponentGreen |
							core1_0.ColorComponentBlue |
							core1_0.ColorComponentAlpha,
					},
				},
			},
			Layout:            pipeLayout,
			RenderPass:        pass.pass,
			Subpass:           0,
			BasePipelineIndex: -1,
		},
	})
	if err != nil {
		cleanup()
		return nil, backendError(res, err, "creating graphics task '%s'", cfg.Label)
	}

	ctxt.logger.Debug("created graphics task", "task", cfg.Label)
	return &Task{
		ctxt:          ctxt,
		descSetLayout: descSetLayout,
		pipeLayout:    pipeLayout,
		pipeline:      pipelines[0],
		bindPoint:     core1_0.PipelineBindPointGraphics,
		resourceTypes: append([]ResourceType(nil), cfg.ResourceTypes...),
		shaderModules: []core1_0.ShaderModule{vertModule, fragModule},
		poolSizes:     poolSizes,
		label:         cfg.Label,
	}, nil
}

// Label returns the task's debug label.
func (t *Task) Label() string {
	return t.label
}

// ResourceTypes returns the task's binding declaration, in binding order.
func (t *Task) ResourceTypes() []ResourceType {
	return t.resourceTypes
}

// Destroy releases the pipeline, shader modules and layouts. The task must
// not be referenced by any in-flight submission.
func (t *Task) Destroy() {
	if t.pipeline == nil {
		return
	}
	t.pipeline.Destroy(nil)
	for _, module := range t.shaderModules {
		module.Destroy(nil)
	}
	t.shaderModules = nil
	t.pipeLayout.Destroy(nil)
	t.descSetLayout.Destroy(nil)
	t.pipeline = nil
	t.ctxt.logger.Debug("destroyed task", "task", t.label)
}
