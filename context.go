package lumen

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_portability_subset"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// ContextConfig parameterizes Context construction. The zero value selects
// device #0 and the default logger.
type ContextConfig struct {
	// Label tags the context in log output.
	Label string
	// DeviceIndex selects the physical device, in enumeration order.
	DeviceIndex int
	// Logger receives lifecycle and capability diagnostics. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

type contextSubmitDetail struct {
	queueFamilyIndex int
	queue            core1_0.Queue
}

// Context owns a logical device together with the per-submit-type queue
// mapping, the per-host-access memory-type ranking, and the shared fast
// sampler. Every other object in this package is created from a Context and
// must be destroyed before it.
type Context struct {
	logger         *slog.Logger
	physicalDevice core1_0.PhysicalDevice
	device         core1_0.Device
	props          *core1_0.PhysicalDeviceProperties
	memoryTypes    []core1_0.MemoryType

	submitDetails map[SubmitType]*contextSubmitDetail
	memoryRank    [4][]int

	fastSampler       core1_0.Sampler
	timestampsAllowed bool

	cfg ContextConfig
}

type submitTypeRequirement struct {
	submitType SubmitType
	queueFlags core1_0.QueueFlags
	commands   []string
}

// Graphics before compute. Each submit type picks its family independently;
// submit types that land on the same family share one queue.
var submitTypeRequirements = []submitTypeRequirement{
	{SubmitTypeGraphics, core1_0.QueueGraphics, []string{"Draw", "DrawIndexed", "BeginRenderPass", "EndRenderPass"}},
	{SubmitTypeCompute, core1_0.QueueCompute, []string{"Dispatch"}},
}

// pickQueueFamilies maps every submit type to a queue family index, or -1
// when no family qualifies. Families are scanned grouped by set-bit count
// descending so that a family with more orthogonal capabilities is preferred
// and submit types collapse onto as few distinct families as possible.
func pickQueueFamilies(families []*core1_0.QueueFamilyProperties) map[SubmitType]int {
	type trait struct {
		index int
		flags core1_0.QueueFlags
	}
	byPopcount := map[int][]trait{}
	var popcounts []int
	for i, family := range families {
		if family.QueueCount == 0 {
			continue
		}
		n := bits.OnesCount32(uint32(family.QueueFlags))
		if _, ok := byPopcount[n]; !ok {
			popcounts = append(popcounts, n)
		}
		byPopcount[n] = append(byPopcount[n], trait{i, family.QueueFlags})
	}
	slices.Sort(popcounts)

	picked := make(map[SubmitType]int, len(submitTypeRequirements))
	for _, req := range submitTypeRequirements {
		picked[req.submitType] = -1
		for gi := len(popcounts) - 1; gi >= 0; gi-- {
			if picked[req.submitType] >= 0 {
				break
			}
			for _, t := range byPopcount[popcounts[gi]] {
				if t.flags&req.queueFlags == req.queueFlags {
					picked[req.submitType] = t.index
					break
				}
			}
		}
	}
	return picked
}

// memoryPriority scores one memory type for a host access class. Higher is
// better; zero means "only if nothing else fits". The lookup is an exact
// property-set match, so exotic combinations fall through to zero rather
// than being mistaken for a close-enough fit.
func memoryPriority(hostAccess MemoryAccess, props core1_0.MemoryPropertyFlags) int {
	deviceLocal := core1_0.MemoryPropertyDeviceLocal
	hostVisible := core1_0.MemoryPropertyHostVisible
	hostCoherent := core1_0.MemoryPropertyHostCoherent
	hostCached := core1_0.MemoryPropertyHostCached

	var lut []core1_0.MemoryPropertyFlags
	switch hostAccess {
	case MemoryAccessNone:
		if props&deviceLocal != 0 {
			return 1
		}
		return 0
	case MemoryAccessReadOnly:
		lut = []core1_0.MemoryPropertyFlags{
			hostVisible | hostCached | hostCoherent,
			hostVisible | hostCached,
			hostVisible | hostCoherent,
			deviceLocal | hostVisible | hostCoherent,
			deviceLocal | hostVisible | hostCached,
			deviceLocal | hostVisible | hostCached | hostCoherent,
		}
	case MemoryAccessWriteOnly:
		lut = []core1_0.MemoryPropertyFlags{
			deviceLocal | hostVisible | hostCoherent,
			deviceLocal | hostVisible | hostCached | hostCoherent,
			deviceLocal | hostVisible | hostCached,
			hostVisible | hostCoherent,
			hostVisible | hostCached | hostCoherent,
			hostVisible | hostCached,
		}
	case MemoryAccessReadWrite:
		lut = []core1_0.MemoryPropertyFlags{
			deviceLocal | hostVisible | hostCached | hostCoherent,
			deviceLocal | hostVisible | hostCoherent,
			deviceLocal | hostVisible | hostCached,
			hostVisible | hostCoherent,
			hostVisible | hostCached | hostCoherent,
			hostVisible | hostCached,
		}
	default:
		return 0
	}
	for i, want := range lut {
		if props == want {
			return len(lut) - i
		}
	}
	return 0
}

// rankMemoryTypes orders memory type indices by descending priority for one
// host access class. The sort is stable so equally-scored types keep the
// driver's declaration order.
func rankMemoryTypes(hostAccess MemoryAccess, types []core1_0.MemoryType) []int {
	rank := make([]int, len(types))
	for i := range rank {
		rank[i] = i
	}
	slices.SortStableFunc(rank, func(a, b int) bool {
		return memoryPriority(hostAccess, types[a].PropertyFlags) >
			memoryPriority(hostAccess, types[b].PropertyFlags)
	})
	return rank
}

// findMemoryTypeIndex scans a ranking for the first index admitted by the
// resource's memory-type requirement mask. Returns -1 when the pattern
// cannot be satisfied.
func findMemoryTypeIndex(rank []int, typeBits uint32) int {
	for _, idx := range rank {
		if typeBits&(1<<uint(idx)) != 0 {
			return idx
		}
	}
	return -1
}

// NewContext builds a logical device on the selected physical device. A
// missing queue capability degrades the context instead of failing it: the
// affected commands error at record time.
func NewContext(cfg ContextConfig) (*Context, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	err := Initialize(logger)
	if err != nil {
		return nil, err
	}

	physDevice, err := physicalDevice(cfg.DeviceIndex)
	if err != nil {
		return nil, err
	}

	props, err := physDevice.Properties()
	if err != nil {
		return nil, errors.Wrap(err, "reading device properties")
	}
	if !props.Limits.TimestampComputeAndGraphics {
		logger.Warn("context device does not support timestamps, the following command won't be available: WriteTimestamp",
			"context", cfg.Label)
	}

	picked := pickQueueFamilies(physDevice.QueueFamilyProperties())
	for _, req := range submitTypeRequirements {
		if picked[req.submitType] < 0 {
			logger.Warn("cannot find a suitable queue family, the dependent commands won't be available",
				"submitType", req.submitType.String(), "commands", req.commands)
		}
	}

	// One queue per distinct family, shared across the submit types the
	// family serves.
	var queueInfos []core1_0.DeviceQueueCreateInfo
	seen := map[int]bool{}
	for _, req := range submitTypeRequirements {
		familyIndex := picked[req.submitType]
		if familyIndex < 0 || seen[familyIndex] {
			continue
		}
		seen[familyIndex] = true
		queueInfos = append(queueInfos, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: familyIndex,
			QueuePriorities:  []float32{1.0},
		})
	}

	var extensionNames []string
	deviceExtensions, _, err := physDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating device extensions")
	}
	if _, ok := deviceExtensions[khr_portability_subset.ExtensionName]; ok {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	device, res, err := physDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueInfos,
		EnabledFeatures:       physDevice.Features(),
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, backendError(res, err, "creating device for context '%s'", cfg.Label)
	}

	submitDetails := map[SubmitType]*contextSubmitDetail{}
	queues := map[int]core1_0.Queue{}
	for _, req := range submitTypeRequirements {
		familyIndex := picked[req.submitType]
		if familyIndex < 0 {
			continue
		}
		queue, ok := queues[familyIndex]
		if !ok {
			queue = device.GetQueue(familyIndex, 0)
			queues[familyIndex] = queue
		}
		submitDetails[req.submitType] = &contextSubmitDetail{
			queueFamilyIndex: familyIndex,
			queue:            queue,
		}
	}

	memoryProps := physDevice.MemoryProperties()
	var memoryRank [4][]int
	for access := MemoryAccessNone; access <= MemoryAccessReadWrite; access++ {
		memoryRank[access] = rankMemoryTypes(access, memoryProps.MemoryTypes)
	}

	fastSampler, res, err := device.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:               core1_0.FilterLinear,
		MinFilter:               core1_0.FilterLinear,
		MipmapMode:              core1_0.SamplerMipmapModeLinear,
		AddressModeU:            core1_0.SamplerAddressModeClampToEdge,
		AddressModeV:            core1_0.SamplerAddressModeClampToEdge,
		AddressModeW:            core1_0.SamplerAddressModeClampToEdge,
		UnnormalizedCoordinates: false,
	})
	if err != nil {
		device.Destroy(nil)
		return nil, backendError(res, err, "creating fast sampler for context '%s'", cfg.Label)
	}

	logger.Debug("created vulkan context",
		"context", cfg.Label,
		"device", cfg.DeviceIndex,
		"desc", DeviceDescription(cfg.DeviceIndex))
	return &Context{
		logger:            logger,
		physicalDevice:    physDevice,
		device:            device,
		props:             props,
		memoryTypes:       memoryProps.MemoryTypes,
		submitDetails:     submitDetails,
		memoryRank:        memoryRank,
		fastSampler:       fastSampler,
		timestampsAllowed: props.Limits.TimestampComputeAndGraphics,
		cfg:               cfg,
	}, nil
}

// Config returns the configuration the context was built with.
func (c *Context) Config() ContextConfig {
	return c.cfg
}

// Device exposes the underlying logical device for interop with code that
// works against the binding directly.
func (c *Context) Device() core1_0.Device {
	return c.device
}

func (c *Context) submitDetail(submitType SubmitType) (*contextSubmitDetail, error) {
	detail, ok := c.submitDetails[submitType]
	if !ok {
		return nil, unsupportedf("no queue family for submit type %s", submitType)
	}
	return detail, nil
}

func (c *Context) memoryTypeFor(hostAccess MemoryAccess, typeBits uint32) (int, error) {
	idx := findMemoryTypeIndex(c.memoryRank[hostAccess], typeBits)
	if idx < 0 {
		return 0, unsupportedf("host access pattern %s cannot be satisfied", hostAccess)
	}
	return idx, nil
}

// Destroy releases the sampler and the logical device. All resources built
// from the context must already be destroyed.
func (c *Context) Destroy() {
	if c.device == nil {
		return
	}
	c.fastSampler.Destroy(nil)
	c.device.Destroy(nil)
	c.device = nil
	c.logger.Debug("destroyed vulkan context", "context", c.cfg.Label)
}
