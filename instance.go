package lumen

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_portability_enumeration"
	"golang.org/x/exp/slog"
)

// The process-wide loader, instance and physical-device listing. Contexts
// on any device share these; they are built once and never torn down.
var global struct {
	mu       sync.Mutex
	instance core1_0.Instance
	devices  []core1_0.PhysicalDevice
	descs    []string
}

// Initialize brings up the Vulkan loader and enumerates physical devices.
// It is safe to call repeatedly; every call after the first success is a
// no-op. Context construction calls it implicitly.
func Initialize(logger *slog.Logger) error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.instance != nil {
		logger.Warn("ignored redundant vulkan module initialization")
		return nil
	}

	loader, err := core.CreateSystemLoader()
	if err != nil {
		return errors.Wrap(err, "loading vulkan")
	}

	instanceExtensions, _, err := loader.AvailableExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerating instance extensions")
	}

	var extensionNames []string
	var flags core1_0.InstanceCreateFlags
	if _, ok := instanceExtensions[khr_portability_enumeration.ExtensionName]; ok {
		extensionNames = append(extensionNames, khr_portability_enumeration.ExtensionName)
		flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	instance, res, err := loader.CreateInstance(nil, core1_0.InstanceCreateInfo{
		ApplicationName:       "LumenApp",
		ApplicationVersion:    common.CreateVersion(0, 1, 0),
		EngineName:            "Lumen",
		EngineVersion:         common.CreateVersion(0, 1, 0),
		APIVersion:            common.Vulkan1_0,
		EnabledExtensionNames: extensionNames,
		Flags:                 flags,
	})
	if err != nil {
		return backendError(res, err, "creating instance")
	}

	devices, res, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		instance.Destroy(nil)
		return backendError(res, err, "enumerating physical devices")
	}

	descs := make([]string, 0, len(devices))
	for _, device := range devices {
		props, err := device.Properties()
		if err != nil {
			instance.Destroy(nil)
			return errors.Wrap(err, "reading device properties")
		}
		descs = append(descs, describeDevice(props))
	}

	global.instance = instance
	global.devices = devices
	global.descs = descs
	logger.Info("vulkan backend initialized", "devices", len(devices))
	return nil
}

func describeDevice(props *core1_0.PhysicalDeviceProperties) string {
	var kind string
	switch props.DriverType {
	case core1_0.PhysicalDeviceTypeIntegratedGPU:
		kind = "Integrated GPU"
	case core1_0.PhysicalDeviceTypeDiscreteGPU:
		kind = "Discrete GPU"
	case core1_0.PhysicalDeviceTypeVirtualGPU:
		kind = "Virtual GPU"
	case core1_0.PhysicalDeviceTypeCPU:
		kind = "CPU"
	default:
		kind = "Other"
	}
	return fmt.Sprintf("%s (%s, %d.%d)", props.DriverName, kind,
		props.APIVersion.Major(), props.APIVersion.Minor())
}

// DeviceCount reports how many physical devices the loader enumerated.
func DeviceCount() int {
	global.mu.Lock()
	defer global.mu.Unlock()
	return len(global.devices)
}

// DeviceDescription returns a human-readable one-liner for the device at
// index, or the empty string when index is out of range.
func DeviceDescription(index int) string {
	global.mu.Lock()
	defer global.mu.Unlock()
	if index < 0 || index >= len(global.descs) {
		return ""
	}
	return global.descs[index]
}

func physicalDevice(index int) (core1_0.PhysicalDevice, error) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if index < 0 || index >= len(global.devices) {
		return nil, preconditionf(
			"wanted vulkan device does not exist (#%d of %d available devices)",
			index, len(global.devices))
	}
	return global.devices[index], nil
}
