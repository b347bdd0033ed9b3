package lumen

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func TestPickQueueFamiliesPrefersCombinedFamily(t *testing.T) {
	families := []*core1_0.QueueFamilyProperties{
		&core1_0.QueueFamilyProperties{QueueFlags: core1_0.QueueCompute | core1_0.QueueTransfer, QueueCount: 4},
		&core1_0.QueueFamilyProperties{QueueFlags: core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer, QueueCount: 1},
		&core1_0.QueueFamilyProperties{QueueFlags: core1_0.QueueTransfer, QueueCount: 2},
	}

	picked := pickQueueFamilies(families)

	// The 3-capability family serves both submit types, so only one queue
	// needs to exist.
	require.Equal(t, 1, picked[SubmitTypeGraphics])
	require.Equal(t, 1, picked[SubmitTypeCompute])
}

func TestPickQueueFamiliesMissingCapability(t *testing.T) {
	families := []*core1_0.QueueFamilyProperties{
		&core1_0.QueueFamilyProperties{QueueFlags: core1_0.QueueCompute | core1_0.QueueTransfer, QueueCount: 1},
	}

	picked := pickQueueFamilies(families)

	require.Equal(t, -1, picked[SubmitTypeGraphics])
	require.Equal(t, 0, picked[SubmitTypeCompute])
}

func TestPickQueueFamiliesIgnoresEmptyFamilies(t *testing.T) {
	families := []*core1_0.QueueFamilyProperties{
		&core1_0.QueueFamilyProperties{QueueFlags: core1_0.QueueGraphics | core1_0.QueueCompute | core1_0.QueueTransfer, QueueCount: 0},
		&core1_0.QueueFamilyProperties{QueueFlags: core1_0.QueueGraphics | core1_0.QueueCompute, QueueCount: 1},
	}

	picked := pickQueueFamilies(families)

	require.Equal(t, 1, picked[SubmitTypeGraphics])
	require.Equal(t, 1, picked[SubmitTypeCompute])
}

func TestMemoryPriorityWriteOnly(t *testing.T) {
	deviceLocal := core1_0.MemoryPropertyDeviceLocal
	hostVisible := core1_0.MemoryPropertyHostVisible
	hostCoherent := core1_0.MemoryPropertyHostCoherent
	hostCached := core1_0.MemoryPropertyHostCached

	best := memoryPriority(MemoryAccessWriteOnly, deviceLocal|hostVisible|hostCoherent)
	worse := memoryPriority(MemoryAccessWriteOnly, hostVisible|hostCoherent)
	unknown := memoryPriority(MemoryAccessWriteOnly, deviceLocal)

	require.Greater(t, best, worse)
	require.Greater(t, worse, 0)
	require.Equal(t, 0, unknown)

	// Exact-set matching: an extra property knocks a type out of the table.
	require.Equal(t, 0, memoryPriority(MemoryAccessWriteOnly,
		deviceLocal|hostVisible|hostCoherent|core1_0.MemoryPropertyLazilyAllocated))
}

func TestRankMemoryTypesOrdersByPriority(t *testing.T) {
	deviceLocal := core1_0.MemoryPropertyDeviceLocal
	hostVisible := core1_0.MemoryPropertyHostVisible
	hostCoherent := core1_0.MemoryPropertyHostCoherent

	types := []core1_0.MemoryType{
		{PropertyFlags: hostVisible | hostCoherent},
		{PropertyFlags: deviceLocal},
		{PropertyFlags: deviceLocal | hostVisible | hostCoherent},
	}

	rank := rankMemoryTypes(MemoryAccessWriteOnly, types)
	require.Equal(t, []int{2, 0, 1}, rank)

	rank = rankMemoryTypes(MemoryAccessNone, types)
	// Stable: both device-local types score 1 and keep declaration order.
	require.Equal(t, []int{1, 2, 0}, rank)
}

func TestFindMemoryTypeIndexRespectsMask(t *testing.T) {
	rank := []int{2, 0, 1}

	require.Equal(t, 2, findMemoryTypeIndex(rank, 0b111))
	// Type 2 excluded by the requirement mask; next best wins.
	require.Equal(t, 0, findMemoryTypeIndex(rank, 0b011))
	require.Equal(t, -1, findMemoryTypeIndex(rank, 0))
}
