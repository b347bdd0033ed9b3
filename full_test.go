package lumen

import (
	"encoding/json"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"

	"github.com/lumengpu/lumen/spv"
)

const formatRGBA8 = core1_0.FormatR8G8B8A8UnsignedNormalized

// testContext builds a context on device #0, skipping the test when the
// machine has no usable Vulkan implementation.
func testContext(t *testing.T) *Context {
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)

	logger := slog.New(slog.HandlerOptions{Level: slog.LevelWarn}.NewTextHandler(os.Stderr))
	err := Initialize(logger)
	if err != nil {
		t.Skipf("no vulkan implementation available: %v", err)
	}
	if DeviceCount() == 0 {
		t.Skip("no vulkan devices enumerated")
	}

	ctxt, err := NewContext(ContextConfig{Label: t.Name(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(ctxt.Destroy)
	return ctxt
}

func requireSubmitType(t *testing.T, ctxt *Context, submitType SubmitType) {
	if _, ok := ctxt.submitDetails[submitType]; !ok {
		t.Skipf("device has no %s queue", submitType)
	}
}

func loadComputeShader(t *testing.T, prefix string) []uint32 {
	art, err := spv.LoadCompute(prefix)
	if err != nil {
		t.Skipf("compiled shader %s.comp.spv not present: %v", prefix, err)
	}
	return art.CompSPV
}

func patternBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i/256)
	}
	return data
}

func TestBufferRoundTrip(t *testing.T) {
	ctxt := testContext(t)
	requireSubmitType(t, ctxt, SubmitTypeCompute)

	const size = 4096
	src, err := NewBuffer(ctxt, BufferConfig{
		Label:      "roundtrip-src",
		Size:       size,
		Usage:      BufferUsageStaging,
		HostAccess: MemoryAccessWriteOnly,
	})
	require.NoError(t, err)
	defer src.Destroy()

	dst, err := NewBuffer(ctxt, BufferConfig{
		Label:      "roundtrip-dst",
		Size:       size,
		Usage:      BufferUsageStaging,
		HostAccess: MemoryAccessReadOnly,
	})
	require.NoError(t, err)
	defer dst.Destroy()

	want := patternBytes(size)
	require.NoError(t, src.FullView().CopyToDevice(want))

	drain, err := NewCommandDrain(ctxt)
	require.NoError(t, err)
	defer drain.Destroy()

	require.NoError(t, drain.Submit([]Command{
		CmdSetSubmitType(SubmitTypeCompute),
		CmdCopyBuffer(src.FullView(), dst.FullView()),
		CmdBufferBarrier(dst, BufferUsageStaging, MemoryAccessWriteOnly, BufferUsageStaging, MemoryAccessReadOnly),
	}))
	require.NoError(t, drain.Wait())

	// Waiting on a drained drain is a no-op.
	require.NoError(t, drain.Wait())
	require.NoError(t, drain.Wait())

	got := make([]byte, size)
	require.NoError(t, dst.FullView().CopyFromDevice(got))
	require.Equal(t, want, got)
}

func TestQueueSwitchChain(t *testing.T) {
	ctxt := testContext(t)
	requireSubmitType(t, ctxt, SubmitTypeCompute)
	requireSubmitType(t, ctxt, SubmitTypeGraphics)

	const size = 256
	src, err := NewBuffer(ctxt, BufferConfig{
		Label: "switch-src", Size: size, Usage: BufferUsageStaging, HostAccess: MemoryAccessWriteOnly,
	})
	require.NoError(t, err)
	defer src.Destroy()
	dst, err := NewBuffer(ctxt, BufferConfig{
		Label: "switch-dst", Size: size, Usage: BufferUsageStaging, HostAccess: MemoryAccessReadOnly,
	})
	require.NoError(t, err)
	defer dst.Destroy()

	require.NoError(t, src.FullView().CopyToDevice(patternBytes(size)))

	drain, err := NewCommandDrain(ctxt)
	require.NoError(t, err)
	defer drain.Destroy()

	require.NoError(t, drain.Submit([]Command{
		CmdSetSubmitType(SubmitTypeCompute),
		CmdCopyBuffer(src.FullView(), dst.FullView()),
		CmdSetSubmitType(SubmitTypeGraphics),
		// The trailing Any command extends the graphics sub-submission
		// instead of opening a new one.
		CmdCopyBuffer(src.FullView(), dst.FullView()),
	}))

	details := drain.details
	require.Len(t, details, 2)
	require.Equal(t, SubmitTypeCompute, details[0].submitType)
	require.Equal(t, SubmitTypeGraphics, details[1].submitType)

	// Consecutive sub-submissions are chained signal -> wait.
	require.Nil(t, details[0].waitSemaphore)
	require.Equal(t, details[0].signalSemaphore, details[1].waitSemaphore)

	require.NoError(t, drain.Wait())
}

func TestTransactionInlineReplay(t *testing.T) {
	ctxt := testContext(t)
	requireSubmitType(t, ctxt, SubmitTypeCompute)

	const size = 1024
	src, err := NewBuffer(ctxt, BufferConfig{
		Label: "tx-src", Size: size, Usage: BufferUsageStaging, HostAccess: MemoryAccessWriteOnly,
	})
	require.NoError(t, err)
	defer src.Destroy()
	dst, err := NewBuffer(ctxt, BufferConfig{
		Label: "tx-dst", Size: size, Usage: BufferUsageStaging, HostAccess: MemoryAccessReadOnly,
	})
	require.NoError(t, err)
	defer dst.Destroy()

	want := patternBytes(size)
	require.NoError(t, src.FullView().CopyToDevice(want))

	transaction, err := NewTransaction("copy-once", ctxt, []Command{
		CmdSetSubmitType(SubmitTypeCompute),
		CmdCopyBuffer(src.FullView(), dst.FullView()),
		CmdBufferBarrier(dst, BufferUsageStaging, MemoryAccessWriteOnly, BufferUsageStaging, MemoryAccessReadOnly),
	})
	require.NoError(t, err)
	defer transaction.Destroy()

	drain, err := NewCommandDrain(ctxt)
	require.NoError(t, err)
	defer drain.Destroy()

	require.NoError(t, drain.Submit([]Command{
		CmdSetSubmitType(SubmitTypeCompute),
		CmdInlineTransaction(transaction),
	}))
	require.NoError(t, drain.Wait())

	got := make([]byte, size)
	require.NoError(t, dst.FullView().CopyFromDevice(got))
	require.Equal(t, want, got)
}

func TestNestedInlineTransactionRejected(t *testing.T) {
	ctxt := testContext(t)
	requireSubmitType(t, ctxt, SubmitTypeCompute)

	inner, err := NewTransaction("inner", ctxt, []Command{
		CmdSetSubmitType(SubmitTypeCompute),
	})
	require.NoError(t, err)
	defer inner.Destroy()

	_, err = NewTransaction("outer", ctxt, []Command{
		CmdSetSubmitType(SubmitTypeCompute),
		CmdInlineTransaction(inner),
	})
	require.ErrorIs(t, err, ErrPreconditionViolated)
}

func TestStagingImageForbiddenUsage(t *testing.T) {
	ctxt := testContext(t)

	_, err := NewImage(ctxt, ImageConfig{
		Label:  "bad-staging",
		Width:  64,
		Height: 64,
		Format: formatRGBA8,
		Usage:  ImageUsageStaging | ImageUsageSampled,
	})
	require.ErrorIs(t, err, ErrPreconditionViolated)
}

func TestComputeIdentityCopy(t *testing.T) {
	ctxt := testContext(t)
	requireSubmitType(t, ctxt, SubmitTypeCompute)
	code := loadComputeShader(t, "testdata/identity")

	const width, height = 128, 128
	const size = width * height * 4

	srcImg, err := NewImage(ctxt, ImageConfig{
		Label: "identity-src", Width: width, Height: height,
		Format: formatRGBA8, Usage: ImageUsageSampled,
	})
	require.NoError(t, err)
	defer srcImg.Destroy()

	dstImg, err := NewImage(ctxt, ImageConfig{
		Label: "identity-dst", Width: width, Height: height,
		Format: formatRGBA8, Usage: ImageUsageStorage,
	})
	require.NoError(t, err)
	defer dstImg.Destroy()

	upload, err := NewBuffer(ctxt, BufferConfig{
		Label: "identity-up", Size: size, Usage: BufferUsageStaging, HostAccess: MemoryAccessWriteOnly,
	})
	require.NoError(t, err)
	defer upload.Destroy()

	download, err := NewBuffer(ctxt, BufferConfig{
		Label: "identity-down", Size: size, Usage: BufferUsageStaging, HostAccess: MemoryAccessReadOnly,
	})
	require.NoError(t, err)
	defer download.Destroy()

	want := patternBytes(size)
	require.NoError(t, upload.FullView().CopyToDevice(want))

	task, err := NewComputeTask(ctxt, ComputeTaskConfig{
		Label:         "identity",
		EntryName:     "main",
		Code:          code,
		ResourceTypes: []ResourceType{ResourceTypeSampledImage, ResourceTypeStorageImage},
		WorkgroupSize: [3]int{8, 8, 1},
	})
	require.NoError(t, err)
	defer task.Destroy()

	pool, err := NewResourcePool(task)
	require.NoError(t, err)
	defer pool.Destroy()
	require.NoError(t, pool.BindImage(0, srcImg.FullView()))
	require.NoError(t, pool.BindImage(1, dstImg.FullView()))

	drain, err := NewCommandDrain(ctxt)
	require.NoError(t, err)
	defer drain.Destroy()

	require.NoError(t, drain.Submit([]Command{
		CmdSetSubmitType(SubmitTypeCompute),
		CmdImageBarrier(srcImg, ImageUsageNone, MemoryAccessNone, ImageUsageStaging, MemoryAccessWriteOnly),
		CmdCopyBufferToImage(upload.FullView(), srcImg.FullView()),
		CmdImageBarrier(srcImg, ImageUsageStaging, MemoryAccessWriteOnly, ImageUsageSampled, MemoryAccessReadOnly),
		CmdImageBarrier(dstImg, ImageUsageNone, MemoryAccessNone, ImageUsageStorage, MemoryAccessWriteOnly),
		CmdDispatch(task, pool, width/8, height/8, 1),
		CmdImageBarrier(dstImg, ImageUsageStorage, MemoryAccessWriteOnly, ImageUsageStaging, MemoryAccessReadOnly),
		CmdCopyImageToBuffer(dstImg.FullView(), download.FullView()),
		CmdBufferBarrier(download, BufferUsageStaging, MemoryAccessWriteOnly, BufferUsageStaging, MemoryAccessReadOnly),
	}))
	require.NoError(t, drain.Wait())

	got := make([]byte, size)
	require.NoError(t, download.FullView().CopyFromDevice(got))
	require.Equal(t, want, got)
}

func TestTimestampRatio(t *testing.T) {
	ctxt := testContext(t)
	requireSubmitType(t, ctxt, SubmitTypeCompute)
	if !ctxt.timestampsAllowed {
		t.Skip("device does not support timestamps")
	}
	code10 := loadComputeShader(t, "testdata/loop10")
	code200 := loadComputeShader(t, "testdata/loop200")

	const width, height = 256, 256

	srcImg, err := NewImage(ctxt, ImageConfig{
		Label: "bench-src", Width: width, Height: height,
		Format: formatRGBA8, Usage: ImageUsageSampled,
	})
	require.NoError(t, err)
	defer srcImg.Destroy()

	dstImg, err := NewImage(ctxt, ImageConfig{
		Label: "bench-dst", Width: width, Height: height,
		Format: formatRGBA8, Usage: ImageUsageStorage,
	})
	require.NoError(t, err)
	defer dstImg.Destroy()

	// One prep submission transitions both images into their dispatch
	// layouts.
	prep, err := NewCommandInvocation(ctxt, "bench-prep", []Command{
		CmdSetSubmitType(SubmitTypeCompute),
		CmdImageBarrier(srcImg, ImageUsageNone, MemoryAccessNone, ImageUsageSampled, MemoryAccessReadOnly),
		CmdImageBarrier(dstImg, ImageUsageNone, MemoryAccessNone, ImageUsageStorage, MemoryAccessWriteOnly),
	})
	require.NoError(t, err)
	defer prep.Destroy()
	require.NoError(t, prep.SubmitAndWait())

	runBench := func(label string, code []uint32) float64 {
		task, err := NewComputeTask(ctxt, ComputeTaskConfig{
			Label:         label,
			EntryName:     "main",
			Code:          code,
			ResourceTypes: []ResourceType{ResourceTypeSampledImage, ResourceTypeStorageImage},
			WorkgroupSize: [3]int{8, 8, 1},
		})
		require.NoError(t, err)
		defer task.Destroy()

		srcView := srcImg.FullView()
		dstView := dstImg.FullView()
		inv, err := NewComputeInvocation(ctxt, ComputeInvocationConfig{
			Label: label,
			Task:  task,
			Bindings: []BindResource{
				{Image: &srcView},
				{Image: &dstView},
			},
			WorkgroupCount:  [3]int{width / 8, height / 8, 1},
			EnableTimestamp: true,
		})
		require.NoError(t, err)
		defer inv.Destroy()

		require.NoError(t, inv.SubmitAndWait())
		micros, err := inv.TimeMicros()
		require.NoError(t, err)
		require.Greater(t, micros, 0.0)
		return micros
	}

	t10 := runBench("bench-loop10", code10)
	t200 := runBench("bench-loop200", code200)

	ratio := t200 / t10
	require.GreaterOrEqual(t, ratio, 10.0)
	require.LessOrEqual(t, ratio, 30.0)
}

func TestContextStatsJSON(t *testing.T) {
	ctxt := testContext(t)

	data, err := ctxt.StatsJSON()
	require.NoError(t, err)
	require.True(t, json.Valid(data), "stats output is not valid JSON: %s", data)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Contains(t, decoded, "QueueFamilies")
	require.Contains(t, decoded, "MemoryTypeRanking")
}

func TestScopeOwnsDeviceResources(t *testing.T) {
	ctxt := testContext(t)

	scope := NewScope()
	buf, err := NewBuffer(ctxt, BufferConfig{
		Label: "scoped", Size: 64, Usage: BufferUsageStaging, HostAccess: MemoryAccessWriteOnly,
	})
	require.NoError(t, err)
	require.NoError(t, scope.Attach("scoped", buf))

	require.Equal(t, Destroyer(buf), scope.Find("scoped"))
	scope.Release()
	// Destroy is idempotent, so the deferred context teardown stays safe.
	buf.Destroy()
}
