// Package lumen is a thin, opinionated layer over Vulkan. Applications
// describe device workloads as ordered lists of abstract commands — copies,
// dispatches, draws, barriers, render-pass begin/end, timestamp writes,
// inlined transactions — and lumen lowers them into primary command buffers
// across the right queues, chaining cross-queue sub-submissions with binary
// semaphores and deriving barrier parameters from (usage, access) pairs.
//
// The object model is small: a Context owns the device, queue mapping,
// memory-type ranking and a shared sampler; Buffers and Images are typed
// allocations; Tasks are pipelines built from a positional resource-type
// list; ResourcePools hold one descriptor set per task; CommandDrains
// submit and fence one command list at a time; Transactions pre-record
// reusable secondary command buffers; Timestamps read device time.
//
// Shader compilation stays outside the package: tasks consume precompiled
// SPIR-V words, persisted and loaded through the spv subpackage.
package lumen
