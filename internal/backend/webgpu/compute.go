//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/born-ml/pixops/internal/device"
	"github.com/born-ml/pixops/internal/kernel"
	"github.com/born-ml/pixops/internal/launch"
	"github.com/go-webgpu/webgpu/wgpu"
)

// paramsSize is the uniform block size; uniforms need 16-byte alignment.
const paramsSize = 16

// maxWorkgroups is the per-dimension dispatch limit WebGPU guarantees.
const maxWorkgroups = 65535

// dispatchSize folds a 1-D grid of blocks into x*y workgroups with
// x*y >= blocks. Surplus workgroups fail the i < n guard.
func dispatchSize(blocks uint32) (x, y uint32) {
	if blocks <= maxWorkgroups {
		return blocks, 1
	}
	y = blocks / maxWorkgroups
	if blocks%maxWorkgroups != 0 {
		y++
	}
	return maxWorkgroups, y
}

// pipeline returns the cached compute pipeline for k at the given
// workgroup size, compiling the shader on first use.
func (d *Device) pipeline(k kernel.Kind, threads uint32) (*wgpu.ComputePipeline, error) {
	key := shaderKey(k, threads)

	d.cacheMu.RLock()
	if p, ok := d.pipelines[key]; ok {
		d.cacheMu.RUnlock()
		return p, nil
	}
	d.cacheMu.RUnlock()

	code, err := shaderSource(k, threads)
	if err != nil {
		return nil, err
	}

	d.cacheMu.Lock()
	defer d.cacheMu.Unlock()
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}

	shader := d.device.CreateShaderModuleWGSL(code)
	p := d.device.CreateComputePipelineSimple(nil, shader, "main")
	d.shaders[key] = shader
	d.pipelines[key] = p
	d.log.Debug("webgpu: pipeline compiled", "kernel", k, "workgroup_size", threads)
	return p, nil
}

// uniformBuffer creates the Params block for a launch.
func (d *Device) uniformBuffer(args device.Args) *wgpu.Buffer {
	params := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(params[0:4], args.N)
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(args.Scale))
	binary.LittleEndian.PutUint32(params[8:12], math.Float32bits(args.Gamma))

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             paramsSize,
		MappedAtCreation: wgpu.True,
	})
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(buffer.GetMappedRange(0, paramsSize)), paramsSize), params)
	buffer.Unmap()
	return buffer
}

// Launch dispatches kernel k as cfg.BlocksPerGrid workgroups of
// cfg.ThreadsPerBlock invocations and submits it to the queue.
//
// A storage buffer cannot be bound read-only and read-write in one
// dispatch, so when dst aliases a source the kernel writes to scratch
// space that is then copied over dst in the same submission.
func (d *Device) Launch(k kernel.Kind, cfg launch.Config, args device.Args) (err error) {
	if err := device.CheckLaunch(k, cfg, args); err != nil {
		return err
	}
	defer recoverInto(fmt.Sprintf("launch %v", k), &err)

	d.mu.Lock()
	defer d.mu.Unlock()

	n := int(args.N)
	src1, err := d.span(args.Src1, 0, n)
	if err != nil {
		return fmt.Errorf("webgpu: %v: src1: %w", k, err)
	}
	var src2 *allocation
	if k.Arity() == 2 {
		if src2, err = d.span(args.Src2, 0, n); err != nil {
			return fmt.Errorf("webgpu: %v: src2: %w", k, err)
		}
	}
	dst, err := d.span(args.Dst, 0, n)
	if err != nil {
		return fmt.Errorf("webgpu: %v: dst: %w", k, err)
	}

	pipeline, err := d.pipeline(k, cfg.ThreadsPerBlock)
	if err != nil {
		return err
	}

	size := uint64(n) * pixelSize
	out := dst.buffer
	aliased := dst == src1 || dst == src2
	if aliased {
		out = d.pool.acquire(size, imageUsage)
		defer d.pool.release(out, size, imageUsage)
	}

	params := d.uniformBuffer(args)
	defer params.Release()

	entries := []wgpu.BindGroupEntry{wgpu.BufferBindingEntry(0, src1.buffer, 0, size)}
	if src2 != nil {
		entries = append(entries, wgpu.BufferBindingEntry(1, src2.buffer, 0, size))
	}
	entries = append(entries,
		wgpu.BufferBindingEntry(uint32(len(entries)), out, 0, size),
		wgpu.BufferBindingEntry(uint32(len(entries)+1), params, 0, paramsSize),
	)
	bindGroup := d.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	d.log.Debug("webgpu: launch", "kernel", k, "config", cfg, "n", args.N, "aliased", aliased)

	encoder := d.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	x, y := dispatchSize(cfg.BlocksPerGrid)
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()
	if aliased {
		encoder.CopyBufferToBuffer(out, 0, dst.buffer, 0, size)
	}
	d.queue.Submit(encoder.Finish(nil))
	return nil
}
