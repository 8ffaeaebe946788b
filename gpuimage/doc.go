// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gpuimage provides elementwise arithmetic on 8-bit grayscale images
// held in device memory.
//
// # Overview
//
// An [Image] owns a packed width*height buffer on a device [Runtime]. Host
// images cross to the device with [ConvertToDevice] or [Upload] and come
// back with [ConvertToHost] or [Download]; rows are copied one at a time so
// host images may carry padded rows.
//
// Every operation exists in two forms:
//   - an allocating form that returns a new image, e.g. [Maximum]
//   - an in-place form that writes into an existing image, e.g. [MaximumInto]
//
// Inputs are validated on the host before any device work: all images must
// be non-empty, of identical size and on the same runtime. The output of an
// in-place form may be one of its inputs.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/pixops/backend/emu"
//	    "github.com/born-ml/pixops/gpuimage"
//	    "github.com/born-ml/pixops/hostimage"
//	)
//
//	func main() {
//	    dev := emu.New()
//	    defer dev.Close()
//
//	    a, _ := gpuimage.Upload(dev, hostimage.New(640, 480))
//	    defer a.Release()
//
//	    inv, err := gpuimage.Invert(a)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer inv.Release()
//
//	    out, _ := gpuimage.Download(inv)
//	    _ = out.Image() // *image.Gray
//	}
//
// # Errors
//
// Failures are returned as [*Error] and match exactly one of the Err*
// kinds with errors.Is. The runtime's own error is wrapped alongside.
package gpuimage
