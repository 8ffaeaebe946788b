package gpuimage

import (
	"runtime"

	"github.com/born-ml/pixops/internal/device"
	"github.com/born-ml/pixops/internal/hostimage"
)

// checkTransfer validates a host/device pair before any row is copied.
func checkTransfer(op string, h Host, d *Image) error {
	if h == nil || d == nil {
		return errorf(op, ErrInvalidArgument, "nil image")
	}
	// Host implementations need not be nil-safe beyond Empty.
	if h.Empty() {
		return errorf(op, ErrEmptyImage, "host image is empty")
	}
	if d.Empty() {
		return errorf(op, ErrEmptyImage, "device %dx%d", d.width, d.height)
	}
	if h.Width() != d.width || h.Height() != d.height {
		return errorf(op, ErrDimensionMismatch, "host %dx%d vs device %dx%d",
			h.Width(), h.Height(), d.width, d.height)
	}
	if h.RowSize() < h.Width() {
		return errorf(op, ErrInvalidArgument, "row size %d < width %d", h.RowSize(), h.Width())
	}
	need := int(h.Height()-1)*int(h.RowSize()) + int(h.Width())
	if len(h.Data()) < need {
		return errorf(op, ErrInvalidArgument, "host buffer holds %d bytes, need %d", len(h.Data()), need)
	}
	return nil
}

// ConvertToDevice copies a host image into a device image of the same size,
// one row at a time. If a row fails, rows already copied stay in place.
func ConvertToDevice(src Host, dst *Image) error {
	const op = "ConvertToDevice"
	if err := checkTransfer(op, src, dst); err != nil {
		return err
	}

	defer runtime.KeepAlive(dst)

	w, stride := int(dst.width), int(src.RowSize())
	data := src.Data()
	for r := 0; r < int(dst.height); r++ {
		row := data[r*stride : r*stride+w]
		if err := dst.rt.CopyToDevice(dst.ptr, r*w, row); err != nil {
			return errorf(op, ErrTransferFailure, "row %d: %w", r, err)
		}
	}
	return nil
}

// ConvertToHost copies a device image into a host image of the same size,
// one row at a time. Padding bytes of the host rows are left untouched.
// If a row fails, rows already copied stay in place.
func ConvertToHost(src *Image, dst Host) error {
	const op = "ConvertToHost"
	if err := checkTransfer(op, dst, src); err != nil {
		return err
	}

	defer runtime.KeepAlive(src)

	w, stride := int(src.width), int(dst.RowSize())
	data := dst.Data()
	for r := 0; r < int(src.height); r++ {
		row := data[r*stride : r*stride+w]
		if err := src.rt.CopyToHost(row, src.ptr, r*w); err != nil {
			return errorf(op, ErrTransferFailure, "row %d: %w", r, err)
		}
	}
	return nil
}

// Upload allocates a device image on rt and copies src into it.
func Upload(rt device.Runtime, src Host) (*Image, error) {
	const op = "Upload"
	if src == nil {
		return nil, errorf(op, ErrInvalidArgument, "nil image")
	}
	if src.Empty() {
		return nil, errorf(op, ErrEmptyImage, "host image is empty")
	}

	img, err := New(rt, src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	if err := ConvertToDevice(src, img); err != nil {
		_ = img.Release()
		return nil, err
	}
	return img, nil
}

// Download copies a device image into a new unpadded host image.
func Download(src *Image) (*hostimage.Gray, error) {
	const op = "Download"
	if err := validate(op, src); err != nil {
		return nil, err
	}

	dst := hostimage.New(src.width, src.height)
	if err := ConvertToHost(src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
