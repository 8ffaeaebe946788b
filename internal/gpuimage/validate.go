package gpuimage

// validate checks the participants of one operation: all present, none
// empty, identical dimensions and a common runtime. It runs entirely on the
// host, before any device work.
func validate(op string, imgs ...*Image) error {
	for _, img := range imgs {
		if img == nil {
			return errorf(op, ErrInvalidArgument, "nil image")
		}
	}
	for _, img := range imgs {
		if img.Empty() {
			return errorf(op, ErrEmptyImage, "%dx%d", img.width, img.height)
		}
	}
	first := imgs[0]
	for _, img := range imgs[1:] {
		if !first.SameSize(img) {
			return errorf(op, ErrDimensionMismatch, "%dx%d vs %dx%d",
				first.width, first.height, img.width, img.height)
		}
	}
	for _, img := range imgs[1:] {
		if img.rt != first.rt {
			return errorf(op, ErrInvalidArgument, "images live on different devices (%s, %s)",
				first.rt.Name(), img.rt.Name())
		}
	}
	return nil
}
