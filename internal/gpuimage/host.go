package gpuimage

// Host is a grayscale image in host memory. Rows may be padded: RowSize is
// the byte distance between the starts of consecutive rows and is at least
// Width. Data starts at the first sample of the first row. Empty must
// accept a nil receiver.
type Host interface {
	Width() uint32
	Height() uint32
	RowSize() uint32
	Data() []byte
	Empty() bool
}
