package gpuimage_test

import (
	"errors"
	"fmt"

	"github.com/born-ml/pixops/backend/emu"
	"github.com/born-ml/pixops/gpuimage"
	"github.com/born-ml/pixops/hostimage"
)

func Example() {
	dev := emu.New()
	defer dev.Close()

	a, _ := hostimage.FromPixels(3, 1, 3, []byte{10, 20, 30})
	b, _ := hostimage.FromPixels(3, 1, 3, []byte{255, 0, 170})

	da, _ := gpuimage.Upload(dev, a)
	defer da.Release()
	db, _ := gpuimage.Upload(dev, b)
	defer db.Release()

	and, err := gpuimage.BitwiseAnd(da, db)
	if err != nil {
		panic(err)
	}
	defer and.Release()

	out, _ := gpuimage.Download(and)
	fmt.Println(out.Pixels())
	// Output: [10 0 10]
}

func ExampleAbsoluteDifferenceInto() {
	dev := emu.New()
	defer dev.Close()

	a, _ := gpuimage.Upload(dev, must(hostimage.FromPixels(3, 1, 3, []byte{10, 20, 30})))
	b, _ := gpuimage.Upload(dev, must(hostimage.FromPixels(3, 1, 3, []byte{255, 0, 170})))

	// Write the result over a.
	if err := gpuimage.AbsoluteDifferenceInto(a, b, a); err != nil {
		panic(err)
	}
	out, _ := gpuimage.Download(a)
	fmt.Println(out.Pixels())
	// Output: [245 20 140]
}

func ExampleError() {
	dev := emu.New()
	defer dev.Close()

	a, _ := gpuimage.New(dev, 4, 4)
	b, _ := gpuimage.New(dev, 4, 2)

	_, err := gpuimage.Maximum(a, b)
	fmt.Println(errors.Is(err, gpuimage.ErrDimensionMismatch))
	fmt.Println(err)
	// Output:
	// true
	// gpuimage: Maximum: dimension mismatch: 4x4 vs 4x2
}

func must(g *hostimage.Gray, err error) *hostimage.Gray {
	if err != nil {
		panic(err)
	}
	return g
}
