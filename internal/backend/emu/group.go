package emu

// Thread identifies one execution unit within a launch.
type Thread struct {
	Local  uint32 // index within the group
	Global uint32 // index within the grid
}

// Group is one cooperative group (block) of a launch. Threads of a group
// execute in phases: every thread finishes a phase before any thread starts
// the next, so the boundary between two Threads calls is the group barrier.
type Group struct {
	Index uint32 // block index within the grid
	Size  uint32 // threads per block
}

// Threads runs fn once for every thread of the group and returns after all
// of them have completed.
func (g *Group) Threads(fn func(t Thread)) {
	base := g.Index * g.Size
	for local := uint32(0); local < g.Size; local++ {
		fn(Thread{Local: local, Global: base + local})
	}
}

// BuildOnce allocates a group-local table of size entries, lets the group's
// designated thread (local index 0) fill it with build, and returns it after
// the group barrier so every thread may read it.
func BuildOnce[T any](g *Group, size int, build func(tbl []T)) []T {
	tbl := make([]T, size)
	g.Threads(func(t Thread) {
		if t.Local == 0 {
			build(tbl)
		}
	})
	return tbl
}
