package compute

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/verletnet/internal/cloth"
)

func testLattice(t *testing.T, w, h int) []cloth.Node {
	t.Helper()
	anchors := []cloth.Anchor{
		cloth.Fixed{0, 0, 0},
		cloth.Fixed{0, 2, 0},
		cloth.Fixed{2, 0, 0},
		cloth.Fixed{2, 2, 0},
	}
	nodes, err := cloth.Build(cloth.Lattice{Width: w, Height: h}, cloth.DefaultFactory, mgl64.Vec3{}, anchors)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return nodes
}

func TestUploadDownload(t *testing.T) {
	nodes := testLattice(t, 3, 3)
	nodes[4].Position = mgl64.Vec3{1, 1, 1}

	records := NewRecordBuffer(16)
	if err := Upload(records, nodes); err != nil {
		t.Fatalf("upload: %v", err)
	}

	corner := records[0]
	if !corner.Pinned || corner.Pin != (mgl64.Vec3{}) {
		t.Errorf("corner record pin not resolved: %+v", corner)
	}
	if corner.Neighbors[2] != NoNeighbor || corner.Neighbors[3] != NoNeighbor {
		t.Errorf("corner should have two unused slots: %v", corner.Neighbors)
	}
	center := records[4]
	if center.Pinned {
		t.Error("center should not be pinned")
	}
	if center.Neighbors != [4]int32{3, 1, 5, 7} {
		t.Errorf("center neighbors = %v", center.Neighbors)
	}
	if records[9].Neighbors != [4]int32{-1, -1, -1, -1} {
		t.Errorf("unused record not empty: %v", records[9].Neighbors)
	}

	records[4].Cur = mgl64.Vec3{2, 2, 2}
	records[4].Prev = mgl64.Vec3{1, 1, 1}
	Download(records, nodes)
	if nodes[4].Position != (mgl64.Vec3{2, 2, 2}) || nodes[4].PrevPosition != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("download mismatch: %+v", nodes[4])
	}

	if err := Upload(NewRecordBuffer(4), nodes); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestNewParallel_RejectsOversizedNet(t *testing.T) {
	cfg := DefaultParallelConfig()
	cfg.Capacity = 100

	if _, err := NewParallel(101, cfg, nil); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
	if _, err := NewParallel(100, cfg, nil); err != nil {
		t.Errorf("net at capacity rejected: %v", err)
	}
	if _, err := NewSolver(Parallel, 401, DefaultParallelConfig()); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("NewSolver should reject 401 nodes, got %v", err)
	}
}

func TestParallelConfig_Validate(t *testing.T) {
	bad := []ParallelConfig{
		{Capacity: 0, BlockSize: 1, Passes: 1},
		{Capacity: 1, BlockSize: 0, Passes: 1},
		{Capacity: 1, BlockSize: 1, Passes: 0},
		{Capacity: 1, BlockSize: 1, Passes: 1, Workers: -1},
		{Capacity: 1, BlockSize: 1, Passes: 1, Dispatch: DispatchPolicy(7)},
		{Capacity: 1, BlockSize: 1, Passes: 1, Resolve: ResolvePolicy(7)},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidParallelConfig) {
			t.Errorf("case %d: expected ErrInvalidParallelConfig, got %v", i, err)
		}
	}
}

func TestResolveConstraints_JacobiPair(t *testing.T) {
	records := NewRecordBuffer(4)
	records[0] = NodeRecord{Cur: mgl64.Vec3{0, 0, 0}, Neighbors: [4]int32{1, -1, -1, -1}}
	records[1] = NodeRecord{Cur: mgl64.Vec3{1, 0, 0}, Neighbors: [4]int32{0, -1, -1, -1}}

	k := NewCPUKernels(ParallelConfig{BlockSize: 1, Workers: 2})
	err := k.ResolveConstraints(records, KernelParams{RestDistance: 0.5, Stiffness: 0.5, NodeCount: 2})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if !records[0].Cur.ApproxEqualThreshold(mgl64.Vec3{0.25, 0, 0}, 1e-12) {
		t.Errorf("record 0 = %v", records[0].Cur)
	}
	if !records[1].Cur.ApproxEqualThreshold(mgl64.Vec3{0.75, 0, 0}, 1e-12) {
		t.Errorf("record 1 = %v", records[1].Cur)
	}
}

func TestResolveConstraints_MeanVersusSum(t *testing.T) {
	// A free node between two pinned neighbors, both too far away.
	mk := func() []NodeRecord {
		records := NewRecordBuffer(3)
		records[0] = NodeRecord{Pinned: true, Pin: mgl64.Vec3{-1, 0, 0}, Neighbors: [4]int32{1, -1, -1, -1}}
		records[1] = NodeRecord{Cur: mgl64.Vec3{0, 1, 0}, Neighbors: [4]int32{0, 2, -1, -1}}
		records[2] = NodeRecord{Pinned: true, Pin: mgl64.Vec3{1, 0, 0}, Neighbors: [4]int32{1, -1, -1, -1}}
		return records
	}
	kp := KernelParams{RestDistance: 1, Stiffness: 1, NodeCount: 3}

	mean := mk()
	if err := NewCPUKernels(ParallelConfig{BlockSize: 4, Resolve: ResolveMean}).ResolveConstraints(mean, kp); err != nil {
		t.Fatal(err)
	}
	sum := mk()
	if err := NewCPUKernels(ParallelConfig{BlockSize: 4, Resolve: ResolveSum}).ResolveConstraints(sum, kp); err != nil {
		t.Fatal(err)
	}

	// The horizontal parts of the two corrections cancel in the mean. The
	// running sum applies the second correction on top of the first.
	d := math.Sqrt2 - 1
	want := mgl64.Vec3{0, 1 - d/math.Sqrt2, 0}
	if !mean[1].Cur.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("mean = %v, want %v", mean[1].Cur, want)
	}
	if sum[1].Cur.Y() >= mean[1].Cur.Y() {
		t.Errorf("sum %v should move further than mean %v", sum[1].Cur, mean[1].Cur)
	}
	if mean[0].Cur != (mgl64.Vec3{-1, 0, 0}) || sum[2].Cur != (mgl64.Vec3{1, 0, 0}) {
		t.Error("pinned records not at their pins")
	}
}

func TestResolveConstraints_SingleNeighborUsesPairRule(t *testing.T) {
	kp := KernelParams{RestDistance: 0.5, Stiffness: 0.5, NodeCount: 2}
	want := mgl64.Vec3{}.Sub(correction(mgl64.Vec3{}, mgl64.Vec3{2, 0, 0}, kp.RestDistance, kp.Stiffness))

	for _, policy := range []ResolvePolicy{ResolveMean, ResolveSum} {
		records := NewRecordBuffer(2)
		records[0] = NodeRecord{Neighbors: [4]int32{1, -1, -1, -1}}
		records[1] = NodeRecord{Pinned: true, Pin: mgl64.Vec3{2, 0, 0}, Neighbors: [4]int32{0, -1, -1, -1}}

		if err := NewCPUKernels(ParallelConfig{BlockSize: 4, Resolve: policy}).ResolveConstraints(records, kp); err != nil {
			t.Fatal(err)
		}
		if !records[0].Cur.ApproxEqualThreshold(want, 1e-12) {
			t.Errorf("%v: free record = %v, want %v", policy, records[0].Cur, want)
		}
		if !records[0].Cur.ApproxEqualThreshold(mgl64.Vec3{0.75, 0, 0}, 1e-12) {
			t.Errorf("%v: free record = %v, want (0.75, 0, 0)", policy, records[0].Cur)
		}
	}
	if DefaultParallelConfig().Resolve != ResolveMean {
		t.Error("default resolve policy should be mean")
	}
}

func TestParallelRunTick_PinsAndGravity(t *testing.T) {
	nodes := testLattice(t, 5, 5)
	params := cloth.DefaultParams()

	s, err := NewParallel(len(nodes), DefaultParallelConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()

	if err := s.RunTick(nodes, params, 0.016); err != nil {
		t.Fatalf("run tick: %v", err)
	}

	for i, n := range nodes {
		if n.Pinned() && n.Position != n.Pin.Position() {
			t.Errorf("pinned node %d at %v, anchor %v", i, n.Position, n.Pin.Position())
		}
		if !cloth.Finite(n.Position) {
			t.Fatalf("node %d non-finite", i)
		}
	}

	// Interior nodes start coincident, so only gravity moves them.
	center := nodes[12]
	want := params.Gravity.Mul(0.016)
	if !center.Position.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("center = %v, want %v", center.Position, want)
	}
	if center.PrevPosition != (mgl64.Vec3{}) {
		t.Errorf("center prev = %v, want origin", center.PrevPosition)
	}
}

func TestParallelRunTick_TruncateLeavesTrailingGroup(t *testing.T) {
	nodes := testLattice(t, 5, 5)
	params := cloth.DefaultParams()

	cfg := DefaultParallelConfig()
	cfg.BlockSize = 8
	cfg.Dispatch = DispatchTruncate

	s, err := NewParallel(len(nodes), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.RunTick(nodes, params, 0.016); err != nil {
		t.Fatalf("run tick: %v", err)
	}

	covered := Covered(len(nodes), cfg.BlockSize, cfg.Dispatch)
	if covered != 24 {
		t.Fatalf("expected 24 covered nodes, got %d", covered)
	}

	// Node 24 is the last corner: never scheduled, so neither integrated nor pinned.
	last := nodes[24]
	if last.Position != (mgl64.Vec3{}) || last.PrevPosition != (mgl64.Vec3{}) {
		t.Errorf("unscheduled node moved: %+v", last)
	}
	if last.Position == last.Pin.Position() {
		t.Error("unscheduled corner unexpectedly reached its anchor")
	}
	if nodes[12].Position == (mgl64.Vec3{}) {
		t.Error("scheduled node did not move")
	}

	cfg.Dispatch = DispatchCover
	nodes = testLattice(t, 5, 5)
	s, _ = NewParallel(len(nodes), cfg, nil)
	if err := s.RunTick(nodes, params, 0.016); err != nil {
		t.Fatalf("run tick: %v", err)
	}
	if nodes[24].Position != nodes[24].Pin.Position() {
		t.Errorf("covered corner at %v, anchor %v", nodes[24].Position, nodes[24].Pin.Position())
	}
}

func TestParallelRunTick_MatchesSequentialIntegration(t *testing.T) {
	// Isolated nodes have no constraints, so both strategies reduce to the
	// same Verlet step.
	mk := func() []cloth.Node {
		nodes := make([]cloth.Node, 10)
		for i := range nodes {
			p := mgl64.Vec3{float64(i), 0, 0}
			nodes[i] = cloth.Node{Position: p, PrevPosition: p.Sub(mgl64.Vec3{0.1, 0, 0})}
		}
		return nodes
	}
	params := cloth.DefaultParams()
	params.Iterations = 5

	seq, par := mk(), mk()
	ps, err := NewParallel(len(par), ParallelConfig{Capacity: 16, BlockSize: 4, Passes: 3}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for tick := 0; tick < 20; tick++ {
		if err := NewSequential().RunTick(seq, params, 0.02); err != nil {
			t.Fatal(err)
		}
		if err := ps.RunTick(par, params, 0.02); err != nil {
			t.Fatal(err)
		}
	}

	for i := range seq {
		if d := seq[i].Position.Sub(par[i].Position).Len(); d > 1e-9 || math.IsNaN(d) {
			t.Errorf("node %d diverged by %v", i, d)
		}
	}
}
