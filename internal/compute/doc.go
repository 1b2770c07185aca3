// Package compute provides the solver strategies that advance a net by one
// frame.
//
// Two strategies share the same node arena:
//
//   - [SequentialSolver]: in-place Gauss-Seidel relaxation, Iterations sweeps
//     per frame in index order
//   - [ParallelSolver]: uploads the arena into fixed-layout [NodeRecord]s and
//     dispatches the Integrate and ResolveConstraints kernels over work groups
//
// # Kernels
//
// [Kernels] is the compute contract. [CPUKernels] runs each work group of
// BlockSize records on its own goroutine and blocks until all groups finish:
//
//	solver, err := compute.NewSolver(compute.Parallel, nodeCount, compute.DefaultParallelConfig())
//	err = solver.RunTick(nodes, params, dt)
//
// The parallel strategy is not a drop-in equivalent of the sequential one:
// it resolves constraints Jacobi-style, Passes times per frame (once by
// default), and under [DispatchTruncate] a trailing partial group is never
// scheduled.
package compute
