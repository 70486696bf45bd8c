// Package docbench is the measurement engine at the core of DocBench:
// it decomposes document-database request latency into connection,
// serialization, wire, server, and client-side cost components, and
// drives adapters and workloads through a reproducible, seeded
// benchmark lifecycle.
//
// The package owns the adapter and workload abstractions, the
// operation/result model, the document generator, the benchmark
// orchestrator, and the result aggregate. The histogram accumulator
// lives in the accumulator subpackage, the two reference binary-JSON
// traversal strategies in wireformat and the adapters subpackages, and
// the two built-in workloads in the workloads subpackage — each
// self-registers with this package's adapter/workload registries via
// its own init(), the way database/sql drivers self-register.
package docbench
