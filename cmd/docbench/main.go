// Command docbench runs one built-in workload against a set of
// reference adapters and prints the resulting per-adapter metric
// summaries.
//
// Grounded on cmd/sysinfo-collector/sysinfo-collector.go's shape: a
// bare flag.FlagSet, a grip-logged result, no subcommands. The
// adapters/workloads packages are blank-imported purely for their
// init() registration side effects, the way database/sql callers
// blank-import a driver package.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"

	"github.com/docbench-project/docbench"
	"github.com/docbench-project/docbench/accumulator"

	_ "github.com/docbench-project/docbench/adapters/hashadapter"
	_ "github.com/docbench-project/docbench/adapters/scanadapter"
	_ "github.com/docbench-project/docbench/workloads/deserialize"
	_ "github.com/docbench-project/docbench/workloads/traverse"
)

func main() {
	grip.GetSender().SetLevel(send.LevelInfo{Threshold: level.Info})

	var (
		workloadID   string
		adapterList  string
		iterations   int
		warmup       int
		seed         int64
		hasSeed      bool
		documentCount int
		csvOutputPath string
		hostMetrics   bool
		configPath    string
	)

	flag.StringVar(&workloadID, "workload", "", "workload id to run (traverse, deserialize); defaults to traverse unless -config sets one")
	flag.StringVar(&adapterList, "adapters", "scan,hash", "comma-separated adapter ids to run against")
	flag.IntVar(&iterations, "iterations", 1000, "measurement iterations")
	flag.IntVar(&warmup, "warmup", 100, "warmup iterations")
	flag.Int64Var(&seed, "seed", 0, "explicit 64-bit seed (default: fresh seed per run)")
	flag.BoolVar(&hasSeed, "has-seed", false, "set true to honor -seed instead of drawing a fresh one")
	flag.IntVar(&documentCount, "document-count", 100, "documents to seed before measurement")
	flag.StringVar(&csvOutputPath, "csv-output", "", "optional path to write per-metric CSV results (blank disables)")
	flag.BoolVar(&hostMetrics, "host-metrics", false, "sample host system info during the measurement phase")
	flag.StringVar(&configPath, "config", "", "optional YAML config file; flags override its fields")
	flag.Parse()

	var cfg docbench.WorkloadConfig
	if configPath != "" {
		var err error
		cfg, err = docbench.LoadWorkloadConfigYAML(configPath)
		if err != nil {
			grip.EmergencyFatal(err)
		}
		if workloadID != "" {
			cfg.Name = workloadID
		}
		workloadID = cfg.Name
	} else {
		if workloadID == "" {
			workloadID = "traverse"
		}
		cfg = docbench.NewWorkloadConfig(workloadID)
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	applyFlag := func(name string) bool { return configPath == "" || explicit[name] }

	if applyFlag("iterations") {
		cfg.Iterations = iterations
	}
	if applyFlag("warmup") {
		cfg.WarmupIterations = warmup
	}
	if applyFlag("document-count") {
		cfg.Params["documentCount"] = documentCount
	}
	if hasSeed {
		cfg = cfg.WithSeed(seed)
	}

	if vr := cfg.Validate(); !vr.Valid() {
		grip.EmergencyFatal(docbench.NewConfigurationError("invalid workload configuration: %v", vr.Messages()))
	}

	factories := make(map[string]docbench.AdapterFactory)
	for _, id := range strings.Split(adapterList, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		adapterID := id
		factories[adapterID] = func() docbench.Adapter {
			a, err := docbench.CreateAdapter(adapterID)
			if err != nil {
				grip.EmergencyFatal(err)
			}
			return a
		}
	}
	if len(factories) == 0 {
		grip.EmergencyFatal(docbench.NewConfigurationError("no adapters requested"))
	}

	newWorkload := func() docbench.Workload {
		w, err := docbench.CreateWorkload(workloadID)
		if err != nil {
			grip.EmergencyFatal(err)
		}
		return w
	}

	orchestrator := docbench.NewOrchestrator(docbench.NewSystemClock(), func() docbench.Accumulator { return accumulator.New() })
	orchestrator.CollectHostMetrics = hostMetrics

	result := orchestrator.RunAcrossAdapters(context.Background(), factories, newWorkload, cfg)

	printResult(result)

	if csvOutputPath != "" {
		if err := writeCSVReport(csvOutputPath, result); err != nil {
			grip.Error(message.WrapError(err, message.Fields{"op": "csv-export", "path": csvOutputPath}))
		}
	}
}

func writeCSVReport(path string, result docbench.BenchmarkResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return docbench.WriteResultsCSV(f, result)
}

func printResult(result docbench.BenchmarkResult) {
	grip.Info(message.Fields{
		"op":       "benchmark-complete",
		"workload": result.WorkloadName,
		"duration": result.Duration.String(),
		"adapters": len(result.Adapters),
	})

	for id, adapterResult := range result.Adapters {
		fmt.Fprintln(os.Stdout, docbench.FormatSummaryLine(id, adapterResult))
	}
}
