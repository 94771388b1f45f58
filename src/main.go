// Page-load benchmark entrypoint.
//
// Two modes:
//  1. Sweep mode (default): drive both browsers across the configured URL
//     matrix, write the raw results JSON, then aggregate and write the HTML
//     report.
//  2. Report-only mode (--report-only): skip collection, load an existing
//     results JSON and re-render the report from it.
//
// Design notes:
//   - Dependency direction: main -> collector for sampling, analysis for
//     aggregation, report for rendering. The analysis package never sees a
//     browser and the report package never recomputes a mean.
//   - Undefined averages flow through as JSON null / "n/a"; only structural
//     problems (a malformed results file) abort the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessehattabaugh/browser-performance-test/src/analysis"
	"github.com/jessehattabaugh/browser-performance-test/src/collector"
	"github.com/jessehattabaugh/browser-performance-test/src/report"
	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional; compiled-in defaults otherwise)")
	outFile := flag.String("out", "", "Results JSON path (overrides config results_file)")
	reportFile := flag.String("report", "", "HTML report path (overrides config report_file)")
	iterations := flag.Int("iterations", 0, "Trials per scenario (overrides config when >0)")
	headless := flag.Bool("headless", false, "Run browsers headless (overrides config when set)")
	logLevel := flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	reportOnly := flag.Bool("report-only", false, "Skip collection; re-render the report from an existing results file")
	flag.Parse()

	collector.SetLogLevel(*logLevel)

	cfg, err := types.LoadConfig(*configPath)
	if err != nil {
		collector.Errorf("%v", err)
		os.Exit(1)
	}
	if *outFile != "" {
		cfg.ResultsFile = *outFile
	}
	if *reportFile != "" {
		cfg.ReportFile = *reportFile
	}
	if *iterations > 0 {
		cfg.Iterations = *iterations
	}
	if flagPassed("headless") {
		cfg.Headless = *headless
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tree *types.ResultTree
	var meta *collector.Meta
	if *reportOnly {
		tree, err = types.LoadResults(cfg.ResultsFile)
		if err != nil {
			collector.Errorf("%v", err)
			os.Exit(1)
		}
		collector.Infof("loaded %s (%d urls)", cfg.ResultsFile, len(tree.URLs()))
	} else {
		tree, meta, err = collector.Run(ctx, cfg)
		if err != nil {
			collector.Errorf("sweep: %v", err)
			os.Exit(1)
		}
		if err := types.WriteResults(cfg.ResultsFile, tree); err != nil {
			collector.Errorf("%v", err)
			os.Exit(1)
		}
		collector.Infof("wrote %s", cfg.ResultsFile)
	}

	averages, err := analysis.ScenarioAverages(tree)
	if err != nil {
		collector.Errorf("aggregate: %v", err)
		os.Exit(1)
	}
	stats, err := analysis.CumulativeStats(tree)
	if err != nil {
		collector.Errorf("aggregate: %v", err)
		os.Exit(1)
	}
	deltas := analysis.Deltas(stats)

	f, err := os.Create(cfg.ReportFile)
	if err != nil {
		collector.Errorf("create report: %v", err)
		os.Exit(1)
	}
	renderErr := report.Render(f, report.Data{
		Tree:     tree,
		Averages: averages,
		Stats:    stats,
		Deltas:   deltas,
		Meta:     meta,
	})
	if cerr := f.Close(); renderErr == nil {
		renderErr = cerr
	}
	if renderErr != nil {
		collector.Errorf("render report: %v", renderErr)
		os.Exit(1)
	}
	collector.Infof("wrote %s", cfg.ReportFile)
	fmt.Printf("report: %s\n", cfg.ReportFile)
}

// flagPassed reports whether a flag was set explicitly on the command line.
func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}
