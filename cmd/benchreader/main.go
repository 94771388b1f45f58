// benchreader prints the scenario averages of a results file as a plain text
// table, for a quick look without opening the HTML report.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jessehattabaugh/browser-performance-test/src/analysis"
	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "benchmark_results.json", "Path to benchmark results JSON")
	flag.Parse()

	tree, err := types.LoadResults(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	averages, err := analysis.ScenarioAverages(tree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "scenario\tcold start\tcold FCP\tcold load\twarm FCP\twarm load")
	for _, b := range types.AllBrowsers() {
		for _, js := range types.AllJSModes() {
			for _, u := range tree.URLs() {
				pair := averages[analysis.ScenarioKey{Browser: b, JS: js, URL: u}]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					analysis.ScenarioLabel(b, js, u),
					ms(pair.Cold.BrowserStartTime),
					ms(pair.Cold.FirstContentfulPaint),
					ms(pair.Cold.LoadEventEnd),
					ms(pair.Warm.FirstContentfulPaint),
					ms(pair.Warm.LoadEventEnd),
				)
			}
		}
	}
	w.Flush()
}

func ms(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
