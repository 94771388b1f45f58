// Package collector drives the configured browsers over the full
// (browser x jsMode x url x cacheState x iteration) matrix and fills a
// ResultTree with raw timing samples.
//
// The sweep is strictly sequential: one browser process at a time, one page
// at a time, so overlapping instances never contend for CPU, network or disk
// and skew each other's timings. Each iteration launches a fresh profile for
// the cold visit and reloads the same tab for the warm visit.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

const (
	// trialTimeout bounds one cold+warm measurement including browser launch.
	trialTimeout = 90 * time.Second
	// pollTimeout bounds the wait for a single load event.
	pollTimeout = 60 * time.Second
)

// Run executes the full sweep and returns the completed tree plus run
// metadata for the report header. A trial whose cold phase fails is retried
// once; if the retry also fails the trial is stored as an all-null sample so
// every leaf keeps the configured length.
func Run(ctx context.Context, cfg types.Config) (*types.ResultTree, *Meta, error) {
	meta := newMeta(cfg)
	tree := types.NewResultTree(cfg.URLs)
	sweepStart := time.Now()
	for _, b := range types.AllBrowsers() {
		execPath := cfg.ExecPath(b)
		Infof("sweep: browser=%s exec=%s", b, execPath)
		for _, js := range types.AllJSModes() {
			for _, u := range cfg.URLs {
				for i := 0; i < cfg.Iterations; i++ {
					if err := ctx.Err(); err != nil {
						return nil, nil, err
					}
					cold, warm := runTrial(ctx, b, execPath, js, u, cfg.Headless)
					if cold.AllNull() || warm.AllNull() {
						meta.FailedTrials++
					}
					if err := tree.Append(b, js, u, types.Cold, cold); err != nil {
						return nil, nil, err
					}
					if err := tree.Append(b, js, u, types.Warm, warm); err != nil {
						return nil, nil, err
					}
					Trialf(LevelDebug, b, js, u, "trial %d/%d done", i+1, cfg.Iterations)
				}
			}
		}
	}
	meta.SweepDuration = time.Since(sweepStart)
	if err := tree.Validate(); err != nil {
		return nil, nil, err
	}
	Infof("sweep finished in %s (%d failed trials)", meta.SweepDuration.Round(time.Second), meta.FailedTrials)
	return tree, meta, nil
}

// runTrial measures one cold+warm pair, retrying the whole trial once when
// the cold phase fails. All-null samples are the terminal fallback, never an
// abort: a lost trial must not shrink the leaf.
func runTrial(ctx context.Context, b types.Browser, execPath string, js types.JSMode, url string, headless bool) (cold, warm types.RawSample) {
	for attempt := 1; attempt <= 2; attempt++ {
		var err error
		cold, warm, err = measureOnce(ctx, b, execPath, js, url, headless)
		if err == nil {
			return cold, warm
		}
		Trialf(LevelWarn, b, js, url, "trial failed (attempt %d/2): %v", attempt, err)
	}
	return types.RawSample{}, types.RawSample{}
}

// measureOnce launches a fresh browser profile, performs the cold visit and
// the warm reload, and reads the timing entries after each. A warm-phase
// failure is not retriable (the fresh-profile cold state is already spent),
// so it degrades to an all-null warm sample instead of an error.
func measureOnce(parent context.Context, b types.Browser, execPath string, js types.JSMode, url string, headless bool) (cold, warm types.RawSample, err error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	ctx, cancel := context.WithTimeout(tabCtx, trialTimeout)
	defer cancel()

	// Browser start-up time: process launch until the DevTools session
	// answers. Recorded on the cold sample only.
	launchStart := time.Now()
	if err := chromedp.Run(ctx); err != nil {
		return cold, warm, fmt.Errorf("launch %s: %w", b, err)
	}
	startupMs := float64(time.Since(launchStart).Milliseconds())

	var loaded bool
	var tasks chromedp.Tasks
	if js == types.JSOff {
		tasks = append(tasks, emulation.SetScriptExecutionDisabled(true))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.Poll(loadedScript, &loaded, chromedp.WithPollingTimeout(pollTimeout)),
	)
	if err := chromedp.Run(ctx, tasks); err != nil {
		return cold, warm, fmt.Errorf("cold visit %s: %w", url, err)
	}
	cold = readSample(ctx, b, url)
	cold.BrowserStartTime = &startupMs

	if err := chromedp.Run(ctx,
		chromedp.Reload(),
		chromedp.Poll(loadedScript, &loaded, chromedp.WithPollingTimeout(pollTimeout)),
	); err != nil {
		Trialf(LevelWarn, b, js, url, "warm reload failed: %v", err)
		return cold, types.RawSample{}, nil
	}
	warm = readSample(ctx, b, url)
	return cold, warm, nil
}

// readSample evaluates the timing script in the current document. Evaluation
// failure yields an all-null sample; individual unavailable entries come back
// as nulls from the script itself.
func readSample(ctx context.Context, b types.Browser, url string) types.RawSample {
	var p timingPayload
	if err := chromedp.Run(ctx, chromedp.Evaluate(timingScript, &p)); err != nil {
		Warnf("timing read failed: %s %s: %v", b, url, err)
		return types.RawSample{}
	}
	return p.sample()
}
