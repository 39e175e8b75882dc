package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"warbler/internal/app"
)

type benchOptions struct {
	duration    time.Duration
	concurrency int
	users       int
}

type benchSummary struct {
	Requests   int64
	Throughput float64
	Mean       time.Duration
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	Max        time.Duration
}

func newBenchFeedCmd() *cobra.Command {
	opts := benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench-feed",
		Short: "Measure home feed latency for random existing users",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			ids, err := rt.store.Users.IDs(cmd.Context(), opts.users)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return errors.New("no users to benchmark, run seed first")
			}

			summary, err := benchFeed(cmd.Context(), rt.services(0).Feed, ids, opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.duration, "duration", 10*time.Second, "How long to run")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Concurrent feed readers")
	cmd.Flags().IntVar(&opts.users, "users", 0, "Sample from the first N users (0 = all)")
	return cmd
}

// benchFeed reads home feeds until opts.duration elapses. Each worker keeps
// its own histogram of microsecond latencies; they are merged at the end.
func benchFeed(ctx context.Context, feed *app.FeedService, ids []uint, opts benchOptions) (benchSummary, error) {
	if opts.concurrency <= 0 {
		opts.concurrency = 1
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	histograms := make([]*hdrhistogram.Histogram, opts.concurrency)
	g, gctx := errgroup.WithContext(runCtx)
	start := time.Now()
	for w := 0; w < opts.concurrency; w++ {
		histogram := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
		histograms[w] = histogram
		rng := rand.New(rand.NewPCG(uint64(w), uint64(start.UnixNano())))

		g.Go(func() error {
			for gctx.Err() == nil {
				viewer := ids[rng.IntN(len(ids))]
				began := time.Now()
				if _, err := feed.HomeFeed(gctx, viewer); err != nil {
					if gctx.Err() != nil {
						return nil
					}
					return err
				}
				_ = histogram.RecordValue(time.Since(began).Microseconds())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return benchSummary{}, err
	}
	elapsed := time.Since(start)

	merged := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
	for _, h := range histograms {
		merged.Merge(h)
	}
	return summarize(merged, elapsed), nil
}

func summarize(h *hdrhistogram.Histogram, elapsed time.Duration) benchSummary {
	micros := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	summary := benchSummary{
		Requests: h.TotalCount(),
		Mean:     time.Duration(h.Mean() * float64(time.Microsecond)),
		P50:      micros(h.ValueAtQuantile(50)),
		P95:      micros(h.ValueAtQuantile(95)),
		P99:      micros(h.ValueAtQuantile(99)),
		Max:      micros(h.Max()),
	}
	if elapsed > 0 {
		summary.Throughput = float64(summary.Requests) / elapsed.Seconds()
	}
	return summary
}

func printSummary(w io.Writer, s benchSummary) {
	fmt.Fprintf(w, "requests=%d throughput=%.1f/s\n", s.Requests, s.Throughput)
	fmt.Fprintf(w, "mean=%s p50=%s p95=%s p99=%s max=%s\n", s.Mean, s.P50, s.P95, s.P99, s.Max)
}
