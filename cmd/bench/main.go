package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	v1 "roulette/api/roulette/v1"
	"roulette/pkg/xgo"

	"github.com/go-kratos/kratos/v2/transport/http"
	"golang.org/x/sync/errgroup"
)

type options struct {
	endpoint    string
	batches     int
	spins       int64
	workers     int
	seed        uint64
	concurrency int
	poll        time.Duration
	timeout     time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.endpoint, "endpoint", "127.0.0.1:8000", "roulette http endpoint")
	flag.IntVar(&opts.batches, "batches", 4, "")
	flag.Int64Var(&opts.spins, "spins", 100000, "spins per batch")
	flag.IntVar(&opts.workers, "workers", 0, "0 uses server default")
	flag.Uint64Var(&opts.seed, "seed", 0, "0 means random; batch i uses seed+i")
	flag.IntVar(&opts.concurrency, "concurrency", 2, "")
	flag.DurationVar(&opts.poll, "poll", time.Second, "")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Minute, "")
	flag.Parse()
	if opts.concurrency < 1 {
		opts.concurrency = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	conn, err := http.NewClient(ctx,
		http.WithEndpoint(opts.endpoint),
		http.WithTimeout(30*time.Second),
	)
	if err != nil {
		fmt.Printf("dial %s failed: %v\n", opts.endpoint, err)
		os.Exit(1)
	}
	defer conn.Close()

	start := time.Now()
	results := run(ctx, v1.NewRouletteServiceHTTPClient(conn), opts)
	summarize(results, time.Since(start))
}

func buildRequest(i int, opts options) *v1.CreateBatchRequest {
	req := &v1.CreateBatchRequest{
		Spins:       opts.spins,
		Workers:     int32(opts.workers),
		Description: fmt.Sprintf("bench #%d", i+1),
	}
	if opts.seed > 0 {
		req.Seed = opts.seed + uint64(i)
	}
	return req
}

// run 并发创建批次并轮询至结束，失败的批次记为 nil
func run(ctx context.Context, client v1.RouletteServiceHTTPClient, opts options) []*v1.Batch {
	results := make([]*v1.Batch, opts.batches)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i := 0; i < opts.batches; i++ {
		g.Go(func() error {
			reply, err := client.CreateBatch(ctx, buildRequest(i, opts))
			if err != nil {
				fmt.Printf("batch #%d create failed: %v\n", i+1, err)
				return nil
			}
			fmt.Printf("batch #%d created: %s\n", i+1, reply.Batch.BatchId)
			b, err := wait(ctx, client, reply.Batch.BatchId, opts.poll)
			if err != nil {
				fmt.Printf("batch %s poll failed: %v\n", reply.Batch.BatchId, err)
				return nil
			}
			results[i] = b
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func wait(ctx context.Context, client v1.RouletteServiceHTTPClient, id string, poll time.Duration) (*v1.Batch, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		reply, err := client.GetBatch(ctx, &v1.BatchRequest{BatchId: id})
		if err != nil {
			return nil, err
		}
		b := reply.Batch
		switch b.Status {
		case "completed", "failed", "cancelled":
			return b, nil
		}
		fmt.Printf("  %s %.1f%% %.0f spins/s\n", b, b.ProgressPct, b.SpinsPerSec)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func summarize(results []*v1.Batch, cost time.Duration) {
	done := make([]*v1.Batch, 0, len(results))
	var spins int64
	for _, b := range results {
		if b != nil {
			done = append(done, b)
			spins += b.Completed
		}
	}
	sort.Slice(done, func(i, j int) bool { return done[i].BatchId < done[j].BatchId })

	fmt.Printf("\n%d/%d batches finished in %s, %.0f spins/s overall\n",
		len(done), len(results), xgo.ShortDuration(cost), xgo.PerSecond(spins, cost))
	for _, b := range done {
		fmt.Printf("%-20s %-9s chi2=%7.2f uniform=%-5v red=%d black=%d green=%d\n",
			b.BatchId, b.Status, b.ChiSquare, b.Uniform, b.Red, b.Black, b.Green)
		if b.ChartUrl != "" {
			fmt.Printf("  chart: %s\n", b.ChartUrl)
		}
	}
}
