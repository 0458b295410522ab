package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/internal/stubserver"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
	"github.com/MrEthical07/goAuthClient/password"
)

func loadtestCmd() *cobra.Command {
	var (
		accounts    int
		concurrency int
		ops         int
	)

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Run concurrent login exchanges and report latency percentiles",
		Long: "Runs login exchanges from concurrent submitters against an in-process stub " +
			"endpoint, or against --base-url after signing the accounts up there.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accounts <= 0 || concurrency <= 0 || ops <= 0 {
				return fmt.Errorf("accounts, concurrency, and ops must be > 0")
			}
			if !cmd.Flag("store").Changed {
				storeKind = storeMemory
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			external := cmd.Flag("base-url").Changed
			if !external {
				stop, err := startLoadtestStub(accounts)
				if err != nil {
					return err
				}
				defer stop()
				fmt.Fprintf(out, "using in-process stub at %s\n", config.Endpoint.BaseURL)
			}

			client, closeClient, err := newClient(ctx, func(b *goAuthClient.Builder) {
				b.WithMetricsEnabled(true).WithLatencyHistograms(true)
			})
			if err != nil {
				return err
			}
			defer closeClient()

			if external {
				fmt.Fprintf(out, "signing up %d accounts...\n", accounts)
				if err := seedAccounts(ctx, client, accounts); err != nil {
					return err
				}
			}

			stats, err := runLoginPhase(ctx, client, accounts, ops, concurrency)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "---- results ----")
			printStats(out, "login", stats)
			printCounters(out, client.MetricsSnapshot())
			return nil
		},
	}

	cmd.Flags().IntVar(&accounts, "accounts", 100, "number of accounts to seed")
	cmd.Flags().IntVar(&concurrency, "concurrency", 16, "number of concurrent submitters")
	cmd.Flags().IntVar(&ops, "ops", 2000, "login exchanges to run")
	return cmd
}

func loadtestPassword(i int) string {
	return fmt.Sprintf("password-%d", i)
}

func loadtestUser(i int) string {
	return fmt.Sprintf("user-%d", i)
}

// startLoadtestStub serves a stub with cheap password hashing and points config at it.
func startLoadtestStub(accounts int) (func(), error) {
	deriver, err := password.NewDeriver(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		return nil, err
	}
	stub, err := stubserver.New(stubserver.Config{
		LoginPath:  config.Endpoint.LoginPath,
		SignupPath: config.Endpoint.SignupPath,
		Secret:     []byte("loadtest"),
		Deriver:    deriver,
	})
	if err != nil {
		return nil, err
	}
	for i := 0; i < accounts; i++ {
		if err := stub.AddAccount(loadtestUser(i), loadtestPassword(i), "USER"); err != nil {
			return nil, err
		}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: stub.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	config.Endpoint.BaseURL = "http://" + ln.Addr().String()
	return func() { _ = srv.Close() }, nil
}

func seedAccounts(ctx context.Context, client *goAuthClient.Client, accounts int) error {
	signals := make(signalChan, 8)
	sub, err := client.NewSubmitter(goAuthClient.OperationSignup, signals)
	if err != nil {
		return err
	}
	defer sub.Close()

	for i := 0; i < accounts; i++ {
		sig, err := runAttempt(ctx, sub, signals, goAuthClient.Credentials{Username: loadtestUser(i), Password: loadtestPassword(i)})
		if err != nil {
			return err
		}
		if sig.Kind == goAuthClient.SignalGenericNotification {
			return fmt.Errorf("signup %s: %s", loadtestUser(i), sig.Message)
		}
	}
	return nil
}

func runLoginPhase(ctx context.Context, client *goAuthClient.Client, accounts, ops, concurrency int) (phaseStats, error) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
		firstErr  error
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		signals := make(signalChan, 8)
		sub, err := client.NewSubmitter(goAuthClient.OperationLogin, signals)
		if err != nil {
			return phaseStats{}, err
		}

		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			defer sub.Close()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(accounts)
				t0 := time.Now()
				sig, err := runAttempt(ctx, sub, signals, goAuthClient.Credentials{Username: loadtestUser(idx), Password: loadtestPassword(idx)})
				d := time.Since(t0)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				if sig.Kind != goAuthClient.SignalSessionReady {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	if firstErr != nil {
		return phaseStats{}, firstErr
	}
	return computeStats(time.Since(start), latencies, failures), nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(w io.Writer, name string, s phaseStats) {
	fmt.Fprintf(w, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func printCounters(w io.Writer, snap goAuthClient.MetricsSnapshot) {
	for _, def := range internaldefs.CounterDefs {
		if v := snap.Counters[def.ID]; v > 0 {
			fmt.Fprintf(w, "%s %d\n", def.Name, v)
		}
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[def.ID]))
		for i, le := range internaldefs.HistogramBounds {
			fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", def.Name, le, buckets[i])
		}
	}
}
