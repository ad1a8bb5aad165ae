package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/klauspost/cpuid/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-accsum/hwy"
	"github.com/ajroetker/go-accsum/hwy/contrib/accsum"
	"github.com/ajroetker/go-accsum/hwy/contrib/workerpool"
	"github.com/ajroetker/go-accsum/internal/accuracy"
)

type options struct {
	n           int
	elemType    string
	spread      int
	unrollShift int
	remainder   string
	reps        int
	workers     int
	seed        uint64
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "accsumbench",
		Short:         "Time compensated summation kernels and report their accuracy",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.n, "size", "n", 1<<20, "number of elements to sum")
	flags.StringVarP(&opts.elemType, "type", "t", "f64", "element type: f32 or f64")
	flags.IntVar(&opts.spread, "spread", 0, "binary exponent spread of cancelling pairs (0: uniform input)")
	flags.IntVar(&opts.unrollShift, "unroll-shift", accsum.DefaultUnrollShift, "accumulator chains U = 1<<shift, shift in [0,5]")
	flags.StringVar(&opts.remainder, "remainder", accsum.RemainderScalar.String(), "tail policy: scalar or mask")
	flags.IntVar(&opts.reps, "reps", 5, "timed repetitions per kernel (best is reported)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "workers for the exact reference sum (0: GOMAXPROCS)")
	flags.Uint64Var(&opts.seed, "seed", 1, "random seed")
	return cmd
}

func run(w io.Writer, opts options) error {
	if opts.n < 0 {
		return fmt.Errorf("--size must be non-negative, got %d", opts.n)
	}
	if opts.reps < 1 {
		return fmt.Errorf("--reps must be at least 1, got %d", opts.reps)
	}
	if opts.workers < 0 {
		return fmt.Errorf("--workers must be non-negative, got %d", opts.workers)
	}
	remainder, err := accsum.ParseRemainder(opts.remainder)
	if err != nil {
		return err
	}
	cfg := accsum.Config{Remainder: remainder, UnrollShift: opts.unrollShift}
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch opts.elemType {
	case "f32", "float32":
		return bench[float32](w, opts, cfg)
	case "f64", "float64":
		return bench[float64](w, opts, cfg)
	default:
		return fmt.Errorf("unknown element type %q (want f32 or f64)", opts.elemType)
	}
}

type kernel[T hwy.Floats] struct {
	name string
	fn   func([]T) T
}

type result struct {
	name    string
	best    time.Duration
	relErr  float64
	perElem float64
}

func bench[T hwy.Floats](w io.Writer, opts options, cfg accsum.Config) error {
	if limit := accuracy.MaxSpread[T](); opts.spread < 0 || opts.spread > limit {
		return fmt.Errorf("--spread must be in [0, %d] for %s, got %d", limit, opts.elemType, opts.spread)
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	var v []T
	if opts.spread > 0 {
		v = accuracy.IllConditioned[T](rng, opts.n, opts.spread)
	} else {
		v = accuracy.Uniform[T](rng, opts.n)
	}
	pool := workerpool.New(opts.workers)
	defer pool.Close()
	exact := accuracy.ExactSumPool(pool, v)

	kernels := []kernel[T]{
		{"naive", accuracy.Naive[T]},
		{"vec-naive", func(v []T) T { return accsum.BaseNaiveSum(v, cfg) }},
		{"kahan", func(v []T) T { return accsum.Cascaded[T, accsum.FastTwoSumEFT[T]](v, cfg) }},
		{"oro", func(v []T) T { return accsum.Cascaded[T, accsum.TwoSumEFT[T]](v, cfg) }},
	}

	results := lo.Map(kernels, func(k kernel[T], _ int) result {
		var got T
		times := lo.Times(opts.reps, func(int) time.Duration {
			start := time.Now()
			got = k.fn(v)
			return time.Since(start)
		})
		best := slices.Min(times)
		return result{
			name:    k.name,
			best:    best,
			relErr:  accuracy.RelErr(got, exact),
			perElem: float64(best.Nanoseconds()) / float64(max(opts.n, 1)),
		}
	})

	printHeader(w, opts, cfg, v, pool)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "kernel\tbest\tns/elem\trel. error")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%v\t%.3f\t%.3e\n", r.name, r.best, r.perElem, r.relErr)
	}
	return tw.Flush()
}

func printHeader[T hwy.Floats](w io.Writer, opts options, cfg accsum.Config, v []T, pool *workerpool.Pool) {
	fmt.Fprintf(w, "cpu:     %s (%d cores)\n", cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores)
	fmt.Fprintf(w, "simd:    %s, %d-byte vectors, %d lanes of %s\n",
		hwy.CurrentName(), hwy.CurrentWidth(), hwy.MaxLanes[T](), opts.elemType)
	fmt.Fprintf(w, "engine:  %v (U=%d)\n", cfg, cfg.Unroll())
	fmt.Fprintf(w, "input:   n=%d spread=%d cond=%.3g seed=%d (reference on %d workers)\n",
		opts.n, opts.spread, accuracy.ConditionPool(pool, v), opts.seed, pool.NumWorkers())
	if features := cpuid.CPU.FeatureSet(); len(features) > 0 {
		simd := lo.Filter(features, func(f string, _ int) bool {
			return strings.HasPrefix(f, "AVX") || strings.HasPrefix(f, "SSE") || f == "ASIMD" || f == "FMA3"
		})
		fmt.Fprintf(w, "features: %s\n", strings.Join(simd, " "))
	}
	fmt.Fprintln(w)
}
