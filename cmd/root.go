// cmd/root.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tseval/tseval/eval"
	"github.com/tseval/tseval/eval/knn"
)

var (
	configPath string
	logLevel   string

	dataPath     string
	method       string
	kernelName   string
	threads      int
	storing      bool
	fullParallel bool
	stratified   bool
	seeds        []int64
	percentage   float64
	folds        int
	neighbours   int
	relWidth     float64
	absWidth     int
	epsilon      float64
	gapValue     float64
	nu           float64
	lambda       float64
)

var rootCmd = &cobra.Command{
	Use:   "tseval",
	Short: "Resampling-based evaluation harness for time-series classifiers",
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Estimate out-of-sample error with LOO, k-fold CV or holdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		dataset, err := ReadDataset(dataPath)
		if err != nil {
			return err
		}
		logrus.Infof("Evaluating %s with %s/%s on %d series (threads=%d)",
			dataPath, cfg.Method, cfg.Kernel, dataset.Len(), cfg.Threads)

		kernel, err := cfg.NewKernel()
		if err != nil {
			return err
		}
		classifier, err := knn.NewClassifier(cfg.K, kernel)
		if err != nil {
			return err
		}
		evaluator, err := cfg.NewEvaluator()
		if err != nil {
			return err
		}
		if cb, ok := evaluator.(interface{ SetCallback(eval.Callback) }); ok {
			cb.SetCallback(eval.NewLogCallback(10))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		errRate, err := evaluator.Evaluate(ctx, nil, classifier, dataset)
		if err != nil {
			return err
		}
		fmt.Printf("error rate: %.6f (%d misclassified)\n", errRate, evaluator.Misclassified())
		for i, fold := range evaluator.Results() {
			logrus.Debugf("fold %d: %d/%d misclassified (error %.4f)",
				i, fold.Misclassified, fold.Test.Len(), fold.Error)
		}
		logrus.Info("Evaluation complete.")
		return nil
	},
}

var distancesCmd = &cobra.Command{
	Use:   "distances",
	Short: "Precompute the pairwise distance matrix of a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		dataset, err := ReadDataset(dataPath)
		if err != nil {
			return err
		}
		kernel, err := cfg.NewKernel()
		if err != nil {
			return err
		}
		gen := eval.NewDistanceMatrixGenerator(cfg.Threads)
		defer gen.Shutdown()
		gen.SetCallback(eval.NewLogCallback(10))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		matrix, err := gen.Generate(ctx, kernel, dataset)
		if err != nil {
			return err
		}
		w := bufferedStdout()
		defer w.Flush()
		for _, row := range matrix {
			for j, v := range row {
				if j > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, "%g", v)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

func bufferedStdout() *bufio.Writer {
	return bufio.NewWriter(os.Stdout)
}

// resolveConfig layers defaults, the optional config file, and explicit
// flags, then validates the result.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", logLevel)
	}
	logrus.SetLevel(level)

	cfg := DefaultConfig()
	if configPath != "" {
		cfg, err = LoadConfig(configPath)
		if err != nil {
			return Config{}, err
		}
	}
	flagged := func(name string) bool { return cmd.Flags().Changed(name) }
	if flagged("method") {
		cfg.Method = method
	}
	if flagged("kernel") {
		cfg.Kernel = kernelName
	}
	if flagged("threads") {
		cfg.Threads = threads
	}
	if flagged("storing") {
		cfg.Storing = storing
	}
	if flagged("full-parallel") {
		cfg.FullParallel = fullParallel
	}
	if flagged("stratified") {
		cfg.Stratified = stratified
	}
	if flagged("seeds") {
		cfg.Seeds = seeds
	}
	if flagged("percentage") {
		cfg.Percentage = percentage
	}
	if flagged("folds") {
		cfg.Folds = folds
	}
	if flagged("k") {
		cfg.K = neighbours
	}
	if flagged("r") {
		cfg.R = relWidth
	}
	if flagged("w") {
		cfg.W = absWidth
	}
	if flagged("epsilon") {
		cfg.Epsilon = epsilon
	}
	if flagged("g") {
		cfg.G = gapValue
	}
	if flagged("nu") {
		cfg.Nu = nu
	}
	if flagged("lambda") {
		cfg.Lambda = lambda
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEnvelopeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dataPath, "data", "", "Dataset file (label, v1, v2, ... per line)")
	cmd.Flags().StringVar(&kernelName, "kernel", "dtw", "Distance kernel (dtw, edr, erp, twed, manhattan, scdtw, scedr, scerp, itakura)")
	cmd.Flags().IntVar(&threads, "threads", 1, "Worker pool size")
	cmd.Flags().BoolVar(&storing, "storing", false, "Enable distance memoization")
	cmd.Flags().Float64Var(&relWidth, "r", 0, "Relative warping window width in [0,1]")
	cmd.Flags().IntVar(&absWidth, "w", 0, "Absolute minimum warping window width")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "Matching threshold (EDR family)")
	cmd.Flags().Float64Var(&gapValue, "g", 0, "Gap penalty value (ERP family)")
	cmd.Flags().Float64Var(&nu, "nu", 0, "TWED stiffness")
	cmd.Flags().Float64Var(&lambda, "lambda", 0, "TWED deletion penalty")
	_ = cmd.MarkFlagRequired("data")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Yaml evaluation config file")

	addEnvelopeFlags(evaluateCmd)
	evaluateCmd.Flags().StringVar(&method, "method", "loo", "Resampling method (loo, cv, holdout)")
	evaluateCmd.Flags().BoolVar(&fullParallel, "full-parallel", false, "Enable the parallel tuning branch")
	evaluateCmd.Flags().BoolVar(&stratified, "stratified", false, "Stratified instead of random splits")
	evaluateCmd.Flags().Int64SliceVar(&seeds, "seeds", nil, "Per-run RNG seeds")
	evaluateCmd.Flags().Float64Var(&percentage, "percentage", 70, "Holdout training percentage in [0,100]")
	evaluateCmd.Flags().IntVar(&folds, "folds", 10, "Number of cross-validation folds")
	evaluateCmd.Flags().IntVar(&neighbours, "k", 1, "Neighbour count for the kNN classifier")

	addEnvelopeFlags(distancesCmd)

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(distancesCmd)
}
