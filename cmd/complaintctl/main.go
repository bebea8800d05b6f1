package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"ComplaintClassifier/internal/app"
	"ComplaintClassifier/internal/config"
	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/infrastructure/llm"
	"ComplaintClassifier/internal/infrastructure/ml"
	"ComplaintClassifier/internal/infrastructure/scheduler"
	"ComplaintClassifier/internal/logging"
)

const usage = `usage: complaintctl <command> [flags]

commands:
  generate   write a synthetic labeled corpus
  train      fit the classifier and save the artifact (-schedule to repeat)
  classify   send a complaint to a running service
  runs       list recorded training runs
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "complaintctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	cfg := config.Load()
	switch args[0] {
	case "generate":
		return runGenerate(cfg, args[1:], out)
	case "train":
		return runTrain(ctx, cfg, args[1:], out)
	case "classify":
		return runClassify(ctx, cfg, args[1:], out)
	case "runs":
		return runRuns(ctx, cfg, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runGenerate(cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	n := fs.Int("n", cfg.Synth.Records, "number of records")
	output := fs.String("o", cfg.Corpus.Path, "output CSV path")
	seed := fs.Int64("seed", cfg.Synth.Seed, "generator seed, 0 for random")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Corpus.Path = *output
	cfg.Synth.Seed = *seed
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err := app.NewSynthesizer(cfg, logger).Run(*n); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d records to %s\n", *n, cfg.Corpus.Path)
	return nil
}

func runTrain(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	corpusPath := fs.String("corpus", cfg.Corpus.Path, "labeled CSV path")
	artifactPath := fs.String("o", cfg.Model.ArtifactPath, "artifact output path")
	seed := fs.Uint64("seed", cfg.Training.Seed, "split seed")
	schedule := fs.String("schedule", cfg.Training.Schedule, `retrain on a cron schedule ("@daily", "0 3 * * *") until interrupted`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Corpus.Path = *corpusPath
	cfg.Model.ArtifactPath = *artifactPath
	cfg.Training.Seed = *seed
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	trainer, err := app.NewTrainer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := trainer.Close(); err != nil {
			logger.Warn("close run ledger", "error", err)
		}
	}()

	trainOnce := func(ctx context.Context, _ time.Time) error {
		report, err := trainer.Train(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Accuracy: %.2f\n", report.Run.Accuracy)
		return nil
	}
	if *schedule == "" {
		return trainOnce(ctx, time.Now())
	}
	sched, err := scheduler.NewCronScheduler(*schedule, logger.With("component", "scheduler"))
	if err != nil {
		return err
	}
	return sched.Run(ctx, trainOnce)
}

func runClassify(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	text := fs.String("text", "", "complaint narrative")
	category := fs.String("category", "", "complaint category, echoed back")
	priority := fs.String("priority", "", "priority, echoed back")
	train := fs.String("train", "", "train number, echoed back")
	location := fs.String("location", "", "location, echoed back")
	categorize := fs.Bool("categorize", false, "ask the configured LLM for the category first")
	url := fs.String("url", cfg.Client.ServiceURL, "classifier service URL")
	timeout := fs.Duration("timeout", cfg.Client.Timeout, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*text) == "" {
		return errors.New("classify: -text is required")
	}

	req := domain.ClassificationRequest{
		ComplaintText: *text,
		Category:      optional(*category),
		Priority:      optional(*priority),
		TrainNumber:   optional(*train),
		Location:      optional(*location),
	}

	if *categorize && req.Category == nil {
		categorizer, err := llm.NewCategorizer(cfg.LLM)
		if err != nil {
			return err
		}
		llmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		cat, err := categorizer.Categorize(llmCtx, *text)
		cancel()
		if err != nil {
			return fmt.Errorf("categorize: %w", err)
		}
		req.Category = optional(string(cat))
	}

	res, err := ml.NewClient(*url, *timeout).Classify(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Department: %s\n", res.Department)
	fmt.Fprintf(out, "Confidence: %.2f\n", res.Confidence)
	if res.Category != nil {
		fmt.Fprintf(out, "Category:   %s\n", *res.Category)
	}
	if res.Priority != nil {
		fmt.Fprintf(out, "Priority:   %s\n", *res.Priority)
	}
	return nil
}

func runRuns(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("n", 10, "number of runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	repo, db, err := app.OpenRuns(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repo.Recent(ctx, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFINISHED\tACCURACY\tTRAIN/TEST\tARTIFACT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d/%d\t%s\n",
			r.ID, r.FinishedAt.Format(time.RFC3339), r.Accuracy, r.TrainSize, r.TestSize, r.ArtifactPath)
	}
	return tw.Flush()
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
