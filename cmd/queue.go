package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AnyUserName/stackblur/internal/hasher"
	"github.com/AnyUserName/stackblur/internal/logging"
	"github.com/AnyUserName/stackblur/internal/pipeline"
	"github.com/AnyUserName/stackblur/internal/queue"
	"github.com/spf13/cobra"
)

var (
	redisAddr     string
	redisPassword string
	redisDB       int

	enqueueOutDir  string
	enqueueProfile string
	enqueueRadius  int
	enqueueMode    string

	workerID           string
	workerPlaneWorkers int
	workerPoll         time.Duration
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <input_dir>",
	Short: "Push a blur job for every image in a directory onto the Redis queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnqueue,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume blur jobs from the Redis queue until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWorker,
}

func init() {
	for _, c := range []*cobra.Command{enqueueCmd, workerCmd} {
		c.Flags().StringVar(&redisAddr, "redis", "localhost:6379", "redis address")
		c.Flags().StringVar(&redisPassword, "redis-password", "", "redis password")
		c.Flags().IntVar(&redisDB, "redis-db", 0, "redis database")
	}

	f := enqueueCmd.Flags()
	f.StringVarP(&enqueueOutDir, "out", "o", "./stackblur_out", "output directory workers write to")
	f.StringVarP(&enqueueProfile, "profile", "p", "", "blur profile (empty = worker default)")
	f.IntVarP(&enqueueRadius, "radius", "r", 0, "blur radius override (0 = profile default)")
	f.StringVarP(&enqueueMode, "mode", "m", "", "channel mode override")

	w := workerCmd.Flags()
	w.StringVar(&workerID, "id", "", "worker id (default host-pid)")
	w.IntVar(&workerPlaneWorkers, "plane-workers", 1, "goroutines per blur pass")
	w.DurationVar(&workerPoll, "poll", 2*time.Second, "queue poll timeout")

	rootCmd.AddCommand(enqueueCmd, workerCmd)
}

// jobOutput maps a source to its output path, keeping jpeg, png and webp
// extensions and writing everything else as png.
func jobOutput(outDir string, src pipeline.Source) string {
	ext := filepath.Ext(src.RelPath)
	switch src.Format {
	case "jpeg", "png", "webp":
	default:
		ext = ".png"
	}
	return filepath.Join(outDir, src.Key+".blur"+ext)
}

func buildJobs(sources []pipeline.Source, outDir, prof string, radius int, mode string) []*queue.Job {
	jobs := make([]*queue.Job, 0, len(sources))
	for _, src := range sources {
		jobs = append(jobs, &queue.Job{
			ID:      hasher.ContentHash([]byte(src.AbsPath), 12),
			Input:   src.AbsPath,
			Output:  jobOutput(outDir, src),
			Profile: prof,
			Radius:  radius,
			Mode:    mode,
		})
	}
	return jobs
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(enqueueOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	sources, err := pipeline.ScanImages(absInput, absOutput)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return pipeline.ErrNoImages
	}

	ctx := baseContext(cmd)
	q, err := queue.NewRedisQueue(ctx, redisAddr, redisPassword, redisDB)
	if err != nil {
		return err
	}
	defer q.Close()

	for _, job := range buildJobs(sources, absOutput, enqueueProfile, enqueueRadius, enqueueMode) {
		if err := q.PushJob(ctx, job); err != nil {
			return fmt.Errorf("push %s: %w", job.Input, err)
		}
		logVerbose("queued %s -> %s", job.Input, job.Output)
	}

	pending, err := q.Pending(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  queued %d jobs (%d pending)\n", len(sources), pending)
	return nil
}

func defaultWorkerID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(baseContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	q, err := queue.NewRedisQueue(connectCtx, redisAddr, redisPassword, redisDB)
	cancel()
	if err != nil {
		return err
	}
	defer q.Close()

	id := workerID
	if id == "" {
		id = defaultWorkerID()
	}
	logging.Logger().Info("connected", "redis", redisAddr, "worker", id)

	w := &queue.Worker{
		ID:           id,
		Source:       q,
		PlaneWorkers: workerPlaneWorkers,
		PollTimeout:  workerPoll,
	}
	return w.Run(ctx)
}
