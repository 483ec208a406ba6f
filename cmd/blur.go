package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/stackblur/internal/manifest"
	"github.com/AnyUserName/stackblur/internal/pipeline"
	"github.com/AnyUserName/stackblur/internal/plane"
	"github.com/AnyUserName/stackblur/internal/profile"
	"github.com/spf13/cobra"
)

var (
	blurOutDir       string
	blurProfile      string
	blurWorkers      int
	blurPlaneWorkers int
	blurRadius       int
	blurMode         string
	blurMaxWidth     int
	blurQuality      int
	blurFormats      []string
)

var blurCmd = &cobra.Command{
	Use:   "blur <input_dir>",
	Short: "Blur every image in a directory and write a manifest",
	Long: `Scans input directory for images (png, jpg, jpeg, gif, webp, bmp, tiff),
optionally downscales them, applies a stack blur to the selected channels,
and writes the results plus stackblur.manifest.json.

Output filenames are content-addressed: <key>.r<radius>.<hash>.ext`,
	Args: cobra.ExactArgs(1),
	RunE: runBlur,
}

func init() {
	f := blurCmd.Flags()
	f.StringVarP(&blurOutDir, "out", "o", "./stackblur_out", "output directory")
	f.StringVarP(&blurProfile, "profile", "p", profile.Default, "blur profile (preview, frosted, thumbnail, luma)")
	f.IntVarP(&blurWorkers, "workers", "w", 0, "images processed in parallel (0 = NumCPU)")
	f.IntVar(&blurPlaneWorkers, "plane-workers", 1, "goroutines per blur pass")
	f.IntVarP(&blurRadius, "radius", "r", 0, "blur radius 2-254 (0 = profile default)")
	f.StringVarP(&blurMode, "mode", "m", "", "channels to blur: luma, rgb, rgba (empty = profile default)")
	f.IntVar(&blurMaxWidth, "max-width", -1, "downscale wider images first (0 = never, -1 = profile default)")
	f.IntVarP(&blurQuality, "quality", "q", 0, "quality 1-100 (0 = profile default)")
	f.StringSliceVar(&blurFormats, "format", nil, "output formats in priority order (jpeg, png, webp)")
	rootCmd.AddCommand(blurCmd)
}

// applyOverrides layers command-line flags over a named profile.
func applyOverrides(prof profile.Profile, radius int, mode string, maxWidth, quality int, formats []string) (profile.Profile, error) {
	if radius != 0 {
		prof.Radius = radius
	}
	if mode != "" {
		m, err := plane.ParseMode(mode)
		if err != nil {
			return prof, err
		}
		prof.Mode = m
	}
	if maxWidth >= 0 {
		prof.MaxWidth = maxWidth
	}
	if quality > 0 {
		prof.Quality = quality
	}
	if len(formats) > 0 {
		prof.Formats = formats
	}
	return prof, prof.Validate()
}

func runBlur(cmd *cobra.Command, args []string) error {
	start := time.Now()

	// Resolve absolute paths.
	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(blurOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof, err := applyOverrides(profile.Get(blurProfile),
		blurRadius, blurMode, blurMaxWidth, blurQuality, blurFormats)
	if err != nil {
		return err
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (radius=%d, mode=%s, max-width=%d)", prof.Name, prof.Radius, prof.Mode, prof.MaxWidth)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(baseContext(cmd), os.Interrupt)
	defer stop()

	p := pipeline.New(pipeline.Config{
		InputDir:     absInput,
		OutputDir:    absOutput,
		Profile:      prof,
		Workers:      blurWorkers,
		PlaneWorkers: blurPlaneWorkers,
	})
	m, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBlurReport(cmd, m, time.Since(start))
	return nil
}

func printBlurReport(cmd *cobra.Command, m *manifest.Manifest, elapsed time.Duration) {
	out := cmd.OutOrStdout()
	s := m.Stats

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  stackblur: %d images, radius %d, mode %s\n", s.TotalAssets, m.Radius, m.Mode)
	fmt.Fprintf(out, "  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(out, "  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Fprintf(out, "  Blur time:   %.1f ms total\n", s.TotalBlurMS)
	if s.Failed > 0 {
		fmt.Fprintf(out, "  Failed:      %d images\n", s.Failed)
	}
	fmt.Fprintf(out, "  Wall time:   %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Fprintf(out, "  Workers:     %d  (plane workers %d)\n", m.BuildInfo.Workers, m.BuildInfo.PlaneWorkers)
	}
	fmt.Fprintln(out)

	// Slowest blurs.
	if len(m.Assets) > 0 {
		type assetTime struct {
			key string
			ms  float64
			px  int
		}
		var items []assetTime
		for key, a := range m.Assets {
			items = append(items, assetTime{key, a.BlurMS, a.Output.Width * a.Output.Height})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ms > items[j].ms })
		n := len(items)
		if n > 10 {
			n = 10
		}
		fmt.Fprintf(out, "  Top %d slowest blurs:\n", n)
		for _, it := range items[:n] {
			fmt.Fprintf(out, "    %-40s %8.2f ms  %6.1f Mpx\n", truncKey(it.key, 40), it.ms, float64(it.px)/1e6)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "  Manifest:    %s\n\n", manifest.FileName)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}

// baseContext returns cmd's context, or Background when run outside Execute.
func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
