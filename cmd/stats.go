package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/stackblur/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a blurred output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// manifestPath accepts either a manifest file or the directory holding one.
func manifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, manifest.FileName), nil
	}
	return path, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	path, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(path)
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), m)
	return nil
}

func printStats(out io.Writer, m *manifest.Manifest) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Manifest version: %d\n", m.Version)
	fmt.Fprintf(out, "  Generated:        %s\n", m.GeneratedAt)
	fmt.Fprintf(out, "  Profile:          %s (radius %d, mode %s)\n", m.Profile, m.Radius, m.Mode)
	if m.BuildInfo != nil {
		fmt.Fprintf(out, "  Workers:          %d (plane workers %d)\n", m.BuildInfo.Workers, m.BuildInfo.PlaneWorkers)
	}
	fmt.Fprintln(out)

	s := m.Stats
	fmt.Fprintf(out, "  Total assets:     %d\n", s.TotalAssets)
	if s.Failed > 0 {
		fmt.Fprintf(out, "  Failed:           %d\n", s.Failed)
	}
	fmt.Fprintf(out, "  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(out, "  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Fprintf(out, "  Compression:      %.1f%% of original\n", ratio)
	}

	var px int
	for _, a := range m.Assets {
		px += a.Output.Width * a.Output.Height
	}
	if s.TotalBlurMS > 0 {
		fmt.Fprintf(out, "  Blur throughput:  %.1f Mpx/s\n", float64(px)/1e6/(s.TotalBlurMS/1000))
	}
	fmt.Fprintln(out)

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, a := range m.Assets {
		fs := formatStats[a.Output.Format]
		fs.count++
		fs.bytes += a.Output.Size
		formatStats[a.Output.Format] = fs
	}
	fmt.Fprintln(out, "  Format breakdown:")
	for _, f := range []string{"jpeg", "png", "webp"} {
		if fs, ok := formatStats[f]; ok {
			fmt.Fprintf(out, "    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
		}
	}
	fmt.Fprintln(out)

	// Per-width breakdown.
	widthStats := map[int]int{}
	for _, a := range m.Assets {
		widthStats[a.Output.Width]++
	}
	var widths []int
	for w := range widthStats {
		widths = append(widths, w)
	}
	sort.Ints(widths)
	fmt.Fprintln(out, "  Width breakdown:")
	for _, w := range widths {
		fmt.Fprintf(out, "    %5dpx  %4d outputs\n", w, widthStats[w])
	}
	fmt.Fprintln(out)
}
