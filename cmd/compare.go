package cmd

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/AnyUserName/stackblur/internal/quality"
	"github.com/spf13/cobra"
)

var (
	compareRadii []int
	compareRefs  []string
)

var compareCmd = &cobra.Command{
	Use:   "compare <image>",
	Short: "Measure stack blur against Gaussian and box blurs of the same radius",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().IntSliceVarP(&compareRadii, "radius", "r", []int{2, 4, 8, 16}, "radii to compare")
	compareCmd.Flags().StringSliceVar(&compareRefs, "ref", []string{"gaussian", "box"}, "reference blurs")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	b := img.Bounds()
	fmt.Fprintf(out, "\n  %s (%dx%d, luma)\n\n", args[0], b.Dx(), b.Dy())
	fmt.Fprintf(out, "    %-9s %6s %8s %8s %9s\n", "reference", "radius", "MAE", "max", "PSNR")

	for _, ref := range compareRefs {
		for _, r := range compareRadii {
			logVerbose("comparing %s r=%d", ref, r)
			rep, err := quality.Compare(img, r, quality.Reference(ref))
			if err != nil {
				return err
			}
			psnr := "inf"
			if !math.IsInf(rep.Metrics.PSNR, 1) {
				psnr = fmt.Sprintf("%.2f dB", rep.Metrics.PSNR)
			}
			fmt.Fprintf(out, "    %-9s %6d %8.2f %8d %9s\n",
				rep.Reference, rep.Radius, rep.Metrics.MAE, rep.Metrics.MaxDiff, psnr)
		}
	}
	fmt.Fprintln(out)
	return nil
}
