package cmd

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/AnyUserName/stackblur/internal/encoder"
	"github.com/AnyUserName/stackblur/internal/hasher"
	"github.com/AnyUserName/stackblur/internal/plane"
	"github.com/spf13/cobra"
)

var (
	planeRadius   int
	planeWorkers  int
	planeCompress bool
)

var planeCmd = &cobra.Command{
	Use:   "plane",
	Short: "Work with raw single-channel plane files (.sbp)",
}

var planeExtractCmd = &cobra.Command{
	Use:   "extract <image> <out.sbp>",
	Short: "Extract the luminance plane of an image",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaneExtract,
}

var planeBlurCmd = &cobra.Command{
	Use:   "blur <in.sbp> <out.sbp>",
	Short: "Blur a plane file in place and write the result",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaneBlur,
}

var planeRenderCmd = &cobra.Command{
	Use:   "render <in.sbp> <out.png>",
	Short: "Render a plane file as a grayscale PNG",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaneRender,
}

func init() {
	planeCmd.PersistentFlags().BoolVarP(&planeCompress, "zstd", "z", true, "zstd-compress written planes")
	planeBlurCmd.Flags().IntVarP(&planeRadius, "radius", "r", 8, "blur radius 2-254")
	planeBlurCmd.Flags().IntVar(&planeWorkers, "plane-workers", 1, "goroutines per blur pass")

	planeCmd.AddCommand(planeExtractCmd, planeBlurCmd, planeRenderCmd)
	rootCmd.AddCommand(planeCmd)
}

func readPlane(path string) (*plane.Plane, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := plane.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func writePlane(path string, p *plane.Plane) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plane.Encode(f, p, planeCompress); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func runPlaneExtract(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	p := plane.Luma(img)
	if err := writePlane(args[1], p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s: %dx%d luma plane\n", args[1], p.Width, p.Height)
	return nil
}

func runPlaneBlur(cmd *cobra.Command, args []string) error {
	p, err := readPlane(args[0])
	if err != nil {
		return err
	}

	start := time.Now()
	if err := p.Blur(planeRadius, planeWorkers); err != nil {
		return err
	}
	elapsed := time.Since(start)
	logVerbose("blurred %dx%d plane, radius %d, in %s", p.Width, p.Height, planeRadius, elapsed)

	if err := writePlane(args[1], p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s: %dx%d r=%d digest=%016x (%s)\n",
		args[1], p.Width, p.Height, planeRadius,
		hasher.PlaneDigest(p.Pix, p.Width, p.Height), elapsed.Round(time.Microsecond))
	return nil
}

func runPlaneRender(cmd *cobra.Command, args []string) error {
	p, err := readPlane(args[0])
	if err != nil {
		return err
	}
	data, err := encoder.PNGEncoder{}.Encode(p.ToGray(), 0)
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", args[1], formatBytes(int64(len(data))))
	return nil
}
