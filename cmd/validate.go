package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/stackblur/internal/hasher"
	"github.com/AnyUserName/stackblur/internal/manifest"
	"github.com/AnyUserName/stackblur/internal/stackblur"
	"github.com/spf13/cobra"
)

var validateHashes bool

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a stackblur manifest and check referenced files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateHashes, "hashes", false, "re-hash output files and compare with the manifest")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := manifestPath(args[0])
	if err != nil {
		return err
	}
	m, err := manifest.Read(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errs := validateManifest(m, filepath.Dir(path), validateHashes)
	if len(errs) == 0 {
		fmt.Fprintln(out, "  ✓ Manifest is valid")
		fmt.Fprintf(out, "  ✓ %d assets — all files present\n", m.Stats.TotalAssets)
		return nil
	}

	fmt.Fprintf(out, "  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(out, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string, checkHashes bool) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if err := stackblur.ValidateRadius(m.Radius); err != nil {
		errs = append(errs, err.Error())
	}

	keys := make([]string, 0, len(m.Assets))
	for key := range m.Assets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seenPaths := map[string]string{}
	for _, key := range keys {
		a := m.Assets[key]
		if a.Original.Width <= 0 || a.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, a.Original.Width, a.Original.Height))
		}

		o := a.Output
		if o.Format == "" {
			errs = append(errs, fmt.Sprintf("asset %q: empty output format", key))
		}
		if o.Width <= 0 || o.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid output dimensions %dx%d", key, o.Width, o.Height))
		}
		if o.Width > a.Original.Width {
			errs = append(errs, fmt.Sprintf("asset %q: output wider than original (%d > %d)", key, o.Width, a.Original.Width))
		}
		if o.Hash == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing hash", key))
		}
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing path", key))
			continue
		}
		if other, dup := seenPaths[o.Path]; dup {
			errs = append(errs, fmt.Sprintf("asset %q: path %q already used by %q", key, o.Path, other))
		}
		seenPaths[o.Path] = key

		fullPath := filepath.Join(baseDir, o.Path)
		info, err := os.Stat(fullPath)
		if err != nil {
			errs = append(errs, fmt.Sprintf("asset %q: file not found: %s", key, o.Path))
			continue
		}
		if o.Size > 0 && info.Size() != o.Size {
			errs = append(errs, fmt.Sprintf("asset %q: size mismatch: manifest=%d, disk=%d", key, o.Size, info.Size()))
		}
		if checkHashes {
			if err := checkHash(fullPath, o.Hash); err != nil {
				errs = append(errs, fmt.Sprintf("asset %q: %v", key, err))
			}
		}
	}

	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	return errs
}

func checkHash(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	got, err := hasher.ContentHashReader(f, len(want))
	if err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}
	if got != want {
		return fmt.Errorf("hash mismatch: manifest=%s, disk=%s", want, got)
	}
	return nil
}
