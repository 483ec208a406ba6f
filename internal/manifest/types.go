package manifest

// Manifest is the top-level output of a stackblur run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Profile     string           `json:"profile"`
	Radius      int              `json:"radius"`
	Mode        string           `json:"mode"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run-time parameters for diagnostics.
type BuildInfo struct {
	Workers      int `json:"workers"`       // images processed concurrently
	PlaneWorkers int `json:"plane_workers"` // goroutines per blur pass
}

// Asset describes a single source image and its blurred output.
type Asset struct {
	Original OriginalInfo `json:"original"`
	Output   Output       `json:"output"`
	BlurMS   float64      `json:"blur_ms"` // time spent in the blur passes
}

// OriginalInfo holds metadata about the source image.
type OriginalInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
	HasAlpha bool   `json:"has_alpha"`
}

// Output is the encoded blurred image.
type Output struct {
	Format string `json:"format"` // "jpeg", "png" or "webp"
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // 16 hex chars of xxhash64
	Path   string `json:"path"` // relative to base_path
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64   `json:"total_input_bytes"`
	TotalOutputBytes int64   `json:"total_output_bytes"`
	TotalAssets      int     `json:"total_assets"`
	TotalBlurMS      float64 `json:"total_blur_ms"`
	Failed           int     `json:"failed,omitempty"` // sources that could not be processed
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest's name inside the output directory.
const FileName = "stackblur.manifest.json"
