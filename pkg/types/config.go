package types

// RenderBackend identifies where the page rasterizer runs.
type RenderBackend string

const (
	// BackendNative runs pdftoppm from PATH.
	BackendNative RenderBackend = "native"
	// BackendContainer runs pdftoppm inside a docker or podman image.
	BackendContainer RenderBackend = "container"
)

// RenderConfig holds settings for first-page rasterization.
type RenderConfig struct {
	// Backend selects the rasterizer location: native or container.
	Backend RenderBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Binary is the rasterizer command (default "pdftoppm").
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// Image is the container image that provides Binary when Backend is
	// container (default "authorcheck/poppler:latest", built from the
	// repository Dockerfile).
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// DPI is the rendering resolution (default 200).
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`
}

// ReportConfig holds settings for the spreadsheet report.
type ReportConfig struct {
	// Output is the spreadsheet path (default "metadata.xlsx").
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// MetadataSheet names the sheet listing every readable submission.
	MetadataSheet string `json:"metadata_sheet" yaml:"metadata_sheet" mapstructure:"metadata_sheet"`

	// DuplicateSheet names the sheet listing submissions with a shared author.
	DuplicateSheet string `json:"duplicate_sheet" yaml:"duplicate_sheet" mapstructure:"duplicate_sheet"`

	// NoAuthorSheet names the sheet listing submissions without an author.
	NoAuthorSheet string `json:"no_author_sheet" yaml:"no_author_sheet" mapstructure:"no_author_sheet"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a logrus level name (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json" (default "text").
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// AuditConfig groups everything a scan run needs.
type AuditConfig struct {
	// Root is the directory scanned recursively for PDFs.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// ImageDir receives the rendered first page of every submission without
	// an author (default "noname").
	ImageDir string `json:"image_dir" yaml:"image_dir" mapstructure:"image_dir"`

	// ReuseImageDir allows ImageDir to exist before the run.
	ReuseImageDir bool `json:"reuse_image_dir" yaml:"reuse_image_dir" mapstructure:"reuse_image_dir"`

	Render RenderConfig `json:"render" yaml:"render" mapstructure:"render"`
	Report ReportConfig `json:"report" yaml:"report" mapstructure:"report"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

// Defaults used when a configuration value is left empty.
const (
	DefaultBinary         = "pdftoppm"
	DefaultImage          = "authorcheck/poppler:latest"
	DefaultDPI            = 200
	DefaultOutput         = "metadata.xlsx"
	DefaultImageDir       = "noname"
	DefaultMetadataSheet  = "メタデータ一覧"
	DefaultDuplicateSheet = "重複している作成者"
	DefaultNoAuthorSheet  = "作成者名なし"
)

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c AuditConfig) WithDefaults() AuditConfig {
	if c.ImageDir == "" {
		c.ImageDir = DefaultImageDir
	}
	if c.Render.Backend == "" {
		c.Render.Backend = BackendNative
	}
	if c.Render.Binary == "" {
		c.Render.Binary = DefaultBinary
	}
	if c.Render.Image == "" {
		c.Render.Image = DefaultImage
	}
	if c.Render.DPI <= 0 {
		c.Render.DPI = DefaultDPI
	}
	if c.Report.Output == "" {
		c.Report.Output = DefaultOutput
	}
	if c.Report.MetadataSheet == "" {
		c.Report.MetadataSheet = DefaultMetadataSheet
	}
	if c.Report.DuplicateSheet == "" {
		c.Report.DuplicateSheet = DefaultDuplicateSheet
	}
	if c.Report.NoAuthorSheet == "" {
		c.Report.NoAuthorSheet = DefaultNoAuthorSheet
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	return c
}
