package config

const (
	defaultConfigPath      = "~/.config/pagesig/config.toml"
	projectConfigName      = "pagesig.toml"
	defaultImagesDir       = "data/training/images"
	defaultAnnotationsFile = "data/training/annotations.csv"
	defaultSignaturesFile  = "data/models/page_rec_pixels.csv"
	defaultTolerance       = 20
	defaultImageCacheSize  = 64
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	// MaxTolerance is the largest meaningful tolerance; any larger value
	// would match every colour.
	MaxTolerance = 255
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ImagesDir:       defaultImagesDir,
			AnnotationsFile: defaultAnnotationsFile,
			SignaturesFile:  defaultSignaturesFile,
		},
		Classifier: Classifier{
			Tolerance: defaultTolerance,
		},
		Images: Images{
			CacheSize: defaultImageCacheSize,
		},
		Signatures: Signatures{
			Backup: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
