package types

// Config represents the overall application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Library LibraryConfig `yaml:"library" json:"library"`
	Extract ExtractConfig `yaml:"extract" json:"extract"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
}

// StorageConfig defines storage adapter settings
type StorageConfig struct {
	Adapter string           `yaml:"adapter" json:"adapter"` // "local" or "s3"
	Local   LocalStorageOpts `yaml:"local" json:"local"`
	S3      S3StorageOpts    `yaml:"s3" json:"s3"`
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl"`
}

// LibraryConfig selects the bookshelf repository backend
type LibraryConfig struct {
	Backend string   `yaml:"backend" json:"backend"` // "storage" or "bolt"
	Bolt    BoltOpts `yaml:"bolt" json:"bolt"`
}

// BoltOpts configures the bbolt repository backend
type BoltOpts struct {
	Path string `yaml:"path" json:"path"`
}

// ExtractConfig holds extraction engine tuning knobs
type ExtractConfig struct {
	// LineTolerance is the vertical proximity threshold, in layout units,
	// within which two text runs are treated as the same line.
	LineTolerance float64 `yaml:"line_tolerance" json:"line_tolerance"`

	// MaxTitleLength caps derived chapter titles, in runes.
	MaxTitleLength int `yaml:"max_title_length" json:"max_title_length"`
}
