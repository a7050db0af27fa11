package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeBatch  = "batch"
	ModeServer = "server"
	ModeStdio  = "stdio"

	// Field kind constants
	KindImage     = "image"
	KindSignature = "signature"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Default field placement. Negative offsets are measured from the
	// right/top page edge.
	DefaultFieldName   = "firma_empleado"
	DefaultFieldX      = -27
	DefaultFieldY      = 16
	DefaultFieldWidth  = 90
	DefaultFieldHeight = 23

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the PDF field stamper
type Config struct {
	// Server configuration
	Mode string // "batch", "server" or "stdio"
	Host string
	Port int

	// Directory configuration
	InputDirectory   string // source PDFs for batch mode
	OutputDirectory  string // stamped PDFs for batch mode
	StorageDirectory string // artifact store root for server mode

	// Field placement configuration
	FieldName   string
	FieldX      int
	FieldY      int
	FieldWidth  int
	FieldHeight int
	FieldKind   string // "image" or "signature"

	// Whether a missing interactive-form registry is created when the
	// first field is added
	InitAcroForm bool

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:             ModeBatch,
		Host:             DefaultHost,
		Port:             DefaultPort,
		InputDirectory:   currentDir,
		OutputDirectory:  "",
		StorageDirectory: filepath.Join(os.TempDir(), "pdffield"),
		FieldName:        DefaultFieldName,
		FieldX:           DefaultFieldX,
		FieldY:           DefaultFieldY,
		FieldWidth:       DefaultFieldWidth,
		FieldHeight:      DefaultFieldHeight,
		FieldKind:        KindImage,
		InitAcroForm:     true,
		Version:          "1.0.0",
		ServerName:       "pdffield",
		LogLevel:         DefaultLogLevel,
		MaxFileSize:      DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.InputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.InputDirectory); err == nil {
			cfg.InputDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory == "" {
		// Stamped files land next to their sources unless told otherwise
		cfg.OutputDirectory = cfg.InputDirectory
	} else if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
		cfg.OutputDirectory = expandedPath
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PDFFIELD")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("in", cfg.InputDirectory)
	viper.SetDefault("out", cfg.OutputDirectory)
	viper.SetDefault("storage", cfg.StorageDirectory)
	viper.SetDefault("name", cfg.FieldName)
	viper.SetDefault("x", cfg.FieldX)
	viper.SetDefault("y", cfg.FieldY)
	viper.SetDefault("width", cfg.FieldWidth)
	viper.SetDefault("height", cfg.FieldHeight)
	viper.SetDefault("kind", cfg.FieldKind)
	viper.SetDefault("initacroform", cfg.InitAcroForm)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode,
		"Run mode: 'batch' to stamp a directory, 'server' for the HTTP API, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("in", cfg.InputDirectory, "Directory containing source PDF files (batch mode)")
	pflag.String("out", cfg.OutputDirectory, "Directory for stamped PDF files (defaults to the input directory)")
	pflag.String("storage", cfg.StorageDirectory, "Artifact storage directory (server mode)")
	pflag.String("name", cfg.FieldName, "Form field name")
	pflag.Int("x", cfg.FieldX, "Field x offset in points (negative = from the right edge)")
	pflag.Int("y", cfg.FieldY, "Field y offset in points (negative = from the top edge)")
	pflag.Int("width", cfg.FieldWidth, "Field width in points")
	pflag.Int("height", cfg.FieldHeight, "Field height in points")
	pflag.String("kind", cfg.FieldKind, "Field kind: 'image' (pushbutton) or 'signature' (text field)")
	pflag.Bool("initacroform", cfg.InitAcroForm, "Create the document's interactive-form registry when absent")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "in", "out", "storage",
		"name", "x", "y", "width", "height", "kind", "initacroform",
		"loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\npdffield - Stamp an interactive form field onto the first page of PDF files\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --in=/path/to/pdfs                       # stamp every PDF in a directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --in=/path/to/pdfs --kind=signature      # text signature field instead of image button\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081                # HTTP API\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --name=visto_bueno --x=40 --y=40         # custom field name and placement\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_IN           Input directory\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_OUT          Output directory\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_STORAGE      Artifact storage directory\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_NAME         Form field name\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_KIND         Field kind\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  PDFFIELD_MAXFILESIZE  Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.InputDirectory = viper.GetString("in")
	cfg.OutputDirectory = viper.GetString("out")
	cfg.StorageDirectory = viper.GetString("storage")
	cfg.FieldName = viper.GetString("name")
	cfg.FieldX = viper.GetInt("x")
	cfg.FieldY = viper.GetInt("y")
	cfg.FieldWidth = viper.GetInt("width")
	cfg.FieldHeight = viper.GetInt("height")
	cfg.FieldKind = viper.GetString("kind")
	cfg.InitAcroForm = viper.GetBool("initacroform")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeBatch && c.Mode != ModeServer && c.Mode != ModeStdio {
		return errors.New("mode must be one of 'batch', 'server' or 'stdio'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate field kind
	if c.FieldKind != KindImage && c.FieldKind != KindSignature {
		return fmt.Errorf("invalid field kind: %s (must be 'image' or 'signature')", c.FieldKind)
	}

	// Validate field geometry
	if c.FieldName == "" {
		return errors.New("field name cannot be empty")
	}
	if c.FieldWidth <= 0 || c.FieldHeight <= 0 {
		return errors.New("field width and height must be positive")
	}

	// Batch mode reads from the input directory, so it must exist
	if c.Mode == ModeBatch {
		if c.InputDirectory == "" {
			return errors.New("input directory cannot be empty")
		}
		info, err := os.Stat(c.InputDirectory)
		if err != nil {
			return fmt.Errorf("cannot access input directory %s: %w", c.InputDirectory, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input path is not a directory: %s", c.InputDirectory)
		}
	}

	// The storage directory is created on demand by the store
	if c.Mode == ModeServer && c.StorageDirectory == "" {
		return errors.New("storage directory cannot be empty")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, In: %s, Out: %s, Field: %s@(%d,%d,%dx%d,%s)}",
		c.Mode, c.Host, c.Port, c.InputDirectory, c.OutputDirectory,
		c.FieldName, c.FieldX, c.FieldY, c.FieldWidth, c.FieldHeight, c.FieldKind)
}

// IsServerMode returns true if the HTTP API should be started
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsBatchMode returns true if a directory should be stamped and the process should exit
func (c *Config) IsBatchMode() bool {
	return c.Mode == ModeBatch
}

// IsStdioMode returns true if the MCP stdio server should be started
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
