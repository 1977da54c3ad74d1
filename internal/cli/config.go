package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/utils"
)

// ConfigFileName is looked up in the working directory and its parents
const ConfigFileName = ".buildergen.yaml"

// envPrefix prefixes every environment override, e.g. BUILDERGEN_JOBS
const envPrefix = "BUILDERGEN_"

const maxJobs = 256

// Config holds the configuration for the CLI generator
type Config struct {
	// Output is the name of the file generated into every package with records
	Output string `yaml:"output" validate:"required,autogen_file"`

	// Exclude lists doublestar patterns of directories to skip, relative to each scanned root
	Exclude []string `yaml:"exclude" validate:"dive,required,glob"`

	// Jobs bounds how many packages are generated in parallel
	Jobs int `yaml:"jobs" validate:"min=1,max=256"`

	// Format selects how diagnostics are printed
	Format string `yaml:"format" validate:"oneof=text json"`

	// Cache enables the on-disk generation cache
	Cache bool `yaml:"cache"`

	// CacheDir overrides the cache location, defaults to the user cache directory
	CacheDir string `yaml:"cache_dir"`

	// Source is the file the configuration was read from, empty for defaults
	Source string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is found
func DefaultConfig() *Config {
	return &Config{
		Output: utils.DefaultOutputName,
		Jobs:   min(runtime.NumCPU(), maxJobs),
		Format: FormatText,
		Cache:  true,
	}
}

// LoadConfig reads the configuration file at path, or the nearest
// .buildergen.yaml above startDir when path is empty, then applies
// BUILDERGEN_* environment overrides and validates the result.
func LoadConfig(path, startDir string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		found, err := FindConfigFile(startDir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile walks up from startDir and returns the first config file
// found, or an empty path when there is none
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.WrapConfigurationError(startDir, "resolve", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WrapConfigurationError(path, "open", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.WrapConfigurationError(path, "parse", err)
	}

	c.Source = path
	return nil
}

// applyEnv overrides fields from BUILDERGEN_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "OUTPUT"); ok {
		c.Output = v
	}

	if v, ok := lookup(envPrefix + "EXCLUDE"); ok {
		c.Exclude = nil
		for _, pattern := range strings.Split(v, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				c.Exclude = append(c.Exclude, pattern)
			}
		}
	}

	if v, ok := lookup(envPrefix + "JOBS"); ok {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return errors.ConfigurationError(envPrefix+"JOBS", fmt.Sprintf("%q is not a number", v))
		}
		c.Jobs = jobs
	}

	if v, ok := lookup(envPrefix + "FORMAT"); ok {
		c.Format = v
	}

	if v, ok := lookup(envPrefix + "CACHE"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ConfigurationError(envPrefix+"CACHE", fmt.Sprintf("%q is not a boolean", v))
		}
		c.Cache = enabled
	}

	if v, ok := lookup(envPrefix + "CACHE_DIR"); ok {
		c.CacheDir = v
	}

	return nil
}

// Validate checks every field and reports all violations at once
func (c *Config) Validate() error {
	err := configValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.WrapConfigurationError(c.source(), "validate", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return errors.ConfigurationError(c.source(), strings.Join(messages, "; ")).
		WithSuggestion("see `buildergen generate --help` for the accepted values")
}

// ResolveCacheDir returns the directory used by the disk cache
func (c *Config) ResolveCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.WrapConfigurationError("cache_dir", "resolve", err)
	}
	return filepath.Join(base, "buildergen"), nil
}

func (c *Config) source() string {
	if c.Source == "" {
		return "defaults"
	}
	return c.Source
}

func configValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// registration only fails on an empty tag or nil function
	_ = v.RegisterValidation("autogen_file", validateAutogenFile)
	_ = v.RegisterValidation("glob", validateGlob)
	return v
}

// validateAutogenFile accepts plain file names that the scanner skips as generated
func validateAutogenFile(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return strings.HasPrefix(name, "autogen_") &&
		strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		filepath.Base(name) == name
}

func validateGlob(fl validator.FieldLevel) bool {
	return doublestar.ValidatePattern(fl.Field().String())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "autogen_file":
		return fmt.Sprintf("%s %q must be a file name of the form autogen_*.go", fe.Field(), fe.Value())
	case "glob":
		return fmt.Sprintf("%s pattern %q is not a valid glob", fe.Namespace(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and %d, got %v", fe.Field(), maxJobs, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", fe.Field(), fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}
