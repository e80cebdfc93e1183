package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the file.
const (
	EnvSubreddits   = "RIDIT_SUBREDDITS"
	EnvDownloadPath = "RIDIT_DOWNLOAD_PATH"
	EnvUserAgent    = "RIDIT_USER_AGENT"
	EnvWorkers      = "RIDIT_WORKERS"
	EnvNSFW         = "RIDIT_NSFW"
)

var (
	ErrNotFound = errors.New("configuration file not found")
	ErrDecode   = errors.New("failed to decode configuration")
	ErrEnv      = errors.New("invalid environment override")
)

// Format is the encoding of a configuration file.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the format from the file extension, TOML is the default.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Load reads the file at path, applies environment overrides, resolves paths
// against the working directory and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't read config(path=%s)", err, path)
	}

	cfg, err := Decode(b, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%w (path=%s)", err, path)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't get working directory", err)
	}
	if err := cfg.Resolve(wd); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Decode decodes b on top of Default(), so keys missing from the file keep
// their default values.
func Decode(b []byte, format Format) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	default:
		if _, err := toml.NewDecoder(bytes.NewReader(b)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}

	cfg.normalize()
	return cfg, nil
}

// LoadEnvFiles loads the given dotenv files, missing files are ignored.
// Variables that are already set are not overwritten.
func LoadEnvFiles(paths ...string) {
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvSubreddits); ok {
		c.Downloads.Subreddits = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv(EnvDownloadPath); ok && v != "" {
		c.Downloads.Path = v
	}
	if v, ok := os.LookupEnv(EnvUserAgent); ok && v != "" {
		c.Advanced.UserAgent = v
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s=%q is not a valid worker count", ErrEnv, EnvWorkers, v)
		}
		c.Downloads.Workers = n
	}
	if v, ok := os.LookupEnv(EnvNSFW); ok && v != "" {
		allowed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrEnv, EnvNSFW, v)
		}
		c.Downloads.NSFW = allowed
	}
	c.normalize()
	return nil
}

// Resolve makes the download and custom link paths absolute, relative paths
// are joined with base.
func (c *Config) Resolve(base string) error {
	p, err := ExpandPath(c.Downloads.Path, base)
	if err != nil {
		return err
	}
	c.Downloads.Path = p

	if c.SymbolicLink.UseCustomPath && c.SymbolicLink.CustomPath != "" {
		p, err := ExpandPath(c.SymbolicLink.CustomPath, base)
		if err != nil {
			return err
		}
		c.SymbolicLink.CustomPath = p
	}
	return nil
}

// ExpandPath expands "~" and environment variables in p and makes it absolute.
func ExpandPath(p, base string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: couldn't expand %q", err, p)
		}
		p = filepath.Join(home, p[1:])
	}
	p = os.ExpandEnv(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p), nil
}

// UserDir is the per-user configuration directory.
func UserDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: failed to detect user directory", err)
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "local", "ridit"), nil
	}
	return filepath.Join(home, ".config", "ridit"), nil
}

// Find returns the path of the configuration file to use.
// An explicit path always wins, then the working directory, then UserDir.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %w (path=%s)", ErrNotFound, err, explicit)
		}
		return explicit, nil
	}

	var candidates []string
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, Filename))
	}
	if dir, err := UserDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, Filename))
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}

	return "", ErrNotFound
}

// WriteDefault writes DefaultFile into the working directory, falling back to
// UserDir if the working directory is not writable. It returns the written path.
func WriteDefault() (string, error) {
	if wd, err := os.Getwd(); err == nil {
		p := filepath.Join(wd, Filename)
		if err := WriteDefaultTo(p); err == nil {
			return p, nil
		}
	}

	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, Filename)
	if err := WriteDefaultTo(p); err != nil {
		return "", err
	}
	return p, nil
}

// WriteDefaultTo writes DefaultFile to path, creating parent directories.
func WriteDefaultTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: couldn't create directory(name=%s)", err, filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(DefaultFile), 0o644); err != nil {
		return fmt.Errorf("%w: couldn't write config(path=%s)", err, path)
	}
	return nil
}

// CreateDirs creates the download root and a directory for every subreddit.
func CreateDirs(c *Config) error {
	root := c.Downloads.Path
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("%w: couldn't create directory(name=%s)", err, root)
	}
	for _, s := range c.Downloads.Subreddits {
		dir := filepath.Join(root, s)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: couldn't create directory(name=%s)", err, dir)
		}
	}
	return nil
}
