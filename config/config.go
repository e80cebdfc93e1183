// Package config has the data structures that describe a download run
// and the code that loads them from disk.
//
// A *Config returned by Load is fully resolved: download and link paths are
// absolute, the sort mode is normalized and the subreddit list is deduplicated.
// It is shared read-only by every concurrent task and must not be mutated
// once the pipeline starts.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

const (
	// Filename is the name of the configuration file looked up on disk.
	Filename = "ridit.toml"
	// JoinedDirName is the directory inside the download root that collects
	// links to every stored file when no custom link path is configured.
	JoinedDirName = "_joined"

	DefaultUserAgent       = "ridit"
	DefaultConnectTimeout  = 5 * time.Second
	DefaultTransferTimeout = time.Minute
)

var (
	ErrNoSubreddits  = errors.New("no subreddits configured")
	ErrInvalidAspect = errors.New("invalid aspect ratio configuration")
	ErrInvalidSize   = errors.New("invalid minimum size configuration")
	ErrInvalidPath   = errors.New("invalid path configuration")
)

// Config is the effective configuration of a run.
type Config struct {
	Run          Run          `toml:"run" yaml:"run"`
	Downloads    Downloads    `toml:"downloads" yaml:"downloads"`
	AspectRatio  AspectRatio  `toml:"aspect_ratio" yaml:"aspect_ratio"`
	MinimumSize  MinimumSize  `toml:"minimum_size" yaml:"minimum_size"`
	Advanced     Advanced     `toml:"advanced" yaml:"advanced"`
	SymbolicLink SymbolicLink `toml:"symbolic_link" yaml:"symbolic_link"`
}

type Run struct {
	// HoldOnJobDone keeps the terminal window open after the batch is done.
	HoldOnJobDone bool `toml:"hold_on_job_done" yaml:"hold_on_job_done"`
}

type Downloads struct {
	Subreddits []string `toml:"subreddits" yaml:"subreddits"`
	Sort       Sort     `toml:"sort" yaml:"sort"`
	Path       string   `toml:"path" yaml:"path"`
	// Timeout is the connect timeout in milliseconds.
	Timeout int64 `toml:"timeout" yaml:"timeout"`
	// DownloadTimeout is the total transfer timeout in milliseconds.
	DownloadTimeout int64 `toml:"download_timeout" yaml:"download_timeout"`
	NSFW            bool  `toml:"nsfw" yaml:"nsfw"`
	// ProceedDownloadOnFileExist forces downloading files that are already on disk.
	ProceedDownloadOnFileExist bool `toml:"proceed_download_on_file_exist" yaml:"proceed_download_on_file_exist"`
	// Workers bounds both the subreddit pool and the per-subreddit download pool.
	Workers int `toml:"workers" yaml:"workers"`
}

type AspectRatio struct {
	Enable       bool    `toml:"enable" yaml:"enable"`
	HeightAspect int     `toml:"height_aspect" yaml:"height_aspect"`
	WidthAspect  int     `toml:"width_aspect" yaml:"width_aspect"`
	RatioRange   float64 `toml:"ratio_range" yaml:"ratio_range"`
}

// Ratio is the target width/height ratio.
func (a AspectRatio) Ratio() float64 {
	if a.HeightAspect == 0 {
		return 0
	}
	return float64(a.WidthAspect) / float64(a.HeightAspect)
}

// Bounds returns the inclusive range of accepted width/height ratios.
func (a AspectRatio) Bounds() (lo, hi float64) {
	r := a.Ratio()
	return r - a.RatioRange, r + a.RatioRange
}

type MinimumSize struct {
	Enable        bool `toml:"enable" yaml:"enable"`
	MinimumHeight int  `toml:"minimum_height" yaml:"minimum_height"`
	MinimumWidth  int  `toml:"minimum_width" yaml:"minimum_width"`
}

type Advanced struct {
	UserAgent string `toml:"user_agent" yaml:"user_agent"`
}

type SymbolicLink struct {
	Enable        bool   `toml:"enable" yaml:"enable"`
	UseCustomPath bool   `toml:"use_custom_path" yaml:"use_custom_path"`
	CustomPath    string `toml:"custom_path" yaml:"custom_path"`
}

// Default returns the configuration matching DefaultFile.
func Default() *Config {
	return &Config{
		Run: Run{HoldOnJobDone: true},
		Downloads: Downloads{
			Subreddits:      []string{"wallpaper", "wallpapers"},
			Sort:            SortHot,
			Path:            "downloads",
			Timeout:         DefaultConnectTimeout.Milliseconds(),
			DownloadTimeout: DefaultTransferTimeout.Milliseconds(),
			NSFW:            true,
		},
		AspectRatio: AspectRatio{
			Enable:       true,
			HeightAspect: 9,
			WidthAspect:  16,
			RatioRange:   0.5,
		},
		MinimumSize: MinimumSize{
			Enable:        true,
			MinimumHeight: 1080,
			MinimumWidth:  1920,
		},
		Advanced: Advanced{UserAgent: DefaultUserAgent},
	}
}

// ConnectTimeout returns the dial timeout, zero means no limit.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Downloads.Timeout) * time.Millisecond
}

// TransferTimeout returns the timeout for a whole request, zero means no limit.
func (c *Config) TransferTimeout() time.Duration {
	return time.Duration(c.Downloads.DownloadTimeout) * time.Millisecond
}

// WorkerCount returns the configured pool size or the number of CPUs.
func (c *Config) WorkerCount() int {
	if c.Downloads.Workers > 0 {
		return c.Downloads.Workers
	}
	return runtime.NumCPU()
}

// Overwrite reports whether existing files are downloaded again.
func (c *Config) Overwrite() bool {
	return c.Downloads.ProceedDownloadOnFileExist
}

// UserAgent returns the configured user agent or the default one.
func (c *Config) UserAgent() string {
	if ua := strings.TrimSpace(c.Advanced.UserAgent); ua != "" {
		return ua
	}
	return DefaultUserAgent
}

// Validate checks the values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if len(c.Downloads.Subreddits) == 0 {
		return ErrNoSubreddits
	}
	if c.AspectRatio.Enable {
		if c.AspectRatio.HeightAspect <= 0 || c.AspectRatio.WidthAspect <= 0 {
			return fmt.Errorf("%w: width_aspect and height_aspect must be positive (width=%d,height=%d)",
				ErrInvalidAspect, c.AspectRatio.WidthAspect, c.AspectRatio.HeightAspect)
		}
		if c.AspectRatio.RatioRange < 0 {
			return fmt.Errorf("%w: ratio_range can not be negative (%v)", ErrInvalidAspect, c.AspectRatio.RatioRange)
		}
	}
	if c.MinimumSize.MinimumHeight < 0 || c.MinimumSize.MinimumWidth < 0 {
		return fmt.Errorf("%w: minimum sizes can not be negative (width=%d,height=%d)",
			ErrInvalidSize, c.MinimumSize.MinimumWidth, c.MinimumSize.MinimumHeight)
	}
	if strings.TrimSpace(c.Downloads.Path) == "" {
		return fmt.Errorf("%w: download path can not be empty", ErrInvalidPath)
	}
	if c.SymbolicLink.Enable && c.SymbolicLink.UseCustomPath && strings.TrimSpace(c.SymbolicLink.CustomPath) == "" {
		return fmt.Errorf("%w: custom_path can not be empty when use_custom_path is set", ErrInvalidPath)
	}
	return nil
}

// normalize trims and deduplicates the subreddit list and fixes the sort mode.
// Subreddit names are compared case-insensitively, since they map to
// directories on possibly case-insensitive filesystems.
func (c *Config) normalize() {
	seen := make(map[string]struct{}, len(c.Downloads.Subreddits))
	subreddits := make([]string, 0, len(c.Downloads.Subreddits))
	for _, s := range c.Downloads.Subreddits {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		subreddits = append(subreddits, s)
	}
	c.Downloads.Subreddits = subreddits
	c.Downloads.Sort = ParseSort(string(c.Downloads.Sort))
}
