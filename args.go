package main

type AppArguments struct {
	Config   string `arg:"-c,--config" help:"path to the config file (.toml, .yaml or .yml)"`
	Workers  int    `arg:"-w,--workers" help:"maximum number of concurrent subreddits and downloads per subreddit, overrides the config"`
	Verbose  bool   `arg:"-v,--verbose" help:"enable debug logging"`
	Progress bool   `arg:"-p,--progress" help:"print the download status every second"`
	Init     bool   `arg:"--init" help:"write the default config and exit"`
	NoPause  bool   `arg:"--no-pause" help:"don't wait for a key press when the job is done"`
}

func (AppArguments) Description() string {
	return "ridit downloads images from the configured subreddits"
}
