package config

// DefaultFile is written to disk when no configuration file exists yet.
const DefaultFile = `[run]
# Prevent closing the cli window on task done.
# Set to false if you run this application via scripting.
hold_on_job_done = true

[downloads]
# The subreddits to subscribe to.
subreddits = ["wallpaper", "wallpapers"]

# Allow/Disallow nsfw.
nsfw = true

# Valid values: "hot", "new", "top", "controversial", "rising" (case insensitive).
# Missing or invalid values are treated as "hot".
sort = "hot"

# Download location. Relative paths are resolved against the working directory,
# "~" and environment variables are expanded.
path = "downloads"

# Connection timeout in milliseconds. 0 disables it.
timeout = 5000

# Timeout for a whole request (including reading the image) in milliseconds. 0 disables it.
download_timeout = 60000

# Files that already exist are skipped. Set to true to force redownloading.
proceed_download_on_file_exist = false

# Maximum amount of concurrent tasks. 0 uses the amount of CPUs.
workers = 0

[aspect_ratio]
enable = true
height_aspect = 9
width_aspect = 16

# The ratio value is width_aspect divided by height_aspect.
# With 16:9 the ratio is ~1.77, a ratio_range of 0.5 accepts images
# with ratios from ~1.27 to ~2.27 (bounds included).
ratio_range = 0.5

[minimum_size]
enable = true
minimum_height = 1080
minimum_width = 1920

[symbolic_link]
# Create a link to every downloaded file inside a single directory.
enable = false
# When false, links are created in "<path>/_joined".
use_custom_path = false
custom_path = ""

# Common users should have no need to change these values.
[advanced]
# User Agent is a way for reddit to know who is calling their services.
user_agent = "ridit"
`
