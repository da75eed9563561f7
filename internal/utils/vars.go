package utils

const ToolUserAgent = "yt-downloader-cli"

const (
	DefaultConfigFile = "config.json"
	DefaultURLList    = "videos.txt"
	DefaultLogName    = "download_log.txt"
	VideoDirName      = "Videos"
	AudioDirName      = "Audios"
	TitleTemplate     = "%(title)s.%(ext)s"
)

// Accelerated fetcher invocation passed through to yt-dlp.
const (
	ExternalDownloader     = "aria2c"
	ExternalDownloaderArgs = "-x 16 -k 1M"
)
