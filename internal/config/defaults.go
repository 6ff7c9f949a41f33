package config

const (
	defaultDataDir          = "data/movies"
	defaultLogDir           = "~/.local/share/reelsync/logs"
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBLanguage     = "en-US"
	defaultTMDBRegion       = "us"
	defaultTMDBPages        = 5
	defaultDBHost           = "localhost"
	defaultDBPort           = 5432
	defaultDBSchema         = "reelsync"
	defaultDBTable          = "movies"
	defaultConnectAttempts  = 3
	defaultConnectDelay     = 5
	defaultTrailerWorkers   = 1
	defaultFFmpegBinary     = "ffmpeg"
	defaultTranscodeTimeout = 900
	defaultTranscodeCRF     = 23
	defaultTranscodePreset  = "medium"
	defaultScaleThreshold   = 1440
	defaultLogFormat        = "auto"
	defaultLogLevel         = "info"
)

func defaultLists() []string {
	return []string{"popular", "trending", "top_rated", "now_playing"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
			Region:   defaultTMDBRegion,
			Pages:    defaultTMDBPages,
			Lists:    defaultLists(),
		},
		Database: Database{
			Host:            defaultDBHost,
			Port:            defaultDBPort,
			Schema:          defaultDBSchema,
			Table:           defaultDBTable,
			ConnectAttempts: defaultConnectAttempts,
			ConnectDelay:    defaultConnectDelay,
		},
		Trailers: Trailers{
			Enabled:          true,
			Workers:          defaultTrailerWorkers,
			FFmpegBinary:     defaultFFmpegBinary,
			TranscodeTimeout: defaultTranscodeTimeout,
			CRF:              defaultTranscodeCRF,
			Preset:           defaultTranscodePreset,
			ScaleThreshold:   defaultScaleThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
