package cli

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/archmap-dev/archmap/internal/layout"
)

const (
	configBaseName   = "archmap"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	envPrefix = "ARCHMAP"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	layoutPaddingKey   = "layout.padding"
	layoutFontSizeKey  = "layout.font_size"
	layoutMinWidthKey  = "layout.min_width"
	layoutMinHeightKey = "layout.min_height"

	viewWidthKey  = "view.width"
	viewHeightKey = "view.height"

	defaultLogFilename   = ".archmap.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true

	defaultViewWidth  = 1024.0
	defaultViewHeight = 768.0
)

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	defaults := layout.DefaultConstants()
	viper.SetDefault(layoutPaddingKey, defaults.Padding)
	viper.SetDefault(layoutFontSizeKey, defaults.FontSize)
	viper.SetDefault(layoutMinWidthKey, defaults.MinWidth)
	viper.SetDefault(layoutMinHeightKey, defaults.MinHeight)

	viper.SetDefault(viewWidthKey, defaultViewWidth)
	viper.SetDefault(viewHeightKey, defaultViewHeight)
}

// loadConfig reads archmap.yaml when present; a missing file is fine.
func loadConfig() {
	_ = viper.ReadInConfig()
}

// newLogger builds the rotating-file structured logger.
func newLogger() *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   viper.GetString(logFilenameKey),
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: slog.Level(viper.GetInt(logLevelKey)),
	})
	return slog.New(handler)
}

// layoutConstants reads the layout tuning from config.
func layoutConstants() layout.Constants {
	return layout.Constants{
		Padding:   viper.GetFloat64(layoutPaddingKey),
		FontSize:  viper.GetFloat64(layoutFontSizeKey),
		MinWidth:  viper.GetFloat64(layoutMinWidthKey),
		MinHeight: viper.GetFloat64(layoutMinHeightKey),
	}
}
