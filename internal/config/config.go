package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string
	Port               string
	DataDir            string
	GinMode            string
	LogLevel           string
	StrictDates        bool
	VaultKDFIterations int
}

const minKDFIterations = 100000

// Load 依次读取默认值、可选的 config.yaml（. 或 ./configs）以及环境变量，
// 并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("listen_addr", "")
	v.SetDefault("data_dir", "data")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("strict_dates", false)
	v.SetDefault("vault_kdf_iterations", minKDFIterations)
}

func fromViper(v *viper.Viper) AppConfig {
	port := strings.TrimSpace(v.GetString("port"))
	if port == "" {
		port = "8000"
	}

	listenAddr := strings.TrimSpace(v.GetString("listen_addr"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	dataDir := strings.TrimSpace(v.GetString("data_dir"))
	if dataDir == "" {
		dataDir = "data"
	}

	ginMode := strings.TrimSpace(v.GetString("gin_mode"))
	if ginMode == "" {
		ginMode = "release"
	}

	logLevel := strings.TrimSpace(v.GetString("log_level"))
	if logLevel == "" {
		logLevel = "info"
	}

	iterations := v.GetInt("vault_kdf_iterations")
	if iterations < minKDFIterations {
		iterations = minKDFIterations
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DataDir:            dataDir,
		GinMode:            ginMode,
		LogLevel:           logLevel,
		StrictDates:        v.GetBool("strict_dates"),
		VaultKDFIterations: iterations,
	}
}
