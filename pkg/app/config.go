package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lk2023060901/grandline/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，GRANDLINE_LOG_LEVEL -> log.level
const EnvPrefix = "GRANDLINE"

var (
	configPath string
	logPath    string
)

// LoadConfig 从命令行、环境变量和配置文件加载 target
// 优先级：显式命令行参数 > 环境变量 > 配置文件 > 默认值
func LoadConfig(target any, opts ...config.Option) error {
	return LoadConfigFrom(pflag.CommandLine, os.Args[1:], target, opts...)
}

// LoadConfigFrom 与 LoadConfig 相同，但使用给定的 FlagSet 和参数
func LoadConfigFrom(fs *pflag.FlagSet, args []string, target any, opts ...config.Option) error {
	execDir, err := GetExecDir()
	if err != nil {
		return fmt.Errorf("failed to get executable directory: %w", err)
	}
	defaultConfig := filepath.Join(execDir, "config.yaml")
	defaultLog := filepath.Join(execDir, "logs", "battle.log")

	if fs.Lookup("config") == nil {
		fs.StringVarP(&configPath, "config", "c", defaultConfig, "path to config file")
	}
	if fs.Lookup("log.path") == nil {
		fs.StringVar(&logPath, "log.path", defaultLog, "output path for logs")
	}
	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("failed to parse flags: %w", err)
		}
	}

	v := viper.New()
	path := configPath
	if !fs.Changed("config") {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			path = env
		}
	}

	v.SetDefault("log.output_path", defaultLog)
	if fs.Changed("log.path") {
		v.Set("log.output_path", logPath)
		v.Set("log.enable_file", true)
	}

	mgr := config.NewManager(append(opts, config.WithViper(v), config.WithEnvPrefix(EnvPrefix))...)
	if err := mgr.LoadFile(path); err != nil {
		return err
	}
	configPath = path

	if err := mgr.Unmarshal(target); err != nil {
		return err
	}

	if mgr.IsSet("log.enable_file") && v.GetBool("log.enable_file") {
		logPath = v.GetString("log.output_path")
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return nil
}

// GetExecDir 可执行文件所在目录（解析符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		return filepath.Dir(resolved), nil
	}
	return filepath.Dir(execPath), nil
}

// GetConfigPath 最终生效的配置文件路径
func GetConfigPath() string {
	return configPath
}
