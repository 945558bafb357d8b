// Package config 应用配置：默认值、配置文件与 GPCARDS_* 环境变量。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置。
type Config struct {
	DatabasePath string `mapstructure:"database_path"`
	ExportDir    string `mapstructure:"export_dir"`

	ServerPort string `mapstructure:"server_port"`
	// 授权校验公钥（base64），为空时服务端不校验授权码
	LicensePub string `mapstructure:"license_pub"`

	DelayMin     time.Duration `mapstructure:"delay_min"`
	DelayMax     time.Duration `mapstructure:"delay_max"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxPages     int           `mapstructure:"max_pages"`
	Workers      int           `mapstructure:"workers"`
	IgnoreRobots bool          `mapstructure:"ignore_robots"`

	RequiredKeywords []string `mapstructure:"required_keywords"`
	ExcludeKeywords  []string `mapstructure:"exclude_keywords"`

	LogLevel string `mapstructure:"log_level"`
}

// Load 读取配置。configFile 为空时在当前目录找 gpcards.yaml。
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database_path", "data/gp.db")
	v.SetDefault("export_dir", "exports")
	v.SetDefault("server_port", "8090")
	v.SetDefault("delay_min", "1s")
	v.SetDefault("delay_max", "3s")
	v.SetDefault("fetch_timeout", "30s")
	v.SetDefault("max_pages", 5)
	v.SetDefault("workers", 4)
	v.SetDefault("ignore_robots", false)
	v.SetDefault("required_keywords", []string{"中标", "成交", "结果"})
	v.SetDefault("exclude_keywords", []string{"更正", "废标", "终止"})
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("GPCARDS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("gpcards")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.DelayMin <= 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("delay range %v..%v is invalid", c.DelayMin, c.DelayMax)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
