package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/weftrun/weft"
)

// demoConfig is the YAML-shaped configuration weftdemo boots a Runtime
// from, the deserialization target for the Config shape config.go's
// RunOptions models.
type demoConfig struct {
	Debug         bool   `yaml:"debug" mapstructure:"debug"`
	Lazy          bool   `yaml:"lazy" mapstructure:"lazy"`
	InitMode      string `yaml:"initMode" mapstructure:"initMode"`
	LogLevel      string `yaml:"logLevel" mapstructure:"logLevel"`
	ShutdownHooks bool   `yaml:"shutdownHooks" mapstructure:"shutdownHooks"`
	Greeting      string `yaml:"greeting" mapstructure:"greeting"`
}

// defaultConfigYAML is the config weftdemo boots with when no --config
// file is given, parsed with gopkg.in/yaml.v3 directly rather than
// through viper, since there's no file path or environment overlay to
// resolve for the built-in default.
const defaultConfigYAML = `
debug: false
lazy: false
initMode: sequential
logLevel: info
shutdownHooks: true
greeting: world
`

func defaultDemoConfig() (*demoConfig, error) {
	var cfg demoConfig
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		return nil, fmt.Errorf("parsing built-in default config: %w", err)
	}
	return &cfg, nil
}

// loadDemoConfig reads path through viper, which layers in WEFTDEMO_*
// environment variables over whatever the file declares — the behavior a
// bare yaml.Unmarshal of the file can't give us.
func loadDemoConfig(path string) (*demoConfig, error) {
	if path == "" {
		return defaultDemoConfig()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("WEFTDEMO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := defaultDemoConfig()
	if err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config file %s: %w", path, err)
	}
	return cfg, nil
}

// runOptions translates the loaded config into weft.RunOption values.
func (c *demoConfig) runOptions() []weft.RunOption {
	initMode := weft.InitSequential
	if strings.EqualFold(c.InitMode, "parallel") {
		initMode = weft.InitParallel
	}
	return []weft.RunOption{
		weft.WithDebug(c.Debug),
		weft.WithLazyResources(c.Lazy),
		weft.WithInitMode(initMode),
		weft.WithShutdownHooks(c.ShutdownHooks),
	}
}
