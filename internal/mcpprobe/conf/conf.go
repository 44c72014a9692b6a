package conf

import (
	"encoding/json"
	"os"

	"github.com/sjzar/mcpprobe/pkg/config"

	"github.com/rs/zerolog/log"
)

const (
	AppName      = "mcpprobe"
	EnvPrefix    = "MCPPROBE"
	EnvConfigDir = "MCPPROBE_DIR"
)

// Load 加载探测配置，命令行参数覆盖配置文件
func Load(configPath string, cmdConf map[string]any) (*ProbeConfig, *config.Manager, error) {

	if configPath == "" {
		configPath = os.Getenv(EnvConfigDir)
	}

	cm, err := config.New(AppName, configPath, "", EnvPrefix, true)
	if err != nil {
		log.Error().Err(err).Msg("load probe config failed")
		return nil, nil, err
	}

	conf := &ProbeConfig{}
	config.SetDefaults(cm.Viper, ProbeDefaults)

	// Load cmd Conf
	for key, value := range cmdConf {
		cm.SetConfig(key, value)
	}

	if err := cm.Load(conf); err != nil {
		log.Error().Err(err).Msg("load probe config failed")
		return nil, nil, err
	}
	conf.ConfigDir = cm.Path

	b, _ := json.Marshal(conf)
	log.Debug().Msgf("probe config: %s", string(b))

	return conf, cm, nil
}
