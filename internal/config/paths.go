package config

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const DefaultDataDir = "~/.chronogrid"

// Paths are the files chronogrid reads and writes.
type Paths struct {
	Data   string
	Config string
	Log    string
	State  string
}

// ResolvePaths works out the data directory and config file. Flags win over
// CHRONOGRID_DATA / CHRONOGRID_CONFIG, which win over the defaults. The
// config file is only reported when it exists or was asked for explicitly.
func ResolvePaths(dataFlag, configFlag string) (Paths, error) {
	v := viper.New()
	v.SetDefault("data", DefaultDataDir)
	v.SetEnvPrefix("CHRONOGRID")
	v.AutomaticEnv()
	if dataFlag != "" {
		v.Set("data", dataFlag)
	}
	if configFlag != "" {
		v.Set("config", configFlag)
	}

	data, err := homedir.Expand(v.GetString("data"))
	if err != nil {
		return Paths{}, err
	}
	p := Paths{
		Data:  data,
		Log:   filepath.Join(data, "chronogrid.log"),
		State: filepath.Join(data, "state"),
	}

	if cfg := v.GetString("config"); cfg != "" {
		p.Config, err = homedir.Expand(cfg)
		if err != nil {
			return Paths{}, err
		}
		return p, nil
	}
	if def := filepath.Join(data, "config.yaml"); fileExists(def) {
		p.Config = def
	}
	return p, nil
}

// LoadFor loads the config at p.Config (or the defaults) and applies the
// preset when one is named.
func LoadFor(p Paths, preset string) (*Config, error) {
	cfg := DefaultConfig()
	if p.Config != "" {
		var err error
		if cfg, err = Load(p.Config); err != nil {
			return nil, err
		}
	}
	if preset != "" {
		if err := Apply(cfg, preset); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
