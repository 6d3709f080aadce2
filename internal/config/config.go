package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Timezone string   `koanf:"timezone"`
	Database Database `koanf:"db"`
	Sync     Sync     `koanf:"sync"`
}

type Database struct {
	// Driver selects the storage backend: "sqlite" or "postgres".
	Driver string `koanf:"driver"`
	// Path is the SQLite database file (sqlite driver only).
	Path   string `koanf:"path"`
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Sync struct {
	Enabled bool `koanf:"enabled"`
	// SettingsDebounceMs is the quiet period before coalesced settings
	// changes are written to the sync store.
	SettingsDebounceMs int `koanf:"settingsdebouncems"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host:     "http://localhost:3000",
		Timezone: "Local",
		Database: Database{
			Driver: "sqlite",
			Path:   "./logmee.db",
			Host:   "localhost",
			Port:   5432,
			User:   "logmee",
			Pass:   "",
			Name:   "logmee",
			Schema: "logmee",
		},
		Sync: Sync{
			Enabled:            true,
			SettingsDebounceMs: 500,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "LOGMEE_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "LOGMEE_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
