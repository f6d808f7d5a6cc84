package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"git.fiblab.net/sim/scenario/query"
	"git.fiblab.net/sim/scenario/scenario"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_LISTEN = "localhost:52102"

	MODIFICATION_HEADWAY = "headway"
	MODIFICATION_DISABLE = "disable"
)

type ServerConfig struct {
	Listen string `yaml:"listen" validate:"required,hostname_port"`
}

// 与query.Options一一对应
type QueryConfig struct {
	MaxWalkMeters         float64 `yaml:"maxWalkMeters" validate:"gt=0"`
	WalkSpeed             float64 `yaml:"walkSpeed" validate:"gt=0"`
	MaxAccessStops        int     `yaml:"maxAccessStops" validate:"gt=0"`
	MaxEgressStops        int     `yaml:"maxEgressStops" validate:"gt=0"`
	SearchWindowSeconds   int     `yaml:"searchWindowSeconds" validate:"gte=0"`
	AdditionalTransfers   int     `yaml:"additionalTransfers" validate:"gte=0"`
	MCAdditionalTransfers int     `yaml:"mcAdditionalTransfers" validate:"gte=0"`
	RelaxRatio            float64 `yaml:"relaxRatio" validate:"gte=1"`
	RelaxSlack            int     `yaml:"relaxSlack" validate:"gte=0"`
	MaxResults            int     `yaml:"maxResults" validate:"gt=0"`
}

// 启动时预先加入的场景修改
type ModificationConfig struct {
	Kind    string  `yaml:"kind" validate:"oneof=headway disable"`
	Pattern string  `yaml:"pattern" validate:"required"`
	Factor  float64 `yaml:"factor" validate:"required_if=Kind headway,gte=0"`
}

type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Query    QueryConfig          `yaml:"query"`
	Scenario []ModificationConfig `yaml:"scenario" validate:"dive"`
}

func Default() *Config {
	opts := query.DefaultOptions()
	return &Config{
		Server: ServerConfig{Listen: DEFAULT_LISTEN},
		Query: QueryConfig{
			MaxWalkMeters:         opts.MaxWalkMeters,
			WalkSpeed:             opts.WalkSpeed,
			MaxAccessStops:        opts.MaxAccessStops,
			MaxEgressStops:        opts.MaxEgressStops,
			SearchWindowSeconds:   opts.SearchWindowSeconds,
			AdditionalTransfers:   opts.AdditionalTransfers,
			MCAdditionalTransfers: opts.MCAdditionalTransfers,
			RelaxRatio:            opts.RelaxRatio,
			RelaxSlack:            opts.RelaxSlack,
			MaxResults:            opts.MaxResults,
		},
		Scenario: []ModificationConfig{},
	}
}

// 读取YAML配置，未给出的字段保留默认值；文件不存在时使用默认配置
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warnf("config file %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	log.Infof("config loaded from %s", path)
	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func (c *Config) Options() query.Options {
	q := c.Query
	return query.Options{
		MaxWalkMeters:         q.MaxWalkMeters,
		WalkSpeed:             q.WalkSpeed,
		MaxAccessStops:        q.MaxAccessStops,
		MaxEgressStops:        q.MaxEgressStops,
		SearchWindowSeconds:   q.SearchWindowSeconds,
		AdditionalTransfers:   q.AdditionalTransfers,
		MCAdditionalTransfers: q.MCAdditionalTransfers,
		RelaxRatio:            q.RelaxRatio,
		RelaxSlack:            q.RelaxSlack,
		MaxResults:            q.MaxResults,
	}
}

// 把预置修改按顺序加入overlay，任一失败即返回
func (c *Config) ApplyScenario(o *scenario.Overlay) error {
	for i, m := range c.Scenario {
		var (
			msg string
			err error
		)
		switch m.Kind {
		case MODIFICATION_HEADWAY:
			msg, err = o.AddHeadway(m.Pattern, m.Factor)
		case MODIFICATION_DISABLE:
			msg, err = o.AddDisable(m.Pattern)
		default:
			err = fmt.Errorf("unknown modification kind %q", m.Kind)
		}
		if err != nil {
			return fmt.Errorf("scenario[%d]: %w", i, err)
		}
		log.Info(msg)
	}
	return nil
}
