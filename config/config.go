package config

import (
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/weaveworks/xltop/app"
	"github.com/weaveworks/xltop/engine"
)

// Defaults applied to fields left out of the file.
const (
	DefaultClusterInterval = 120 * time.Second
	DefaultServerInterval  = 300 * time.Second
	DefaultHostsHint       = 4096
	DefaultJobsHint        = 256
)

// Cluster groups hosts by domain suffix.
type Cluster struct {
	Name     string        `yaml:"name"`
	Domains  []string      `yaml:"domains"`
	Interval time.Duration `yaml:"interval"`
}

// Lnet maps network ids to host names.
type Lnet struct {
	Name   string   `yaml:"name"`
	Files  []string `yaml:"files"`
	Create bool     `yaml:"create"`
}

// Filesystem is served by a fixed set of reporting servers.
type Filesystem struct {
	Name     string        `yaml:"name"`
	Lnet     string        `yaml:"lnet"`
	Servers  []string      `yaml:"servers"`
	Interval time.Duration `yaml:"interval"`
}

// Config is the contents of the configuration file.
type Config struct {
	Tick      time.Duration  `yaml:"tick"`
	Window    time.Duration  `yaml:"window"`
	TopMax    int            `yaml:"top_max"`
	EvictIdle time.Duration  `yaml:"evict_idle"`
	Hints     map[string]int `yaml:"hints"`

	Clusters    []Cluster       `yaml:"clusters"`
	Lnets       []Lnet          `yaml:"lnets"`
	Filesystems []Filesystem    `yaml:"filesystems"`
	Kafka       app.KafkaConfig `yaml:"kafka"`

	// Relative lnet files are looked up here.
	dir string
}

// Parse reads a configuration and fills in defaults. Unknown keys are an
// error.
func Parse(buf []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(buf, &c); err != nil {
		return nil, errors.Wrap(err, "cannot parse configuration")
	}
	c.setDefaults()
	return &c, nil
}

// Load parses the file at path.
func Load(path string) (*Config, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read configuration")
	}
	c, err := Parse(buf)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Tick == 0 {
		c.Tick = engine.DefaultTick
	}
	if c.Window == 0 {
		c.Window = engine.DefaultWindow
	}
	if c.TopMax == 0 {
		c.TopMax = engine.DefaultTopMax
	}
	for i := range c.Clusters {
		if c.Clusters[i].Interval == 0 {
			c.Clusters[i].Interval = DefaultClusterInterval
		}
	}
	for i := range c.Filesystems {
		if c.Filesystems[i].Interval == 0 {
			c.Filesystems[i].Interval = DefaultServerInterval
		}
	}
}

// Engine returns the engine settings.
func (c *Config) Engine() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	cfg.Tick, cfg.Window, cfg.TopMax, cfg.EvictIdle = c.Tick, c.Window, c.TopMax, c.EvictIdle
	cfg.Hints[engine.TypeHost] = DefaultHostsHint
	cfg.Hints[engine.TypeJob] = DefaultJobsHint
	for name, hint := range c.Hints {
		t, err := engine.ParseType(name)
		if err != nil || t == engine.TypeAll {
			return cfg, errors.Errorf("hints: unknown type %q", name)
		}
		cfg.Hints[t] = hint
	}
	return cfg, cfg.Validate()
}

// Validate catches what can be checked without touching the filesystem.
func (c *Config) Validate() error {
	if _, err := c.Engine(); err != nil {
		return err
	}
	lnets := map[string]bool{}
	for _, l := range c.Lnets {
		if l.Name == "" {
			return errors.New("lnet without a name")
		}
		if lnets[l.Name] {
			return errors.Errorf("duplicate lnet %q", l.Name)
		}
		lnets[l.Name] = true
	}
	for _, cl := range c.Clusters {
		if cl.Name == "" {
			return errors.New("cluster without a name")
		}
		if cl.Interval <= 0 {
			return errors.Errorf("cluster %q: invalid interval %v", cl.Name, cl.Interval)
		}
	}
	for _, fs := range c.Filesystems {
		if fs.Name == "" {
			return errors.New("filesystem without a name")
		}
		if !lnets[fs.Lnet] {
			return errors.Errorf("filesystem %q: unknown lnet %q", fs.Name, fs.Lnet)
		}
		if len(fs.Servers) == 0 {
			return errors.Errorf("filesystem %q: no servers", fs.Name)
		}
		if fs.Interval <= 0 {
			return errors.Errorf("filesystem %q: invalid interval %v", fs.Name, fs.Interval)
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka: brokers given without a topic")
	}
	return nil
}

func (c *Config) path(file string) string {
	if filepath.IsAbs(file) || c.dir == "" {
		return file
	}
	return filepath.Join(c.dir, file)
}

// Build validates the configuration and creates an engine from it.
func (c *Config) Build() (*engine.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cfg, _ := c.Engine()
	e, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	for _, l := range c.Lnets {
		files := make([]string, 0, len(l.Files))
		for _, f := range l.Files {
			files = append(files, c.path(f))
		}
		if _, err := e.AddLnet(l.Name, l.Create, files...); err != nil {
			return nil, err
		}
	}
	for _, cl := range c.Clusters {
		if _, err := e.AddCluster(cl.Name, cl.Interval, cl.Domains); err != nil {
			return nil, err
		}
	}
	for _, fs := range c.Filesystems {
		if _, err := e.AddFilesystem(fs.Name, fs.Lnet, fs.Servers, fs.Interval); err != nil {
			return nil, err
		}
	}
	log.Infof("configured %d clusters, %d lnets, %d filesystems; tick %v, window %v",
		len(c.Clusters), len(c.Lnets), len(c.Filesystems), cfg.Tick, cfg.Window)
	return e, nil
}
