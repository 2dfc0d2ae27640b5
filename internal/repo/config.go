package repo

import "time"

type Config struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`

	Database string `yaml:"database"`

	Collections struct {
		Slots      string `yaml:"slots"`
		Interviews string `yaml:"interviews"`
	} `yaml:"collections"`

	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`

	Pool struct {
		MinSize uint64 `yaml:"minSize"`
		MaxSize uint64 `yaml:"maxSize"`
	} `yaml:"pool"`
}

func (c *Config) CollectionNames() (slots, interviews string) {
	slots, interviews = c.Collections.Slots, c.Collections.Interviews
	if slots == "" {
		slots = "availability_slots"
	}
	if interviews == "" {
		interviews = "interviews"
	}
	return slots, interviews
}
