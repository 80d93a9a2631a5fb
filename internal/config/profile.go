package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile holds option values read from a -configFile document. Nil fields
// were absent from the file and leave the RunConfig untouched.
type Profile struct {
	TotalCalls       *int  `json:"totalCalls,omitempty" yaml:"totalCalls,omitempty"`
	NumThreads       *int  `json:"numThreads,omitempty" yaml:"numThreads,omitempty"`
	SleepTime        *int  `json:"sleepTime,omitempty" yaml:"sleepTime,omitempty"`
	RequestTimeout   *int  `json:"requestTimeOut,omitempty" yaml:"requestTimeOut,omitempty"`
	ConnectTimeout   *int  `json:"connectTimeOut,omitempty" yaml:"connectTimeOut,omitempty"`
	ReuseConnects    *bool `json:"reuseConnects,omitempty" yaml:"reuseConnects,omitempty"`
	KeepConnectsOpen *bool `json:"keepConnectsOpen,omitempty" yaml:"keepConnectsOpen,omitempty"`
}

// LoadProfile reads and validates a profile file.
//
// The format is determined by extension:
//   - .json -> JSON
//   - anything else -> YAML
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	return ParseProfile(data, path)
}

// ParseProfile decodes profile data and checks it against the profile schema
// before mapping it onto a Profile.
func ParseProfile(data []byte, path string) (*Profile, error) {
	isJSON := strings.ToLower(filepath.Ext(path)) == ".json"

	var doc interface{}
	if isJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	}

	if err := validateProfileDocument(doc); err != nil {
		return nil, err
	}

	var profile Profile
	if isJSON {
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	}

	return &profile, nil
}

// Apply copies every value present in the profile onto cfg.
func (p *Profile) Apply(cfg *RunConfig) {
	if p.TotalCalls != nil {
		cfg.TotalCalls = *p.TotalCalls
	}
	if p.NumThreads != nil {
		cfg.NumThreads = *p.NumThreads
	}
	if p.SleepTime != nil {
		cfg.SleepTime = millis(*p.SleepTime)
	}
	if p.RequestTimeout != nil {
		cfg.RequestTimeout = millis(*p.RequestTimeout)
	}
	if p.ConnectTimeout != nil {
		cfg.ConnectTimeout = millis(*p.ConnectTimeout)
	}
	if p.ReuseConnects != nil {
		cfg.ReuseConnects = *p.ReuseConnects
	}
	if p.KeepConnectsOpen != nil {
		cfg.KeepConnectsOpen = *p.KeepConnectsOpen
	}
}
