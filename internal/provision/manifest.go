// Package provision registers an application, builds its targeting
// collection and deploys it, driven by a YAML manifest.
package provision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/open-mgmt-platform/cm-content-tool/internal/config"
)

// Manifest describes one application to provision.
type Manifest struct {
	Application ApplicationManifest `yaml:"application" json:"application"`
	Collection  CollectionManifest  `yaml:"collection" json:"collection"`
	Deployment  DeploymentManifest  `yaml:"deployment" json:"deployment"`
	// DistributionPointGroup receives the application content; empty skips
	// distribution.
	DistributionPointGroup string `yaml:"distributionPointGroup" json:"distributionPointGroup"`
}

type ApplicationManifest struct {
	Name            string `yaml:"name" json:"name"`
	Publisher       string `yaml:"publisher" json:"publisher"`
	Version         string `yaml:"version" json:"version"`
	InstallCommand  string `yaml:"installCommand" json:"installCommand"`
	ContentLocation string `yaml:"contentLocation" json:"contentLocation"`
	Technology      string `yaml:"technology" json:"technology"`
}

type CollectionManifest struct {
	Name               string `yaml:"name" json:"name"`
	LimitingCollection string `yaml:"limitingCollection" json:"limitingCollection"`
	Query              string `yaml:"query" json:"query"`
}

type DeploymentManifest struct {
	Action  string `yaml:"action" json:"action"`
	Purpose string `yaml:"purpose" json:"purpose"`
}

const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["application", "collection"],
  "properties": {
    "application": {
      "type": "object",
      "required": ["name", "contentLocation"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "publisher": {"type": "string"},
        "version": {"type": "string"},
        "installCommand": {"type": "string"},
        "contentLocation": {"type": "string", "minLength": 1},
        "technology": {"enum": ["Script", "AppV", ""]}
      }
    },
    "collection": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "limitingCollection": {"type": "string"},
        "query": {"type": "string"}
      }
    },
    "deployment": {
      "type": "object",
      "properties": {
        "action": {"enum": ["Install", "Uninstall", ""]},
        "purpose": {"enum": ["Required", "Available", ""]}
      }
    },
    "distributionPointGroup": {"type": "string"}
  }
}`

// LoadManifest reads, validates and parses a provisioning manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(raw)
}

// ParseManifest validates raw YAML against the manifest schema and decodes
// it, filling defaults.
func ParseManifest(raw []byte) (*Manifest, error) {
	if err := config.ValidateYAML("provision manifest", manifestSchema, raw); err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	m.applyDefaults()
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Application.Technology == "" {
		m.Application.Technology = "Script"
	}
	if m.Collection.LimitingCollection == "" {
		m.Collection.LimitingCollection = "All Systems"
	}
	if m.Deployment.Action == "" {
		m.Deployment.Action = "Install"
	}
	if m.Deployment.Purpose == "" {
		m.Deployment.Purpose = "Required"
	}
}
