package audit

import (
	"encoding/json"
	"os"
)

// DeployConfig is the typed view of the deployment configuration document.
// Fields the document omits decode to their zero value, so an absent flag is
// treated as disabled.
type DeployConfig struct {
	Security SecuritySection `json:"security"`
}

// SecuritySection holds the security toggles the audit checks.
type SecuritySection struct {
	Authentication   FeatureFlag `json:"authentication"`
	InjectionDefense FeatureFlag `json:"prompt_injection_defense"`
}

// FeatureFlag is an on/off switch in the deployment configuration.
type FeatureFlag struct {
	Enabled bool `json:"enabled"`
}

// LoadDeployConfig reads and decodes the deployment configuration document.
func LoadDeployConfig(path string) (DeployConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DeployConfig{}, err
	}
	var cfg DeployConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DeployConfig{}, err
	}
	return cfg, nil
}
