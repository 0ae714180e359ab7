package toolchain

import (
	"encoding/json"
	"fmt"
	"os"
)

// vswhereInstance is one element of `vswhere -format json -include packages`.
type vswhereInstance struct {
	InstallationPath    string         `json:"installationPath"`
	InstallationVersion string         `json:"installationVersion"`
	ProductID           string         `json:"productId"`
	State               *uint32        `json:"state"`
	IsComplete          *bool          `json:"isComplete"`
	Catalog             map[string]any `json:"catalog"`
	Packages            []Package      `json:"packages"`
}

// VSWhereArgs are the arguments passed to vswhere.exe.
var VSWhereArgs = []string{"-all", "-prerelease", "-format", "json", "-include", "packages", "-utf8"}

// ParseVSWhere decodes the JSON report of vswhere.exe.
//
// Older vswhere releases do not print the instance state. It is then derived
// from isComplete and the presence of the installation directory.
func ParseVSWhere(data []byte) ([]Instance, error) {
	var raw []vswhereInstance
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse vswhere output: %w", err)
	}
	out := make([]Instance, 0, len(raw))
	for _, r := range raw {
		inst := Instance{
			InstallationPath:    r.InstallationPath,
			InstallationVersion: r.InstallationVersion,
			ProductID:           r.ProductID,
			Packages:            r.Packages,
			Catalog:             make(map[string]string, len(r.Catalog)),
		}
		for k, v := range r.Catalog {
			if s, ok := v.(string); ok {
				inst.Catalog[k] = s
			}
		}
		switch {
		case r.State != nil:
			inst.State = InstanceState(*r.State)
		case r.IsComplete != nil && *r.IsComplete:
			inst.State = StateComplete
		default:
			if info, err := os.Stat(r.InstallationPath); err == nil && info.IsDir() {
				inst.State = StateLocal
			}
		}
		out = append(out, inst)
	}
	return out, nil
}
