package authz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk shape of a role-permission table.
//
//	roles:
//	  support_agent:
//	    - incident:view
//	    - incident:create
type tableFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadTable reads a role-permission table from a YAML file. The table is
// loaded once at startup; changing it requires a restart.
func LoadTable(path string, opts ...TableOption) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("authz: read table: %w", err)
	}
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("authz: parse table: %w", err)
	}
	if len(file.Roles) == 0 {
		return nil, fmt.Errorf("authz: table %s declares no roles", path)
	}
	return NewTable(file.Roles, opts...), nil
}
