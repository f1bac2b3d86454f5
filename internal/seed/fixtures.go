package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures is the root of a seed data file. The hierarchy mirrors the
// catalog: tenants own users and clients, clients own projects, projects
// own tasks.
type Fixtures struct {
	Tenants []TenantFixture `yaml:"tenants"`
}

type TenantFixture struct {
	ID      string          `yaml:"id"`
	Name    string          `yaml:"name"`
	Users   []UserFixture   `yaml:"users"`
	Clients []ClientFixture `yaml:"clients"`
}

type UserFixture struct {
	ID          string `yaml:"id"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
}

type ClientFixture struct {
	Name     string           `yaml:"name"`
	Note     string           `yaml:"note"`
	Projects []ProjectFixture `yaml:"projects"`
}

type ProjectFixture struct {
	Name  string   `yaml:"name"`
	Tasks []string `yaml:"tasks"`
}

// Load reads and parses a fixtures file.
func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures file: %w", err)
	}

	for i, t := range f.Tenants {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("tenant %d: id and name are required", i)
		}
	}

	return &f, nil
}
