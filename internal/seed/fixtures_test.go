package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixtures(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFixtures(t, `
tenants:
  - id: t-1
    name: Acme
    users:
      - id: u-1
        email: dana@acme.test
        display_name: Dana
    clients:
      - name: Northwind
        note: Retainer
        projects:
          - name: Relaunch
            tasks:
              - Design
              - Build
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(f.Tenants) != 1 {
		t.Fatalf("got %d tenants, want 1", len(f.Tenants))
	}
	tenant := f.Tenants[0]
	if tenant.ID != "t-1" || tenant.Name != "Acme" {
		t.Errorf("tenant = %+v", tenant)
	}
	if len(tenant.Users) != 1 || tenant.Users[0].DisplayName != "Dana" {
		t.Errorf("users = %+v", tenant.Users)
	}
	if len(tenant.Clients) != 1 || len(tenant.Clients[0].Projects) != 1 {
		t.Fatalf("clients = %+v", tenant.Clients)
	}
	if got := tenant.Clients[0].Projects[0].Tasks; len(got) != 2 || got[0] != "Design" {
		t.Errorf("tasks = %v", got)
	}
}

func TestLoadRejectsMissingTenantFields(t *testing.T) {
	path := writeFixtures(t, `
tenants:
  - name: No ID
`)
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted tenant without id")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() accepted missing file")
	}
}
