package postgres

import (
	"testing"

	"timevault/internal/domain/models"
	"timevault/internal/domain/repositories"
)

func testScoped() *tenantScoped[models.TimeEntry] {
	return newTenantScoped(nil, mapping[models.TimeEntry]{
		table:   "dev_time_entries",
		entity:  "time entry",
		columns: "id",
		sortable: map[string]string{
			"start_time": "start_time",
			"duration":   "duration_minutes",
		},
		defaultSort: "start_time",
		softDelete:  true,
	})
}

func TestOrderClauseAllowList(t *testing.T) {
	r := testScoped()

	tests := []struct {
		name string
		opts repositories.ListOptions
		want string
	}{
		{"default", repositories.ListOptions{}, " ORDER BY start_time ASC"},
		{"allowed key", repositories.ListOptions{OrderBy: "duration"}, " ORDER BY duration_minutes ASC"},
		{"descending", repositories.ListOptions{OrderBy: "start_time", OrderDesc: true}, " ORDER BY start_time DESC"},
		{"unknown falls back", repositories.ListOptions{OrderBy: "nonexistent"}, " ORDER BY start_time ASC"},
		{"injection attempt falls back", repositories.ListOptions{OrderBy: "id; DROP TABLE dev_time_entries"}, " ORDER BY start_time ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.orderClause(tt.opts); got != tt.want {
				t.Errorf("orderClause() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActiveFilter(t *testing.T) {
	r := testScoped()

	if got := r.activeFilter(false); got != " AND deleted_at IS NULL" {
		t.Errorf("activeFilter(false) = %q", got)
	}
	if got := r.activeFilter(true); got != "" {
		t.Errorf("activeFilter(true) = %q, want empty", got)
	}

	noSoftDelete := newTenantScoped(nil, mapping[models.Tenant]{table: "dev_tenants", entity: "tenant"})
	if got := noSoftDelete.activeFilter(false); got != "" {
		t.Errorf("activeFilter without soft delete = %q, want empty", got)
	}
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("test_")

	if tables.TimeEntries != "test_time_entries" {
		t.Errorf("TimeEntries = %s, want test_time_entries", tables.TimeEntries)
	}
	if tables.Clients != "test_clients" {
		t.Errorf("Clients = %s, want test_clients", tables.Clients)
	}

	bare := NewTableNames("")
	if bare.Projects != "projects" {
		t.Errorf("Projects = %s, want projects", bare.Projects)
	}
}
