package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"timevault/internal/audit"
	"timevault/internal/config"
	"timevault/internal/domain"
	"timevault/internal/domain/models"
	"timevault/internal/domain/services"
	"timevault/internal/repository/postgres"
	"timevault/internal/seed"
	"timevault/internal/service"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed fixtures")
	fixturesPath := flag.String("fixtures", "scripts/fixtures.yaml", "Path to the fixtures file")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	fixtures, err := seed.Load(*fixturesPath)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	tenantRepo := postgres.NewTenantRepository(repoConfig)
	clientRepo := postgres.NewClientRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	taskRepo := postgres.NewTaskRepository(repoConfig)

	auditSink := audit.NewLogSink(logger)
	clientService := service.NewClientService(clientRepo, auditSink, logger)
	projectService := service.NewProjectService(projectRepo, clientRepo, auditSink, logger)
	taskService := service.NewTaskService(taskRepo, projectRepo, auditSink, logger)

	ctx = domain.WithActor(ctx, "seed")

	for _, tf := range fixtures.Tenants {
		now := time.Now().UTC()
		err := tenantRepo.Create(ctx, &models.Tenant{
			ID:        tf.ID,
			Name:      tf.Name,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			// Re-running the seed against existing data is fine
			log.Printf("Tenant %q: %v (continuing)", tf.Name, err)
		}

		for _, uf := range tf.Users {
			if err := upsertUser(ctx, pool, tables, tf.ID, uf); err != nil {
				log.Fatalf("Failed to seed user %q: %v", uf.Email, err)
			}
		}

		for _, cf := range tf.Clients {
			req := &services.CreateClientRequest{Name: cf.Name}
			if cf.Note != "" {
				note := cf.Note
				req.Note = &note
			}
			client, err := clientService.Create(ctx, tf.ID, req)
			if err != nil {
				log.Fatalf("Failed to seed client %q: %v", cf.Name, err)
			}

			for _, pf := range cf.Projects {
				project, err := projectService.Create(ctx, tf.ID, &services.CreateProjectRequest{
					ClientID: client.ID,
					Name:     pf.Name,
				})
				if err != nil {
					log.Fatalf("Failed to seed project %q: %v", pf.Name, err)
				}

				for _, taskName := range pf.Tasks {
					_, err := taskService.Create(ctx, tf.ID, &services.CreateTaskRequest{
						ProjectID: project.ID,
						Name:      taskName,
					})
					if err != nil {
						log.Fatalf("Failed to seed task %q: %v", taskName, err)
					}
				}
			}
		}

		log.Printf("Seeded tenant %q (%d users, %d clients)", tf.Name, len(tf.Users), len(tf.Clients))
	}

	log.Println("Seeding complete")
}

// upsertUser inserts a directory row for display-name joins. Users are
// otherwise managed by the identity provider.
func upsertUser(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tenantID string, uf seed.UserFixture) error {
	query := `
		INSERT INTO ` + tables.Users + ` (id, tenant_id, email, display_name, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET email = $3, display_name = $4
	`
	_, err := pool.Exec(ctx, query, uf.ID, tenantID, uf.Email, uf.DisplayName)
	return err
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// tstzrange + equality columns in one exclusion constraint needs btree_gist
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS btree_gist`); err != nil {
		return err
	}

	createTenants := `
		CREATE TABLE IF NOT EXISTS ` + tables.Tenants + ` (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createTenants); err != nil {
		return err
	}

	createUsers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES ` + tables.Tenants + `(id),
			email TEXT NOT NULL,
			display_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUsers); err != nil {
		return err
	}

	createClients := `
		CREATE TABLE IF NOT EXISTS ` + tables.Clients + ` (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES ` + tables.Tenants + `(id),
			name TEXT NOT NULL,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createClients); err != nil {
		return err
	}

	createProjects := `
		CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES ` + tables.Tenants + `(id),
			client_id TEXT NOT NULL REFERENCES ` + tables.Clients + `(id),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createProjects); err != nil {
		return err
	}

	createTasks := `
		CREATE TABLE IF NOT EXISTS ` + tables.Tasks + ` (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES ` + tables.Tenants + `(id),
			project_id TEXT NOT NULL REFERENCES ` + tables.Projects + `(id),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createTasks); err != nil {
		return err
	}

	// The exclusion constraint is the database-level backstop for the
	// non-overlap invariant. The application still checks first so callers
	// get a useful error, but a bug there cannot corrupt the data.
	createTimeEntries := `
		CREATE TABLE IF NOT EXISTS ` + tables.TimeEntries + ` (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL REFERENCES ` + tables.Tenants + `(id),
			user_id TEXT NOT NULL,
			project_id TEXT NOT NULL REFERENCES ` + tables.Projects + `(id),
			task_id TEXT NOT NULL REFERENCES ` + tables.Tasks + `(id),
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			duration_minutes INTEGER NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			CHECK (end_time > start_time),
			CONSTRAINT ` + tablePrefix + `time_entries_no_overlap
				EXCLUDE USING GIST (
					tenant_id WITH =,
					user_id WITH =,
					tstzrange(start_time, end_time) WITH &&
				) WHERE (deleted_at IS NULL)
		)
	`
	if _, err := pool.Exec(ctx, createTimeEntries); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `clients_tenant ON ` + tables.Clients + `(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `projects_tenant_client ON ` + tables.Projects + `(tenant_id, client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `tasks_tenant_project ON ` + tables.Tasks + `(tenant_id, project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `time_entries_tenant_user_start ON ` + tables.TimeEntries + `(tenant_id, user_id, start_time) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `time_entries_tenant_project ON ` + tables.TimeEntries + `(tenant_id, project_id) WHERE deleted_at IS NULL`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.TimeEntries,
		tables.Tasks,
		tables.Projects,
		tables.Clients,
		tables.Users,
		tables.Tenants,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}

	return nil
}
