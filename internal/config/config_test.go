package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*testing.T)
		wantError bool
		validate  func(*testing.T, *Config)
	}{
		{
			name: "all defaults",
			setup: func(t *testing.T) {
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.Env != EnvDev {
					t.Errorf("expected Env %q, got %q", EnvDev, c.Env)
				}
				if c.HostOrigin != "http://localhost:8080" {
					t.Errorf("expected HostOrigin %q, got %q", "http://localhost:8080", c.HostOrigin)
				}
				if c.Port != 8080 {
					t.Errorf("expected Port 8080, got %d", c.Port)
				}
				if c.Database.Port != 5432 {
					t.Errorf("expected Database.Port 5432, got %d", c.Database.Port)
				}
				if c.Database.Host != "localhost" {
					t.Errorf("expected Database.Host %q, got %q", "localhost", c.Database.Host)
				}
				if c.Fileserver.Volume != "/data/files" {
					t.Errorf("expected Fileserver.Volume %q, got %q", "/data/files", c.Fileserver.Volume)
				}
				if c.Fileserver.URLPrefix != "/files" {
					t.Errorf("expected Fileserver.URLPrefix %q, got %q", "/files", c.Fileserver.URLPrefix)
				}
				if c.ImageStore.Backend != ImageStoreLocal {
					t.Errorf("expected ImageStore.Backend %q, got %q", ImageStoreLocal, c.ImageStore.Backend)
				}
				if c.Pagination.Style != PaginationPage {
					t.Errorf("expected Pagination.Style %q, got %q", PaginationPage, c.Pagination.Style)
				}
				if c.Pagination.PageSize != 10 {
					t.Errorf("expected Pagination.PageSize 10, got %d", c.Pagination.PageSize)
				}
				if c.Pagination.Limit != 100 {
					t.Errorf("expected Pagination.Limit 100, got %d", c.Pagination.Limit)
				}
				if c.Recipes.MinCookingTime != 1 || c.Recipes.MaxCookingTime != 32000 {
					t.Errorf("expected cooking time bounds [1, 32000], got [%d, %d]",
						c.Recipes.MinCookingTime, c.Recipes.MaxCookingTime)
				}
				if c.Recipes.MinAmount != 1 || c.Recipes.MaxAmount != 32000 {
					t.Errorf("expected amount bounds [1, 32000], got [%d, %d]",
						c.Recipes.MinAmount, c.Recipes.MaxAmount)
				}
				// AppSecret.Value should be set by loadAppSecret
				if c.AppSecret.Value == nil {
					t.Error("expected AppSecret.Value to be set, got nil")
				}
			},
		},
		{
			name: "custom environment values",
			setup: func(t *testing.T) {
				t.Setenv("ENV", "PROD")
				t.Setenv("HOST_ORIGIN", "https://example.com")
				t.Setenv("PORT", "9000")
				t.Setenv("APP_SECRET", "this-is-a-very-long-secret-key-with-more-than-32-bytes")
				t.Setenv("APP_SECRET_VERSION", "2")
				t.Setenv("DATABASE_USER", "customuser")
				t.Setenv("DATABASE_PASSWORD", "custompass")
				t.Setenv("DATABASE", "customdb")
				t.Setenv("DATABASE_HOST", "db.example.com")
				t.Setenv("DATABASE_PORT", "5433")
				t.Setenv("FILESERVER_VOLUME", "/custom/files")
				t.Setenv("FILESERVER_URL_PREFIX", "/uploads")
				t.Setenv("PAGINATION_STYLE", "limit-offset")
				t.Setenv("DEFAULT_LIMIT", "50")
				t.Setenv("MAX_COOKING_TIME", "600")
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.Env != EnvProd {
					t.Errorf("expected Env %q, got %q", EnvProd, c.Env)
				}
				if c.HostOrigin != "https://example.com" {
					t.Errorf("expected HostOrigin %q, got %q", "https://example.com", c.HostOrigin)
				}
				if c.Port != 9000 {
					t.Errorf("expected Port 9000, got %d", c.Port)
				}
				if c.AppSecret.Version != "2" {
					t.Errorf("expected AppSecret.Version %q, got %q", "2", c.AppSecret.Version)
				}
				if c.AppSecret.Value == nil {
					t.Error("expected AppSecret.Value to be set, got nil")
				} else if string(*c.AppSecret.Value) != "this-is-a-very-long-secret-key-with-more-than-32-bytes" {
					t.Errorf("expected AppSecret.Value to match provided value")
				}
				if c.Database.Port != 5433 {
					t.Errorf("expected Database.Port 5433, got %d", c.Database.Port)
				}
				if c.Database.Host != "db.example.com" {
					t.Errorf("expected Database.Host %q, got %q", "db.example.com", c.Database.Host)
				}
				if c.Fileserver.Volume != "/custom/files" {
					t.Errorf("expected Fileserver.Volume %q, got %q", "/custom/files", c.Fileserver.Volume)
				}
				if c.Pagination.Style != PaginationLimitOffset {
					t.Errorf("expected Pagination.Style %q, got %q", PaginationLimitOffset, c.Pagination.Style)
				}
				if c.Pagination.Limit != 50 {
					t.Errorf("expected Pagination.Limit 50, got %d", c.Pagination.Limit)
				}
				if c.Recipes.MaxCookingTime != 600 {
					t.Errorf("expected Recipes.MaxCookingTime 600, got %d", c.Recipes.MaxCookingTime)
				}
			},
		},
		{
			name: "s3 image store",
			setup: func(t *testing.T) {
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
				t.Setenv("IMAGE_STORE", "s3")
				t.Setenv("S3_ENDPOINT", "minio.example.com:9000")
				t.Setenv("S3_ACCESS_KEY", "accesskey")
				t.Setenv("S3_SECRET_KEY", "secretkey")
				t.Setenv("S3_BUCKET", "images")
				t.Setenv("S3_USE_SSL", "true")
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.ImageStore.Backend != ImageStoreS3 {
					t.Errorf("expected ImageStore.Backend %q, got %q", ImageStoreS3, c.ImageStore.Backend)
				}
				if c.S3.Endpoint != "minio.example.com:9000" {
					t.Errorf("expected S3.Endpoint %q, got %q", "minio.example.com:9000", c.S3.Endpoint)
				}
				if c.S3.Bucket != "images" {
					t.Errorf("expected S3.Bucket %q, got %q", "images", c.S3.Bucket)
				}
				if !c.S3.UseSSL {
					t.Error("expected S3.UseSSL true, got false")
				}
			},
		},
		{
			name: "invalid database port",
			setup: func(t *testing.T) {
				t.Setenv("DATABASE_PORT", "invalid")
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
			},
			wantError: true,
		},
		{
			name: "invalid pagination style",
			setup: func(t *testing.T) {
				t.Setenv("PAGINATION_STYLE", "cursor")
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
			},
			wantError: true,
		},
		{
			name: "invalid image store backend",
			setup: func(t *testing.T) {
				t.Setenv("IMAGE_STORE", "gcs")
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
			},
			wantError: true,
		},
		{
			name: "cooking time bounds inverted",
			setup: func(t *testing.T) {
				t.Setenv("MIN_COOKING_TIME", "100")
				t.Setenv("MAX_COOKING_TIME", "10")
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
			},
			wantError: true,
		},
		{
			name: "app secret auto-generation",
			setup: func(t *testing.T) {
				t.Setenv("DATABASE_USER", "testuser")
				t.Setenv("DATABASE_PASSWORD", "testpass")
				t.Setenv("DATABASE", "testdb")
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.AppSecret.Value == nil {
					t.Error("expected AppSecret.Value to be auto-generated, got nil")
				} else if len([]byte(*c.AppSecret.Value)) < 32 {
					t.Errorf("expected AppSecret.Value to be at least 32 bytes, got %d", len([]byte(*c.AppSecret.Value)))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Use temp directory for app secret
			tempDir := t.TempDir()
			secretPath := filepath.Join(tempDir, "secret")
			t.Setenv("APP_SECRET_PATH", secretPath)

			tt.setup(t)

			config, err := loadConfigFromEnv()

			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, &config)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tests := []struct {
		name      string
		yaml      func(*testing.T) string
		wantError bool
		validate  func(*testing.T, *Config)
	}{
		{
			name: "complete config",
			yaml: func(t *testing.T) string {
				return `
env: PROD
host_origin: https://example.com
port: 9000
app_secret:
  value: this-is-a-very-long-secret-key-with-more-than-32-bytes
  path: /custom/secret
  version: "2"
database:
  host: db.example.com
  port: 5433
  database: proddb
  user: produser
  password: prodpass
fileserver:
  volume: /data/production/files
  url_prefix: /uploads
pagination:
  style: limit-offset
  limit: 25
recipes:
  max_cooking_time: 1440
`
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.Env != EnvProd {
					t.Errorf("expected Env %q, got %q", EnvProd, c.Env)
				}
				if c.Port != 9000 {
					t.Errorf("expected Port 9000, got %d", c.Port)
				}
				if c.AppSecret.Version != "2" {
					t.Errorf("expected AppSecret.Version %q, got %q", "2", c.AppSecret.Version)
				}
				if c.Database.Port != 5433 {
					t.Errorf("expected Database.Port 5433, got %d", c.Database.Port)
				}
				if c.Pagination.Style != PaginationLimitOffset {
					t.Errorf("expected Pagination.Style %q, got %q", PaginationLimitOffset, c.Pagination.Style)
				}
				if c.Pagination.Limit != 25 {
					t.Errorf("expected Pagination.Limit 25, got %d", c.Pagination.Limit)
				}
				if c.Pagination.PageSize != 10 {
					t.Errorf("expected default Pagination.PageSize 10, got %d", c.Pagination.PageSize)
				}
				if c.Recipes.MaxCookingTime != 1440 {
					t.Errorf("expected Recipes.MaxCookingTime 1440, got %d", c.Recipes.MaxCookingTime)
				}
			},
		},
		{
			name: "minimal config with defaults",
			yaml: func(t *testing.T) string {
				tempDir := t.TempDir()
				return fmt.Sprintf(`
app_secret:
  path: %s
database:
  database: testdb
  user: testuser
  password: testpass
`, filepath.Join(tempDir, "secret"))
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.Env != EnvDev {
					t.Errorf("expected default Env %q, got %q", EnvDev, c.Env)
				}
				if c.HostOrigin != "http://localhost:8080" {
					t.Errorf("expected default HostOrigin %q, got %q", "http://localhost:8080", c.HostOrigin)
				}
				if c.Port != 8080 {
					t.Errorf("expected default Port 8080, got %d", c.Port)
				}
				if c.Database.Host != "localhost" {
					t.Errorf("expected default Database.Host %q, got %q", "localhost", c.Database.Host)
				}
				if c.Fileserver.Volume != "/data/files" {
					t.Errorf("expected default Fileserver.Volume %q, got %q", "/data/files", c.Fileserver.Volume)
				}
				if c.ImageStore.Backend != ImageStoreLocal {
					t.Errorf("expected default ImageStore.Backend %q, got %q", ImageStoreLocal, c.ImageStore.Backend)
				}
				if c.Pagination.Style != PaginationPage {
					t.Errorf("expected default Pagination.Style %q, got %q", PaginationPage, c.Pagination.Style)
				}
				if c.Recipes.MinAmount != 1 || c.Recipes.MaxAmount != 32000 {
					t.Errorf("expected default amount bounds [1, 32000], got [%d, %d]",
						c.Recipes.MinAmount, c.Recipes.MaxAmount)
				}
			},
		},
		{
			name: "invalid YAML",
			yaml: func(t *testing.T) string {
				return `{invalid yaml content`
			},
			wantError: true,
		},
		{
			name: "invalid host origin",
			yaml: func(t *testing.T) string {
				return `
host_origin: not-a-valid-url
database:
  database: testdb
  user: testuser
  password: testpass
`
			},
			wantError: true,
		},
		{
			name: "app secret auto-generation from file",
			yaml: func(t *testing.T) string {
				tempDir := t.TempDir()
				return `
app_secret:
  path: ` + filepath.Join(tempDir, "secret") + `
database:
  database: testdb
  user: testuser
  password: testpass
`
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.AppSecret.Value == nil {
					t.Error("expected AppSecret.Value to be auto-generated, got nil")
				} else if len([]byte(*c.AppSecret.Value)) < 32 {
					t.Errorf("expected AppSecret.Value to be at least 32 bytes, got %d", len([]byte(*c.AppSecret.Value)))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if err := os.WriteFile(configPath, []byte(tt.yaml(t)), 0o644); err != nil {
				t.Fatalf("failed to write test config file: %v", err)
			}

			config, err := loadConfigFromFile(configPath)

			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, &config)
			}
		})
	}
}

func TestLoadConfigFromFile_FileNotFound(t *testing.T) {
	_, err := loadConfigFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file, got nil")
	}
}

func TestLoadAppSecret(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*testing.T) *Config
		wantError bool
		validate  func(*testing.T, *Config)
	}{
		{
			name: "secret already set - no file operations",
			setup: func(t *testing.T) *Config {
				secretValue := AppSecretValue("existing-secret-that-is-more-than-32-bytes-long")
				return &Config{
					AppSecret: AppSecret{
						Value:   &secretValue,
						Path:    "/should/not/be/accessed",
						Version: "1",
					},
				}
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.AppSecret.Value == nil {
					t.Error("expected AppSecret.Value to remain set, got nil")
				} else if string(*c.AppSecret.Value) != "existing-secret-that-is-more-than-32-bytes-long" {
					t.Error("AppSecret.Value should not have changed")
				}
			},
		},
		{
			name: "generate new secret - file does not exist",
			setup: func(t *testing.T) *Config {
				tempDir := t.TempDir()
				return &Config{
					AppSecret: AppSecret{
						Path:    filepath.Join(tempDir, "newsecret"),
						Version: "1",
					},
				}
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.AppSecret.Value == nil {
					t.Fatal("expected AppSecret.Value to be generated, got nil")
				}
				if len([]byte(*c.AppSecret.Value)) < 32 {
					t.Errorf("expected generated secret to be at least 32 bytes, got %d", len([]byte(*c.AppSecret.Value)))
				}

				contents, err := os.ReadFile(c.AppSecret.Path)
				if err != nil {
					t.Fatalf("failed to read secret file: %v", err)
				}
				if string(contents) != string(*c.AppSecret.Value) {
					t.Error("secret file contents don't match config value")
				}
			},
		},
		{
			name: "load existing secret from file",
			setup: func(t *testing.T) *Config {
				tempDir := t.TempDir()
				secretPath := filepath.Join(tempDir, "existingsecret")

				existingSecret := "existing-file-secret-that-is-more-than-32-bytes"
				if err := os.WriteFile(secretPath, []byte(existingSecret), 0o644); err != nil {
					t.Fatalf("failed to create test secret file: %v", err)
				}

				return &Config{
					AppSecret: AppSecret{
						Path:    secretPath,
						Version: "1",
					},
				}
			},
			wantError: false,
			validate: func(t *testing.T, c *Config) {
				if c.AppSecret.Value == nil {
					t.Error("expected AppSecret.Value to be loaded from file, got nil")
				} else if string(*c.AppSecret.Value) != "existing-file-secret-that-is-more-than-32-bytes" {
					t.Errorf("expected AppSecret.Value to match file contents, got %q", string(*c.AppSecret.Value))
				}
			},
		},
		{
			name: "error - path is directory",
			setup: func(t *testing.T) *Config {
				return &Config{
					AppSecret: AppSecret{
						Path:    t.TempDir(),
						Version: "1",
					},
				}
			},
			wantError: true,
		},
		{
			name: "error - cannot create file in nonexistent directory",
			setup: func(t *testing.T) *Config {
				return &Config{
					AppSecret: AppSecret{
						Path:    "/nonexistent/directory/secret",
						Version: "1",
					},
				}
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := tt.setup(t)

			err := loadAppSecret(config)

			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.validate != nil {
				tt.validate(t, config)
			}
		})
	}
}
