package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
minio:
  endpoint: 127.0.0.1:9000
  bucketName: photos
ai:
  apiKey: test-key
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.AI.Provider != "gemini" {
		t.Errorf("provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.ConfidenceThreshold != 85 {
		t.Errorf("threshold = %d", cfg.AI.ConfidenceThreshold)
	}
	if cfg.AI.ScoutModel == "" || cfg.AI.SniperModel == "" {
		t.Errorf("model defaults missing: %q %q", cfg.AI.ScoutModel, cfg.AI.SniperModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	cfg, err := Load(writeConfig(t, `
minio:
  endpoint: 127.0.0.1:9000
  bucketName: photos
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "env-key" {
		t.Errorf("apiKey = %q", cfg.AI.APIKey)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := map[string]string{
		"missing storage": `
ai:
  apiKey: k
`,
		"unknown provider": `
minio:
  endpoint: e
  bucketName: b
ai:
  provider: watson
  apiKey: k
`,
		"unknown driver": `
minio:
  endpoint: e
  bucketName: b
database:
  driver: oracle
ai:
  apiKey: k
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted bad config")
			}
		})
	}
}

func TestDSNs(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  host: db.internal
  port: 3306
  user: u
  password: p
  name: analyzer
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.MySQLDSN(); got != "u:p@tcp(db.internal:3306)/analyzer?parseTime=true&charset=utf8mb4&loc=UTC" {
		t.Errorf("mysql dsn = %q", got)
	}
	cfg.Database.Port = 5432
	if got := cfg.PostgresDSN(); got != "host=db.internal port=5432 user=u password=p dbname=analyzer sslmode=require" {
		t.Errorf("postgres dsn = %q", got)
	}
}
