// Package config loads the job runner's configuration from a YAML file
// overlaid with SRCF_-prefixed environment variables, grounded on the
// teacher's pattern of populating typed config structs from the process
// environment (pkg/db.Config, pkg/mailer.Config), but using koanf in place
// of struct tags read at reflect-time, since koanf is already part of this
// module's dependency surface.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/srcf/controlplane/internal/notify"
)

// Config carries every setting the job runner daemon needs at startup.
type Config struct {
	// StoreDSN is the control-plane database: members, societies, domains,
	// jobs, job log.
	StoreDSN string `koanf:"store_dsn"`
	// PGClusterDSN is the administrative connection to the member/society
	// PostgreSQL cluster, a distinct server (or at least a distinct pool)
	// from StoreDSN.
	PGClusterDSN string `koanf:"pg_cluster_dsn"`
	// MySQLConfigFile points at a ".my.cnf"-style option file carrying the
	// administrative MySQL credentials, read by mysqlplumb.ConnectConfigFile.
	MySQLConfigFile string `koanf:"mysql_config_file"`

	// MailmanListHost is the authoritative Mailman server; mailing-list
	// operations are guarded to run only there.
	MailmanListHost string `koanf:"mailman_list_host"`
	// UserHost is the authoritative UNIX account server.
	UserHost string `koanf:"user_host"`
	// YPHost is the only host allowed to rebuild the NIS maps.
	YPHost string `koanf:"yp_host"`

	// AdvisoryLock overrides the pg_try_advisory_lock key the runner holds,
	// for tests that need an isolated lock against a shared database.
	AdvisoryLock int64 `koanf:"advisory_lock"`

	// JobQueue is recorded verbatim into the environment column of any job
	// this process creates, identifying which queue/environment produced it.
	JobQueue string `koanf:"job_queue"`

	SMTP notify.Config `koanf:"smtp"`
}

// Default returns the fallback configuration used when the file and
// environment leave a field unset.
func Default() Config {
	return Config{
		MailmanListHost: "pip",
		UserHost:        "pip",
		YPHost:          "pip",
		AdvisoryLock:    0x366636F6E7472,
		SMTP:            notify.DefaultConfig(),
	}
}

// Load reads path (a YAML file; missing is not an error) and overlays
// SRCF_-prefixed environment variables, e.g. SRCF_STORE_DSN maps to
// store_dsn, SRCF_SMTP_HOST to smtp.host.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(structs.Provider(def, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	envProvider := env.Provider("SRCF_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SRCF_")
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
