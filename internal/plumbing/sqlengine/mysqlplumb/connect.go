package mysqlplumb

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// ConnectConfigFile opens a MySQL connection using credentials from a
// ".my.cnf"-style option file, the same config convention the original
// tooling relies on rather than embedding credentials in the process
// environment. Only the [client] section's user/password/host keys are
// read.
func ConnectConfigFile(path string) (*sql.DB, error) {
	cfg, err := parseMyCnf(path)
	if err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/", cfg["user"], cfg["password"], firstNonEmpty(cfg["host"], "localhost"))
	return sql.Open("mysql", dsn)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func parseMyCnf(path string) (map[string]string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("mysqlplumb: resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mysqlplumb: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := make(map[string]string)
	inClient := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inClient = line == "[client]"
			continue
		}
		if !inClient {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		cfg[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return cfg, scanner.Err()
}
