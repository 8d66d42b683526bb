package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	embeddedmigrations "github.com/terraincognita07/dailyglow/migrations"
	"gorm.io/gorm"
)

// ErrMigrationDrift means a recorded migration no longer matches the file
// shipped in the binary.
var ErrMigrationDrift = errors.New("migration changed after it was applied")

var (
	migrationNamePattern = regexp.MustCompile(`^(\d+)_[A-Za-z0-9_]+\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

type migrationFile struct {
	Version  string
	Order    int
	Name     string
	SQL      string
	Checksum string
}

type AppliedMigration struct {
	Version   string    `gorm:"column:version"`
	Name      string    `gorm:"column:name"`
	Checksum  string    `gorm:"column:checksum"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

type migrator struct {
	database *gorm.DB
	source   fs.FS
}

func newMigrator(database *gorm.DB, source fs.FS) *migrator {
	if source == nil {
		source = embeddedmigrations.Files
	}
	return &migrator{database: database, source: source}
}

// Up applies every pending file in version order, one transaction per file.
func (m *migrator) Up(ctx context.Context) ([]string, error) {
	files, applied, err := m.state(ctx)
	if err != nil {
		return nil, err
	}

	ran := make([]string, 0)
	for _, file := range files {
		if _, done := applied[file.Version]; done {
			continue
		}
		if err := m.apply(ctx, file); err != nil {
			return ran, err
		}
		ran = append(ran, file.Name)
	}
	return ran, nil
}

func (m *migrator) Pending(ctx context.Context) ([]string, error) {
	files, applied, err := m.state(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]string, 0)
	for _, file := range files {
		if _, done := applied[file.Version]; !done {
			pending = append(pending, file.Name)
		}
	}
	return pending, nil
}

func (m *migrator) Applied(ctx context.Context) ([]AppliedMigration, error) {
	if err := m.prepareLedger(ctx); err != nil {
		return nil, err
	}
	rows := make([]AppliedMigration, 0)
	if err := m.database.WithContext(ctx).
		Raw(`SELECT version, name, checksum, applied_at FROM schema_migrations ORDER BY version`).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return rows, nil
}

// state loads both sides and verifies recorded checksums. Rows recorded
// before checksums existed get theirs backfilled.
func (m *migrator) state(ctx context.Context) ([]migrationFile, map[string]AppliedMigration, error) {
	files, err := readMigrationFiles(m.source)
	if err != nil {
		return nil, nil, err
	}
	recorded, err := m.Applied(ctx)
	if err != nil {
		return nil, nil, err
	}

	byVersion := make(map[string]migrationFile, len(files))
	for _, file := range files {
		byVersion[file.Version] = file
	}

	applied := make(map[string]AppliedMigration, len(recorded))
	for _, row := range recorded {
		applied[row.Version] = row
		file, known := byVersion[row.Version]
		if !known {
			continue
		}
		if row.Checksum == "" {
			if err := m.database.WithContext(ctx).Exec(
				`UPDATE schema_migrations SET checksum = ? WHERE version = ?`,
				file.Checksum, row.Version,
			).Error; err != nil {
				return nil, nil, fmt.Errorf("backfill checksum for %s: %w", row.Name, err)
			}
			continue
		}
		if row.Checksum != file.Checksum {
			return nil, nil, fmt.Errorf("%w: %s", ErrMigrationDrift, file.Name)
		}
	}
	return files, applied, nil
}

func (m *migrator) prepareLedger(ctx context.Context) error {
	database := m.database.WithContext(ctx)
	if err := database.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT NOT NULL DEFAULT '',
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	hasChecksum, err := columnPresent(database, "schema_migrations", "checksum")
	if err != nil {
		return err
	}
	if !hasChecksum {
		if err := database.Exec(`ALTER TABLE schema_migrations ADD COLUMN checksum TEXT NOT NULL DEFAULT ''`).Error; err != nil {
			return fmt.Errorf("add schema_migrations.checksum: %w", err)
		}
	}
	return nil
}

func (m *migrator) apply(ctx context.Context, file migrationFile) error {
	statements := sqlStatements(file.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s has no statements", file.Name)
	}

	return m.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			redundant, err := columnAlreadyAdded(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", file.Name, err)
			}
			if redundant {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("run %s: %w", file.Name, err)
			}
		}

		if err := tx.Exec(
			`INSERT INTO schema_migrations (version, name, checksum) VALUES (?, ?, ?)`,
			file.Version, file.Name, file.Checksum,
		).Error; err != nil {
			return fmt.Errorf("record %s: %w", file.Name, err)
		}
		return nil
	})
}

func readMigrationFiles(source fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	owners := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		order, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", entry.Name(), err)
		}
		if owner, taken := owners[order]; taken {
			return nil, fmt.Errorf("migrations %s and %s share version %d", owner, entry.Name(), order)
		}
		owners[order] = entry.Name()

		raw, err := fs.ReadFile(source, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(raw)
		files = append(files, migrationFile{
			Version:  match[1],
			Order:    order,
			Name:     entry.Name(),
			SQL:      string(raw),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	slices.SortFunc(files, func(a, b migrationFile) int {
		return a.Order - b.Order
	})
	return files, nil
}

// sqlStatements drops "--" comment lines and splits on semicolons. Migration
// files must not put semicolons inside literals.
func sqlStatements(script string) []string {
	var body strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	statements := make([]string, 0)
	for _, part := range strings.Split(body.String(), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyAdded reports whether statement is an ADD COLUMN for a column
// that already exists. Hand-patched databases hit this.
func columnAlreadyAdded(database *gorm.DB, statement string) (bool, error) {
	match := addColumnPattern.FindStringSubmatch(statement)
	if match == nil {
		return false, nil
	}
	return columnPresent(database, unquoteIdentifier(match[1]), unquoteIdentifier(match[2]))
}

func columnPresent(database *gorm.DB, table string, column string) (bool, error) {
	var names []string
	query := fmt.Sprintf(`SELECT name FROM pragma_table_info('%s')`, strings.ReplaceAll(table, "'", "''"))
	if err := database.Raw(query).Scan(&names).Error; err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	return slices.ContainsFunc(names, func(name string) bool {
		return strings.EqualFold(strings.TrimSpace(name), column)
	}), nil
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}

func AppliedMigrations(ctx context.Context, database *gorm.DB) ([]AppliedMigration, error) {
	return newMigrator(database, nil).Applied(ctx)
}

// PendingMigrations lists embedded files that have not run yet.
func PendingMigrations(ctx context.Context, database *gorm.DB) ([]string, error) {
	return newMigrator(database, nil).Pending(ctx)
}
