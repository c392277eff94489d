package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/piwi3910/plannest/internal/model"
)

// BackupData is the top-level structure for import/export of all
// application data.
type BackupData struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"created_at"`
	Config    model.AppConfig     `json:"config"`
	Catalog   model.Catalog       `json:"catalog"`
	Templates model.TemplateStore `json:"templates"`
}

// backupKeep is how many rotating backups are retained.
const backupKeep = 5

// ExportAllData exports all application data to a single JSON file at the
// specified path.
func ExportAllData(exportPath string, config model.AppConfig, catalog model.Catalog, templates model.TemplateStore) error {
	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Catalog:   catalog,
		Templates: templates,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported state.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	return backup, nil
}

// WriteRotatingBackup writes a timestamped backup into dir and prunes all
// but the newest backupKeep files. It returns the written path.
func WriteRotatingBackup(dir string, config model.AppConfig, catalog model.Catalog, templates model.TemplateStore) (string, error) {
	stamp := time.Now().UTC().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("backup-%s.json", stamp))
	if err := ExportAllData(path, config, catalog, templates); err != nil {
		return "", err
	}
	if err := pruneBackups(dir); err != nil {
		return path, err
	}
	return path, nil
}

// pruneBackups removes the oldest backup files beyond the retention count.
// Timestamped names sort chronologically, so lexical order suffices.
func pruneBackups(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "backup-*.json"))
	if err != nil {
		return err
	}
	if len(matches) <= backupKeep {
		return nil
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-backupKeep] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}
