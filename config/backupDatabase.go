package config

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BackupDatabase dumps the database with pg_dump into BACKUP_PATH
// (default ./backups). The host must have pg_dump on PATH.
func BackupDatabase() error {
	cmd := exec.Command("pg_dump",
		"-h", GetEnvOr("POSTGRES_HOST", "localhost"),
		"-p", GetEnvOr("POSTGRES_PORT", "5432"),
		"-U", GetEnv("POSTGRES_USER"),
		GetEnv("POSTGRES_DB"),
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+GetEnv("POSTGRES_PASSWORD"))
	output, err := cmd.Output()
	if err != nil {
		log.Printf("Error backing up database: %v", err)
		return err
	}

	backupDir := GetEnvOr("BACKUP_PATH", "./backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		log.Printf("Error creating backup directory: %v", err)
		return err
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	fileName := filepath.Join(backupDir, fmt.Sprintf("db_backup_%s.sql", timestamp))
	if err := os.WriteFile(fileName, output, 0644); err != nil {
		log.Printf("Error writing database backup to file: %v", err)
		return err
	}
	log.Printf("Database backup successful: %s", fileName)
	return nil
}
