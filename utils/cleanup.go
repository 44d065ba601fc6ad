package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"tree-inventory-backend/config"
)

// Retry configuration
const maxRetries = 3
const retryDelay = 2 * time.Minute // 2 minutes between retries

// CleanupExpiredFiles removes expired files older than the TTL
func CleanupExpiredFiles(filePath string, ttl time.Duration) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("error checking file: %v", err)
	}

	if time.Since(info.ModTime()) > ttl {
		err := os.Remove(filePath)
		if err != nil {
			return fmt.Errorf("error deleting expired file: %v", err)
		}
		log.Printf("file %s deleted successfully", filePath)
	}
	return nil
}

// CleanupExpiredCache drops the cached importer count keys so they are
// rebuilt from the database on next request.
func CleanupExpiredCache(redisClient *redis.Client) error {
	ctx := context.Background()
	iter := redisClient.Scan(ctx, 0, "importer:counts:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("error deleting cache key from Redis: %v", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %v", err)
	}
	return nil
}

// CleanupAllExpired handles the cleanup of generated report files and
// Redis cache entries
func CleanupAllExpired(fileTTL time.Duration, redisClient *redis.Client) error {
	files, err := os.ReadDir(reportDir)
	if err != nil {
		if os.IsNotExist(err) {
			return CleanupExpiredCache(redisClient)
		}
		return fmt.Errorf("error reading files directory: %v", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		filePath := fmt.Sprintf("%s/%s", reportDir, file.Name())
		err := CleanupExpiredFiles(filePath, fileTTL)
		if err != nil {
			log.Println("error cleaning up file:", err)
		}
	}

	return CleanupExpiredCache(redisClient)
}

// archiveTTL is how long archived import source files are kept before
// the nightly sweep removes them.
const archiveTTL = 30 * 24 * time.Hour

// CleanupExpiredArchives removes archived import source files older than
// the TTL through the storage layer. A missing archive directory is fine.
func CleanupExpiredArchives(archive FileStorage, archiveDir string, ttl time.Duration) error {
	files, err := os.ReadDir(archiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading archive directory: %v", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > ttl {
			if err := archive.DeleteFile(file.Name()); err != nil {
				log.Println("error deleting expired archive:", err)
			}
		}
	}
	return nil
}

// RunScheduledCleanup runs cleanup tasks daily at 1 AM with retries and
// logs error messages to console on failure
func RunScheduledCleanup(redisClient *redis.Client, archive FileStorage, archiveDir string) *cron.Cron {
	c := cron.New()

	c.AddFunc("0 1 * * *", func() {
		log.Println("running scheduled cleanup task...")

		if err := CleanupExpiredArchives(archive, archiveDir, archiveTTL); err != nil {
			log.Println("error cleaning up import archives:", err)
		}

		var retries int
		var cleanupSuccess bool

		for retries < maxRetries {
			log.Printf("attempt %d to clean up...", retries+1)
			err := CleanupAllExpired(24*time.Hour, redisClient)
			if err == nil {
				log.Println("cleanup successful!")
				cleanupSuccess = true
				break
			}
			log.Printf("cleanup failed: %v", err)
			retries++
			time.Sleep(retryDelay)
		}

		if !cleanupSuccess {
			log.Printf("cleanup task failed after %d retries. please check the system.", retries)
			SendEmail(
				os.Getenv("ADMIN_EMAIL"),
				"The scheduled cleanup task failed after multiple attempts.",
				"Cleanup Task Failed",
				"",
			)
		}
	})

	// Nightly database backup, an hour after cleanup. Opt-in since the
	// host needs pg_dump installed.
	if config.GetEnv("DB_BACKUP_ENABLED") == "true" {
		c.AddFunc("0 2 * * *", func() {
			log.Println("running scheduled database backup...")
			if err := config.BackupDatabase(); err != nil {
				log.Printf("database backup failed: %v", err)
				SendEmail(
					os.Getenv("ADMIN_EMAIL"),
					"The scheduled database backup failed.",
					"Database Backup Failed",
					"",
				)
			}
		})
	}

	c.Start()
	return c
}
