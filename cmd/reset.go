package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	confirmReset bool
	resetRedis   bool
	resetDB      bool
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored dataset",
	Long: `Reset clears the snapshot slot kept in Redis and/or the SQLite database
(snapshot slot and audit trail).

By default both are reset. Use --redis-only or --db-only to pick one. Export a
backup first if the data may still be needed.

WARNING: This operation is irreversible.

Examples:
  # Reset everything (asks for confirmation)
  gestor reset

  # Reset with automatic confirmation
  gestor reset --yes

  # Only drop the Redis slot
  gestor reset --redis-only`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVarP(&confirmReset, "yes", "y", false, "Automatically confirm reset operation")
	resetCmd.Flags().BoolVar(&resetRedis, "redis-only", false, "Reset only the Redis snapshot slot")
	resetCmd.Flags().BoolVar(&resetDB, "db-only", false, "Reset only the database")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !resetRedis && !resetDB {
		resetRedis = true
		resetDB = true
	}
	redisURL := viper.GetString("storage.redis_url")
	if resetRedis && redisURL == "" {
		if !resetDB {
			return fmt.Errorf("no Redis URL configured (storage.redis_url)")
		}
		resetRedis = false
	}

	var targets []string
	if resetRedis {
		targets = append(targets, "Redis snapshot slot")
	}
	if resetDB {
		targets = append(targets, "SQLite database")
	}
	fmt.Fprintf(out, "This will permanently delete: %s\n", strings.Join(targets, " and "))

	ok, err := confirm(ctx, confirmReset, "Are you sure you want to continue?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Reset operation cancelled.")
		return nil
	}

	if resetRedis {
		if err := resetRedisSlot(ctx, out, redisURL, viper.GetString("storage.slot_key")); err != nil {
			if !resetDB {
				return fmt.Errorf("failed to reset Redis data: %w", err)
			}
			fmt.Fprintf(out, "Warning: Failed to reset Redis data: %v\n", err)
		} else {
			fmt.Fprintln(out, "✓ Redis slot cleared")
		}
	}

	if resetDB {
		if err := resetDatabase(out); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
		fmt.Fprintln(out, "✓ Database cleared")
	}

	fmt.Fprintln(out, "Reset operation completed successfully!")
	return nil
}

func resetRedisSlot(ctx context.Context, out io.Writer, redisURL, key string) error {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	n, err := client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if n == 0 {
		fmt.Fprintln(out, "No Redis slot found to clear")
	}
	return nil
}

func resetDatabase(out io.Writer) error {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "./data/gestor.db"
	}

	// Remove SQLite database files
	dbFiles := []string{
		dbPath,
		dbPath + "-shm", // Shared memory file
		dbPath + "-wal", // Write-ahead log file
	}

	var removedFiles []string
	for _, file := range dbFiles {
		if _, err := os.Stat(file); err == nil {
			if err := os.Remove(file); err != nil {
				return fmt.Errorf("failed to remove database file %s: %w", file, err)
			}
			removedFiles = append(removedFiles, filepath.Base(file))
		}
	}

	if len(removedFiles) == 0 {
		fmt.Fprintln(out, "No database files found to remove")
		return nil
	}
	fmt.Fprintf(out, "Removed database files: %s\n", strings.Join(removedFiles, ", "))
	return nil
}
