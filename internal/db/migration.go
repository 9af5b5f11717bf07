package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "000_create_users",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id                       CHAR(36) PRIMARY KEY,
				email                    VARCHAR(255) NOT NULL UNIQUE,
				password_hash            VARCHAR(255) NOT NULL,
				first_name               VARCHAR(100) NOT NULL,
				last_name                VARCHAR(100) NOT NULL,
				dob                      DATETIME NULL,
				gender                   VARCHAR(20) NULL,
				role                     ENUM('ADMIN','USER') NOT NULL DEFAULT 'USER',
				calorie_counting_method  VARCHAR(10) NULL,
				email_verified           TINYINT(1) NOT NULL DEFAULT 0,
				email_verification_token VARCHAR(64) NULL,
				current_workout_streak   INT NOT NULL DEFAULT 0,
				longest_workout_streak   INT NOT NULL DEFAULT 0,
				current_food_streak      INT NOT NULL DEFAULT 0,
				longest_food_streak      INT NOT NULL DEFAULT 0,
				last_workout_date        DATETIME NULL,
				last_food_log_date       DATETIME NULL,
				last_active_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
			)`,
	},
	{
		version: "001_create_password_reset_tokens",
		sql: `
			CREATE TABLE IF NOT EXISTS password_reset_tokens (
				id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
				user_id    CHAR(36) NOT NULL,
				token      VARCHAR(64) NOT NULL,
				expires_at DATETIME NOT NULL,
				used       TINYINT(1) NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "002_create_user_cal_profiles",
		sql: `
			CREATE TABLE IF NOT EXISTS user_cal_profiles (
				id                         CHAR(36) PRIMARY KEY,
				user_id                    CHAR(36) NOT NULL UNIQUE,
				estimated_vo2_max          DOUBLE NOT NULL,
				vo2_efficiency_coefficient DOUBLE NOT NULL,
				resting_metabolic_rate     DOUBLE NULL,
				hr_vo2_slope               DOUBLE NOT NULL,
				hr_vo2_intercept           DOUBLE NOT NULL,
				hr_rer_slope               DOUBLE NOT NULL,
				hr_rer_intercept           DOUBLE NOT NULL,
				hr_ee_slope                DOUBLE NOT NULL,
				hr_ee_intercept            DOUBLE NOT NULL,
				o2_rer_slope               DOUBLE NOT NULL,
				o2_rer_intercept           DOUBLE NOT NULL,
				calorie_counting_method    VARCHAR(10) NULL,
				available_methods          VARCHAR(50) NOT NULL DEFAULT '',
				last_processed_at          DATETIME NULL,
				created_at                 DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at                 DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "003_create_workouts",
		sql: `
			CREATE TABLE IF NOT EXISTS workouts (
				id                       CHAR(36) PRIMARY KEY,
				user_id                  CHAR(36) NOT NULL,
				hk_id                    VARCHAR(64) NULL,
				activity_type            VARCHAR(50) NOT NULL,
				start_date               DATETIME NOT NULL,
				end_date                 DATETIME NOT NULL,
				total_distance_meters    DOUBLE NOT NULL DEFAULT 0,
				total_energy_burned_kcal DOUBLE NOT NULL DEFAULT 0,
				duration_seconds         DOUBLE NOT NULL DEFAULT 0,
				average_heart_rate_bpm   DOUBLE NULL,
				highest_heart_rate       DOUBLE NULL,
				lowest_heart_rate        DOUBLE NULL,
				first_heart_rate_time    DATETIME NULL,
				last_heart_rate_time     DATETIME NULL,
				source                   ENUM('HEALTHKIT','MANUAL') NOT NULL DEFAULT 'MANUAL',
				is_deleted               TINYINT(1) NOT NULL DEFAULT 0,
				deleted_at               DATETIME NULL,
				model1_kcal              DOUBLE NULL,
				model2_kcal              DOUBLE NULL,
				model3_kcal              DOUBLE NULL,
				model4_kcal              DOUBLE NULL,
				created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_workouts_user_start (user_id, start_date),
				INDEX idx_workouts_hk (hk_id),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "004_create_heart_rates",
		sql: `
			CREATE TABLE IF NOT EXISTS heart_rates (
				id             CHAR(36) PRIMARY KEY,
				user_id        CHAR(36) NOT NULL,
				workout_id     CHAR(36) NULL,
				hk_id          VARCHAR(64) NULL,
				timestamp      DATETIME NOT NULL,
				heart_rate_bpm DOUBLE NOT NULL,
				created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_heart_rates_user_ts (user_id, timestamp),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE SET NULL
			)`,
	},
	{
		version: "005_create_steps",
		sql: `
			CREATE TABLE IF NOT EXISTS steps (
				id         CHAR(36) PRIMARY KEY,
				user_id    CHAR(36) NOT NULL,
				hk_id      VARCHAR(64) NULL,
				date       DATETIME NOT NULL,
				step_count INT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_steps_user_date (user_id, date),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "006_create_body_measurements",
		sql: `
			CREATE TABLE IF NOT EXISTS body_measurements (
				id                  CHAR(36) PRIMARY KEY,
				user_id             CHAR(36) NOT NULL,
				date                DATETIME NOT NULL,
				weight_kg           DOUBLE NULL,
				height_cm           DOUBLE NULL,
				body_fat_percentage DOUBLE NULL,
				lean_body_mass_kg   DOUBLE NULL,
				waist_cm            DOUBLE NULL,
				created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_body_measurements_user_date (user_id, date),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "007_create_vital_signs",
		sql: `
			CREATE TABLE IF NOT EXISTS vital_signs (
				id                       CHAR(36) PRIMARY KEY,
				user_id                  CHAR(36) NOT NULL,
				date                     DATETIME NOT NULL,
				systolic_mmhg            DOUBLE NULL,
				diastolic_mmhg           DOUBLE NULL,
				respiratory_rate         DOUBLE NULL,
				oxygen_saturation_pct    DOUBLE NULL,
				body_temperature_celsius DOUBLE NULL,
				created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_vital_signs_user_date (user_id, date),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "008_create_mobility_metrics",
		sql: `
			CREATE TABLE IF NOT EXISTS mobility_metrics (
				id                    CHAR(36) PRIMARY KEY,
				user_id               CHAR(36) NOT NULL,
				date                  DATETIME NOT NULL,
				walking_speed_ms      DOUBLE NULL,
				step_length_cm        DOUBLE NULL,
				double_support_pct    DOUBLE NULL,
				walking_asymmetry_pct DOUBLE NULL,
				created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_mobility_user_date (user_id, date),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "009_create_foods",
		sql: `
			CREATE TABLE IF NOT EXISTS foods (
				id           CHAR(36) PRIMARY KEY,
				user_id      CHAR(36) NULL,
				brand_name   VARCHAR(255) NULL,
				food_name    VARCHAR(255) NOT NULL,
				serving      VARCHAR(100) NOT NULL,
				serving_size VARCHAR(100) NULL,
				calories     DOUBLE NOT NULL,
				total_fat    DOUBLE NULL,
				carbohydrates DOUBLE NULL,
				dietary_fiber DOUBLE NULL,
				sugars       DOUBLE NULL,
				protein      DOUBLE NULL,
				sodium       DOUBLE NULL,
				created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				INDEX idx_foods_name (food_name),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "010_create_food_logs",
		sql: `
			CREATE TABLE IF NOT EXISTS food_logs (
				id           CHAR(36) PRIMARY KEY,
				user_id      CHAR(36) NOT NULL,
				food_id      CHAR(36) NOT NULL,
				servings     DOUBLE NOT NULL DEFAULT 1,
				serving_size VARCHAR(100) NULL,
				meal         ENUM('BREAKFAST','LUNCH','DINNER','SNACK') NOT NULL,
				date         DATETIME NOT NULL,
				created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_food_logs_user_date (user_id, date),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (food_id) REFERENCES foods(id) ON DELETE CASCADE
			)`,
	},
	{
		version: "011_create_user_files",
		sql: `
			CREATE TABLE IF NOT EXISTS user_files (
				id          CHAR(36) PRIMARY KEY,
				user_id     CHAR(36) NOT NULL,
				file_name   VARCHAR(255) NOT NULL,
				file_path   VARCHAR(512) NOT NULL,
				file_size   BIGINT NOT NULL,
				mime_type   VARCHAR(100) NOT NULL,
				description VARCHAR(512) NULL,
				uploaded_by CHAR(36) NOT NULL,
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				INDEX idx_user_files_user (user_id),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)`,
	},
}

func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := executeMigration(db, m); err != nil {
			return err
		}

		log.Printf("applied migration: %s", m.version)
	}

	return nil
}

func isMigrationApplied(db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?",
		version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return count > 0, nil
}

func executeMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", m.version, err)
	}

	for _, stmt := range strings.Split(m.sql, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version) VALUES (?)",
		m.version,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", m.version, err)
	}

	return tx.Commit()
}
