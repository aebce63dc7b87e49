package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(150) NOT NULL,
		email         VARCHAR(254) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		first_name    VARCHAR(150) NOT NULL DEFAULT '',
		last_name     VARCHAR(150) NOT NULL DEFAULT '',
		role          ENUM('admin','customer') NOT NULL DEFAULT 'customer',
		phone_number  VARCHAR(15) NULL,
		is_active     TINYINT(1) NOT NULL DEFAULT 1,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY ix_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tent_types (
		id                  BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name                VARCHAR(100) NOT NULL,
		description         TEXT NOT NULL,
		capacity            INT UNSIGNED NOT NULL,
		price_per_day_cents BIGINT UNSIGNED NOT NULL,
		is_available        TINYINT(1) NOT NULL DEFAULT 1,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_tent_types_name (name),
		CONSTRAINT ck_tent_types_capacity CHECK (capacity >= 1),
		CONSTRAINT ck_tent_types_price CHECK (price_per_day_cents >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customer_id          BIGINT UNSIGNED NOT NULL,
		tent_type_id         BIGINT UNSIGNED NOT NULL,
		location             VARCHAR(200) NOT NULL,
		event_date           DATE NOT NULL,
		end_date             DATE NOT NULL,
		number_of_guests     INT UNSIGNED NOT NULL,
		special_requirements TEXT NULL,
		status               ENUM('pending','confirmed','cancelled','completed') NOT NULL DEFAULT 'pending',
		total_amount_cents   BIGINT UNSIGNED NOT NULL,
		confirmed_by         BIGINT UNSIGNED NULL,
		confirmed_at         DATETIME NULL,
		created_at           DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at           DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		KEY ix_bookings_customer_created (customer_id, created_at),
		KEY ix_bookings_status (status),
		CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_bookings_tent_type FOREIGN KEY (tent_type_id) REFERENCES tent_types(id) ON DELETE CASCADE,
		CONSTRAINT fk_bookings_confirmed_by FOREIGN KEY (confirmed_by) REFERENCES users(id) ON DELETE SET NULL,
		CONSTRAINT ck_bookings_dates CHECK (end_date >= event_date),
		CONSTRAINT ck_bookings_guests CHECK (number_of_guests >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
