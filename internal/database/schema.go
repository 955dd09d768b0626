package database

import (
	"context"
	"fmt"
)

// Migrate creates every table of the booking schema that does not exist
// yet.  It is safe to run on each start.
//
// seat_bookings carries a unique key on (screening_id, seat_id): at most
// one booking per seat and screening.  The composite foreign key
// (booking_id, screening_id) -> bookings(id, screening_id) keeps the
// denormalized screening_id equal to the booking's screening.
func Migrate(ctx context.Context, db *DB) error {
	stmts := sqliteSchema
	if db.Dialect == MySQL {
		stmts = mysqlSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS cities (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(191) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS cinemas (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		city_id      BIGINT UNSIGNED NOT NULL,
		name         VARCHAR(191) NOT NULL,
		address      VARCHAR(255) NOT NULL DEFAULT '',
		details      TEXT,
		location_lat DOUBLE NOT NULL DEFAULT 0,
		location_lon DOUBLE NOT NULL DEFAULT 0,
		CONSTRAINT fk_cinemas_city FOREIGN KEY (city_id) REFERENCES cities (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS categories (
		id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		parent_id BIGINT UNSIGNED NULL,
		name      VARCHAR(191) NOT NULL,
		KEY idx_categories_parent (parent_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movies (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name             VARCHAR(191) NOT NULL,
		slug             VARCHAR(191) NOT NULL,
		details          TEXT,
		release_date     DATE NOT NULL,
		duration_minutes INT UNSIGNED NOT NULL DEFAULT 0,
		country          VARCHAR(64) NOT NULL DEFAULT '',
		translations     VARCHAR(512) NOT NULL DEFAULT '',
		resolutions      VARCHAR(512) NOT NULL DEFAULT '',
		UNIQUE KEY uq_movies_slug (slug)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movie_categories (
		movie_id    BIGINT UNSIGNED NOT NULL,
		category_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (movie_id, category_id),
		CONSTRAINT fk_mc_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_mc_category FOREIGN KEY (category_id) REFERENCES categories (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS workers (
		id      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name    VARCHAR(191) NOT NULL,
		details VARCHAR(512) NOT NULL DEFAULT '',
		role    VARCHAR(64) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movie_workers (
		movie_id  BIGINT UNSIGNED NOT NULL,
		worker_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (movie_id, worker_id),
		CONSTRAINT fk_mw_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_mw_worker FOREIGN KEY (worker_id) REFERENCES workers (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		cinema_id BIGINT UNSIGNED NOT NULL,
		name      VARCHAR(191) NOT NULL,
		UNIQUE KEY uq_rooms_cinema_name (cinema_id, name),
		CONSTRAINT fk_rooms_cinema FOREIGN KEY (cinema_id) REFERENCES cinemas (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS room_prices (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		room_id          BIGINT UNSIGNED NOT NULL,
		name             VARCHAR(64) NOT NULL,
		adjustment_type  VARCHAR(16) NOT NULL,
		adjustment_value BIGINT NOT NULL DEFAULT 0,
		UNIQUE KEY uq_room_prices_room_name (room_id, name),
		UNIQUE KEY uq_room_prices_room_id (room_id, id),
		CONSTRAINT fk_room_prices_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seats (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		room_id       BIGINT UNSIGNED NOT NULL,
		number        VARCHAR(16) NOT NULL,
		price_tier_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_seats_room_number (room_id, number),
		CONSTRAINT fk_seats_room FOREIGN KEY (room_id) REFERENCES rooms (id),
		CONSTRAINT fk_seats_tier FOREIGN KEY (room_id, price_tier_id) REFERENCES room_prices (room_id, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS screenings (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id    BIGINT UNSIGNED NOT NULL,
		cinema_id   BIGINT UNSIGNED NOT NULL,
		room_id     BIGINT UNSIGNED NOT NULL,
		date_time   DATETIME NOT NULL,
		base_price  BIGINT NOT NULL,
		translation VARCHAR(64) NOT NULL DEFAULT '',
		resolution  VARCHAR(64) NOT NULL DEFAULT '',
		KEY idx_screenings_date_time (date_time),
		CONSTRAINT fk_screenings_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_screenings_cinema FOREIGN KEY (cinema_id) REFERENCES cinemas (id),
		CONSTRAINT fk_screenings_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS screening_rooms (
		screening_id BIGINT UNSIGNED NOT NULL,
		room_id      BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (screening_id, room_id),
		CONSTRAINT fk_sr_screening FOREIGN KEY (screening_id) REFERENCES screenings (id),
		CONSTRAINT fk_sr_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		reference    CHAR(36) NOT NULL,
		user_ref     VARCHAR(191) NOT NULL,
		screening_id BIGINT UNSIGNED NOT NULL,
		total_amount BIGINT NOT NULL,
		created_at   DATETIME(6) NOT NULL,
		UNIQUE KEY uq_bookings_reference (reference),
		UNIQUE KEY uq_bookings_id_screening (id, screening_id),
		KEY idx_bookings_user_ref (user_ref),
		CONSTRAINT fk_bookings_screening FOREIGN KEY (screening_id) REFERENCES screenings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seat_bookings (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		booking_id   BIGINT UNSIGNED NOT NULL,
		seat_id      BIGINT UNSIGNED NOT NULL,
		screening_id BIGINT UNSIGNED NOT NULL,
		price        BIGINT NOT NULL,
		UNIQUE KEY uq_seat_bookings_screening_seat (screening_id, seat_id),
		KEY idx_seat_bookings_booking (booking_id),
		CONSTRAINT fk_sb_booking FOREIGN KEY (booking_id, screening_id) REFERENCES bookings (id, screening_id) ON DELETE CASCADE,
		CONSTRAINT fk_sb_seat FOREIGN KEY (seat_id) REFERENCES seats (id),
		CONSTRAINT fk_sb_screening FOREIGN KEY (screening_id) REFERENCES screenings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_events (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		event_id     CHAR(36) NOT NULL,
		kind         VARCHAR(64) NOT NULL,
		payload      TEXT NOT NULL,
		created_at   DATETIME(6) NOT NULL,
		published_at DATETIME(6) NULL,
		UNIQUE KEY uq_booking_events_event (event_id),
		KEY idx_booking_events_pending (published_at, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS cities (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cinemas (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		city_id      INTEGER NOT NULL REFERENCES cities (id),
		name         TEXT NOT NULL,
		address      TEXT NOT NULL DEFAULT '',
		details      TEXT NOT NULL DEFAULT '',
		location_lat REAL NOT NULL DEFAULT 0,
		location_lon REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER NULL,
		name      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories (parent_id)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		name             TEXT NOT NULL,
		slug             TEXT NOT NULL UNIQUE,
		details          TEXT NOT NULL DEFAULT '',
		release_date     DATE NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		country          TEXT NOT NULL DEFAULT '',
		translations     TEXT NOT NULL DEFAULT '',
		resolutions      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS movie_categories (
		movie_id    INTEGER NOT NULL REFERENCES movies (id),
		category_id INTEGER NOT NULL REFERENCES categories (id),
		PRIMARY KEY (movie_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS workers (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		name    TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		role    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movie_workers (
		movie_id  INTEGER NOT NULL REFERENCES movies (id),
		worker_id INTEGER NOT NULL REFERENCES workers (id),
		PRIMARY KEY (movie_id, worker_id)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		cinema_id INTEGER NOT NULL REFERENCES cinemas (id),
		name      TEXT NOT NULL,
		UNIQUE (cinema_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS room_prices (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id          INTEGER NOT NULL REFERENCES rooms (id),
		name             TEXT NOT NULL,
		adjustment_type  TEXT NOT NULL,
		adjustment_value INTEGER NOT NULL DEFAULT 0,
		UNIQUE (room_id, name),
		UNIQUE (room_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id       INTEGER NOT NULL REFERENCES rooms (id),
		number        TEXT NOT NULL,
		price_tier_id INTEGER NOT NULL,
		UNIQUE (room_id, number),
		FOREIGN KEY (room_id, price_tier_id) REFERENCES room_prices (room_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS screenings (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id    INTEGER NOT NULL REFERENCES movies (id),
		cinema_id   INTEGER NOT NULL REFERENCES cinemas (id),
		room_id     INTEGER NOT NULL REFERENCES rooms (id),
		date_time   DATETIME NOT NULL,
		base_price  INTEGER NOT NULL,
		translation TEXT NOT NULL DEFAULT '',
		resolution  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_screenings_date_time ON screenings (date_time)`,
	`CREATE TABLE IF NOT EXISTS screening_rooms (
		screening_id INTEGER NOT NULL REFERENCES screenings (id),
		room_id      INTEGER NOT NULL REFERENCES rooms (id),
		PRIMARY KEY (screening_id, room_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		reference    TEXT NOT NULL UNIQUE,
		user_ref     TEXT NOT NULL,
		screening_id INTEGER NOT NULL REFERENCES screenings (id),
		total_amount INTEGER NOT NULL,
		created_at   DATETIME NOT NULL,
		UNIQUE (id, screening_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_ref ON bookings (user_ref)`,
	`CREATE TABLE IF NOT EXISTS seat_bookings (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id   INTEGER NOT NULL,
		seat_id      INTEGER NOT NULL REFERENCES seats (id),
		screening_id INTEGER NOT NULL REFERENCES screenings (id),
		price        INTEGER NOT NULL,
		UNIQUE (screening_id, seat_id),
		FOREIGN KEY (booking_id, screening_id) REFERENCES bookings (id, screening_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seat_bookings_booking ON seat_bookings (booking_id)`,
	`CREATE TABLE IF NOT EXISTS booking_events (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id     TEXT NOT NULL UNIQUE,
		kind         TEXT NOT NULL,
		payload      TEXT NOT NULL,
		created_at   DATETIME NOT NULL,
		published_at DATETIME NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_booking_events_pending ON booking_events (published_at, id)`,
}
