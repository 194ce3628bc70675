package migrations

import (
	"github.com/SentriLabs/SentriAuth/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20250901_create_audit_events",
		Name: "Create audit_events archive table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE EXTENSION IF NOT EXISTS pgcrypto;
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS audit_events (
					id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					timestamp   TIMESTAMPTZ NOT NULL,
					type        TEXT NOT NULL,
					category    TEXT NOT NULL,
					action      TEXT NOT NULL,
					outcome     TEXT NOT NULL,
					severity    TEXT NOT NULL,
					user_id     TEXT,
					org_id      TEXT,
					ip          TEXT,
					risk_score  INTEGER NOT NULL DEFAULT 0,
					payload     JSONB
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events (timestamp);
			`).Error; err != nil {
				return err
			}
			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_audit_events_org ON audit_events (org_id);
			`).Error; err != nil {
				return err
			}
			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_audit_events_category ON audit_events (category);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS audit_events;`).Error
		},
	})
}
