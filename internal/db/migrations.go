package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'demand_status') THEN
			CREATE TYPE demand_status AS ENUM (
				'DRAFT', 'PENDING_WAREHOUSE_REVIEW', 'OPEN_FOR_BIDDING',
				'UNDER_ANALYSIS', 'AWARD_DEFINED', 'COMPLETED', 'CLOSED',
				'REJECTED', 'CANCELLED'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'demand_type') THEN
			CREATE TYPE demand_type AS ENUM ('MATERIALS', 'SERVICES');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'demand_priority') THEN
			CREATE TYPE demand_priority AS ENUM ('LOW', 'MEDIUM', 'URGENT');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'proposal_status') THEN
			CREATE TYPE proposal_status AS ENUM ('ACTIVE', 'DECLINED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'award_mode') THEN
			CREATE TYPE award_mode AS ENUM ('GLOBAL', 'ITEM');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS demand (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		protocol VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		department VARCHAR(128) NOT NULL,
		demand_type demand_type NOT NULL,
		priority demand_priority NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status demand_status NOT NULL DEFAULT 'DRAFT',
		proposal_deadline TIMESTAMPTZ,
		delivery_deadline TIMESTAMPTZ,
		observations TEXT,
		rejection_reason TEXT,
		closing_reason TEXT,
		created_by_user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		decision_date TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_demand_protocol ON demand (protocol);`,
	`CREATE INDEX IF NOT EXISTS idx_demand_status ON demand (status);`,
	`CREATE TABLE IF NOT EXISTS demand_item (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		demand_id UUID NOT NULL REFERENCES demand(id) ON DELETE CASCADE,
		description VARCHAR(255) NOT NULL,
		unit VARCHAR(32) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		group_id VARCHAR(64) NOT NULL DEFAULT '',
		catalog_item_id UUID,
		position INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_demand_item_demand_id ON demand_item (demand_id);`,
	`CREATE INDEX IF NOT EXISTS idx_demand_item_catalog ON demand_item (catalog_item_id) WHERE catalog_item_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS proposal (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		demand_id UUID NOT NULL REFERENCES demand(id) ON DELETE CASCADE,
		protocol VARCHAR(64) NOT NULL,
		supplier_id UUID NOT NULL,
		supplier_name VARCHAR(255) NOT NULL,
		sequence INTEGER NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		delivery_time VARCHAR(128) NOT NULL DEFAULT '',
		status proposal_status NOT NULL DEFAULT 'ACTIVE',
		observations TEXT
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_proposal_demand_sequence ON proposal (demand_id, sequence);`,
	`CREATE INDEX IF NOT EXISTS idx_proposal_demand_id ON proposal (demand_id);`,
	`CREATE TABLE IF NOT EXISTS proposal_item (
		proposal_id UUID NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
		item_id UUID NOT NULL REFERENCES demand_item(id) ON DELETE CASCADE,
		unit_price NUMERIC(18,4) NOT NULL DEFAULT 0,
		brand VARCHAR(128),
		declined BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (proposal_id, item_id)
	);`,
	`CREATE TABLE IF NOT EXISTS award (
		demand_id UUID PRIMARY KEY REFERENCES demand(id) ON DELETE CASCADE,
		mode award_mode,
		justification TEXT NOT NULL,
		supplier_name VARCHAR(255) NOT NULL DEFAULT '',
		total_value NUMERIC(18,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS award_item (
		demand_id UUID NOT NULL REFERENCES award(demand_id) ON DELETE CASCADE,
		item_id UUID NOT NULL,
		supplier_name VARCHAR(255) NOT NULL,
		unit_price NUMERIC(18,4) NOT NULL,
		quantity INTEGER NOT NULL,
		total_value NUMERIC(18,2) NOT NULL,
		PRIMARY KEY (demand_id, item_id)
	);`,
	`CREATE TABLE IF NOT EXISTS demand_attachment (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		demand_id UUID NOT NULL REFERENCES demand(id) ON DELETE CASCADE,
		file_name VARCHAR(255) NOT NULL,
		object_name VARCHAR(255) NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_demand_attachment_demand_id ON demand_attachment (demand_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
