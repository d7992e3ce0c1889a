package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_reward_tables.sql
var createRewardTablesSQL string

//go:embed 0002_seed_badges.sql
var seedBadgesSQL string

var Migrations = migrate.NewMigrations()
