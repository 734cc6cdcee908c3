package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    phone VARCHAR(30) NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_email CHECK (position('@' IN email) > 1)
);

CREATE INDEX IF NOT EXISTS idx_students_email ON students(email);
CREATE INDEX IF NOT EXISTS idx_students_is_active ON students(is_active) WHERE is_active;
`

const migration001Down = `
DROP TABLE IF EXISTS students CASCADE;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: PLATFORMS, LINKS AND SCORES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create platforms, student_platforms and platform_scores
-- Version: 002

CREATE TABLE IF NOT EXISTS platforms (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(30) NOT NULL UNIQUE,
    icon VARCHAR(30) NOT NULL DEFAULT '',
    color VARCHAR(20) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Seed the known platforms. Only codeforces has a working adapter; the
-- others are listed so links can be created ahead of adapter support.
INSERT INTO platforms (name, icon, color) VALUES
    ('codeforces', 'codeforces', '#1F8ACB'),
    ('leetcode',   'leetcode',   '#FFA116'),
    ('codechef',   'codechef',   '#5B4638')
ON CONFLICT (name) DO NOTHING;

-- One link per (student, platform) pair. Syncs update the existing row.
CREATE TABLE IF NOT EXISTS student_platforms (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    platform_id UUID NOT NULL REFERENCES platforms(id) ON DELETE CASCADE,
    handle VARCHAR(100) NOT NULL,
    current_rating INTEGER NOT NULL DEFAULT 0,
    max_rating INTEGER NOT NULL DEFAULT 0,
    problems_solved INTEGER NOT NULL DEFAULT 0,
    contests_participated INTEGER NOT NULL DEFAULT 0,
    last_synced TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(student_id, platform_id),

    CONSTRAINT non_negative_counters CHECK (
        problems_solved >= 0 AND contests_participated >= 0
    )
);

CREATE INDEX IF NOT EXISTS idx_student_platforms_student ON student_platforms(student_id);
CREATE INDEX IF NOT EXISTS idx_student_platforms_platform ON student_platforms(platform_id);

-- Derived composite scores. The composite unique key is what the sync
-- upsert targets, making repeated syncs idempotent.
CREATE TABLE IF NOT EXISTS platform_scores (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    platform_id UUID NOT NULL REFERENCES platforms(id) ON DELETE CASCADE,
    score INTEGER NOT NULL DEFAULT 0,
    problems_solved INTEGER NOT NULL DEFAULT 0,
    avg_rating INTEGER NOT NULL DEFAULT 0,
    contests_participated INTEGER NOT NULL DEFAULT 0,
    last_calculated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(student_id, platform_id)
);

CREATE INDEX IF NOT EXISTS idx_platform_scores_student ON platform_scores(student_id);
CREATE INDEX IF NOT EXISTS idx_platform_scores_score ON platform_scores(score DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS platform_scores CASCADE;
DROP TABLE IF EXISTS student_platforms CASCADE;
DROP TABLE IF EXISTS platforms CASCADE;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: ACTIVITY RECORDS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create problems and contests tables
-- Version: 003

-- Distinct solved problems per student, refreshed on every sync.
CREATE TABLE IF NOT EXISTS problems (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    rating INTEGER NOT NULL DEFAULT 0,
    tags TEXT[] NOT NULL DEFAULT '{}',
    solved_at TIMESTAMP WITH TIME ZONE NOT NULL,

    UNIQUE(student_id, name)
);

CREATE INDEX IF NOT EXISTS idx_problems_student_solved ON problems(student_id, solved_at DESC);
CREATE INDEX IF NOT EXISTS idx_problems_rating ON problems(rating);

CREATE TABLE IF NOT EXISTS contests (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    date TIMESTAMP WITH TIME ZONE NOT NULL,
    rank INTEGER NOT NULL DEFAULT 0,
    rating_before INTEGER NOT NULL DEFAULT 0,
    rating_after INTEGER NOT NULL DEFAULT 0,
    problems_solved INTEGER NOT NULL DEFAULT 0,
    problems_total INTEGER NOT NULL DEFAULT 0,

    UNIQUE(student_id, name, date)
);

CREATE INDEX IF NOT EXISTS idx_contests_student_date ON contests(student_id, date DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS contests CASCADE;
DROP TABLE IF EXISTS problems CASCADE;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_students",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_platforms_links_scores",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_activity_records",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}
