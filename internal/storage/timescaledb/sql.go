package timescaledb

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;`

const createTableSQL = `
CREATE TABLE IF NOT EXISTS flux_results (
    id uuid NOT NULL,
    start_time timestamp WITH TIME ZONE NOT NULL,
    created_at timestamp WITH TIME ZONE NOT NULL,
    site text NOT NULL,
    samples integer NOT NULL,
    rotation_method text NOT NULL,
    value double precision NOT NULL,
    unit text NOT NULL,
    quality_flags bigint NOT NULL,
    diagnostics jsonb NOT NULL DEFAULT '{}'::jsonb,
    PRIMARY KEY (id, start_time)
);`

const createHypertableSQL = `SELECT create_hypertable('flux_results', 'start_time', if_not_exists => TRUE, migrate_data => TRUE);`

const createSiteIndexSQL = `CREATE INDEX IF NOT EXISTS flux_results_site_start ON flux_results (site, start_time DESC);`
