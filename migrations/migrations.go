// Package migrations embeds the database schema so test harnesses and
// provisioning tooling apply the same DDL.
package migrations

import _ "embed"

//go:embed schema.sql
var Schema string
