// Package db embeds the coupon catalog schema.
package db

import _ "embed"

// Schema contains the DDL for the coupons table. It is idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string
