// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package columns is the column-layout policy for result tables.
//
// Given a result title or a sample record, it deterministically returns the
// same ordered column list every time. The policy is a pure function over
// static rule tables: it holds no state and performs no I/O.
//
// # Usage
//
//	cols := columns.Layout("Keyword Research Results for site.com", sample)
//	for _, col := range cols {
//	    fmt.Println(col.Label, col.Numeric)
//	}
package columns
