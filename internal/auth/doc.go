// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the keywordschat API token encrypted at rest and
// handles the interactive login flow.
//
// The token is sealed with AES-256-GCM under a key derived (PBKDF2-SHA-256)
// from a random machine-local keyfile. Both the keyfile and the sealed
// token live under ~/.keywordschat with 0600 permissions. Accounts with
// two-factor auth enabled supply a TOTP code during login.
//
// # Usage
//
//	ks, _ := auth.NewKeystore(dir)
//	_ = ks.SaveToken("kwc_live_...")
//	token, _ := ks.LoadToken()
package auth
