// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the keywordschat API token encrypted at rest.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pquerna/otp/totp"
	"golang.org/x/term"
)

// =============================================================================
// TOTP SECOND FACTOR
// =============================================================================

// totpCodePattern matches a six-digit TOTP code.
var totpCodePattern = regexp.MustCompile(`^\d{6}$`)

// ErrInvalidTOTPCode is returned for malformed or non-matching codes.
var ErrInvalidTOTPCode = errors.New("invalid two-factor code")

// ValidateTOTP checks a user-supplied six-digit code against the account's
// TOTP secret (provided by the backend during 2FA enrollment).
func ValidateTOTP(code, secret string) error {
	code = strings.TrimSpace(code)
	if !totpCodePattern.MatchString(code) {
		return ErrInvalidTOTPCode
	}
	if !totp.Validate(code, secret) {
		return ErrInvalidTOTPCode
	}
	return nil
}

// =============================================================================
// INTERACTIVE LOGIN
// =============================================================================

// Credentials is the result of an interactive login prompt.
type Credentials struct {
	Token    string
	TOTPCode string
}

// PromptLogin reads an API token (hidden input when stdin is a terminal)
// and, when withTOTP is set, a six-digit two-factor code.
func PromptLogin(in io.Reader, out io.Writer, withTOTP bool) (*Credentials, error) {
	creds := &Credentials{}

	// One buffered reader for all prompts: a reader per prompt would
	// swallow lines buffered ahead by the previous read.
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "API token: ")
	token, err := readSecret(in, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	fmt.Fprintln(out)

	creds.Token = strings.TrimSpace(token)
	if creds.Token == "" {
		return nil, errors.New("empty API token")
	}

	if withTOTP {
		fmt.Fprint(out, "Two-factor code: ")
		code, err := readLine(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read two-factor code: %w", err)
		}
		creds.TOTPCode = strings.TrimSpace(code)
		if !totpCodePattern.MatchString(creds.TOTPCode) {
			return nil, ErrInvalidTOTPCode
		}
	}

	return creds, nil
}

// readSecret reads without echo when stdin is a real terminal, falling back
// to a plain line read (tests, pipes).
func readSecret(in io.Reader, reader *bufio.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return readLine(reader)
}

// readLine reads a single newline-terminated line.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
