// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenWord
	tokenQuoted
	tokenLParen
	tokenRParen
)

type token struct {
	typ tokenType
	val string
	pos int
	// gap is set when whitespace precedes the token.
	gap bool
}

// lex splits input into words, quoted literals and parentheses. A quote
// opens a literal at the start of a token, or right after a run of
// punctuation such as an operator; elsewhere it is an ordinary character.
func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	gap := false

	var word strings.Builder
	wordStart := 0
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, token{typ: tokenWord, val: word.String(), pos: wordStart, gap: gap})
			word.Reset()
			gap = false
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			flush()
			gap = true
		case r == '(' || r == ')':
			flush()
			typ := tokenLParen
			if r == ')' {
				typ = tokenRParen
			}
			tokens = append(tokens, token{typ: typ, val: string(r), pos: i, gap: gap})
			gap = false
		case (r == '\'' || r == '"') && punctuationOnly(word.String()):
			flush()
			val, end, err := lexQuoted(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenQuoted, val: val, pos: i, gap: gap})
			gap = false
			i = end
		default:
			if word.Len() == 0 {
				wordStart = i
			}
			word.WriteRune(r)
		}
	}
	flush()
	tokens = append(tokens, token{typ: tokenEOF, pos: len(runes), gap: gap})
	return tokens, nil
}

// lexQuoted reads the literal opened at runes[start] and returns its value
// and the index of the closing quote.
func lexQuoted(runes []rune, start int) (string, int, error) {
	quote := runes[start]
	var sb strings.Builder
	for i := start + 1; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			i++
			sb.WriteRune(runes[i])
		case r == quote:
			return sb.String(), i, nil
		default:
			sb.WriteRune(r)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated quote at position %d", ErrSyntax, start)
}

func punctuationOnly(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
