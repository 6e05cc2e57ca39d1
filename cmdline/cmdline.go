// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmdline tokenizes kernel command line style text: a blob of
// whitespace-separated key=value tokens.
package cmdline

import "strings"

// Entry is a single key=value token.
type Entry struct {
	Key   string
	Value string
}

// Tokenizer splits key=value text. Tokens that do not contain exactly one
// '=' are dropped without error; that lossy policy is deliberate, the
// kernel command line carries plenty of flag words like "ro" that are not
// entries. The zero value drops them silently.
type Tokenizer struct {
	// OnSkip, if non-nil, observes every dropped token.
	OnSkip func(token string)
}

// Tokenize trims text, splits it on runs of whitespace, and calls fn for
// every well-formed key=value token in order.
func (t *Tokenizer) Tokenize(text string, fn func(key, value string)) {
	for _, token := range strings.Fields(text) {
		pieces := strings.Split(token, "=")
		if len(pieces) != 2 {
			if t.OnSkip != nil {
				t.OnSkip(token)
			}
			continue
		}
		fn(pieces[0], pieces[1])
	}
}

// Tokenize splits text with the default drop policy.
func Tokenize(text string, fn func(key, value string)) {
	(&Tokenizer{}).Tokenize(text, fn)
}

// Entries collects every well-formed token of text in order.
func Entries(text string) []Entry {
	var entries []Entry
	Tokenize(text, func(key, value string) {
		entries = append(entries, Entry{Key: key, Value: value})
	})
	return entries
}

// Value returns the value of the last occurrence of key in text.
func Value(text, key string) (string, bool) {
	var val string
	var found bool
	Tokenize(text, func(k, v string) {
		if k == key {
			val = v
			found = true
		}
	})
	return val, found
}
