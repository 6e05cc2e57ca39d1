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

// Package props expands property references inside configuration strings.
//
// A reference is $name or ${name}, with ${name:-default} substituting
// default when the property is unset or empty. $$ produces a literal $.
// Substituted values are not themselves expanded.
package props

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Terminal expansion errors. Any of them fails the whole expansion; callers
// must not retry with the same source string.
var (
	// ErrUnterminatedReference reports a ${ with no closing brace.
	ErrUnterminatedReference = errors.New("unterminated property reference")
	// ErrEmptyPropertyName reports a reference with a zero-length name.
	ErrEmptyPropertyName = errors.New("empty property name")
	// ErrUnresolvedProperty reports an unset property with no default.
	ErrUnresolvedProperty = errors.New("unresolved property")
)

// Lookup resolves a property name to its value. An empty result means the
// property is unset.
type Lookup func(name string) string

// MapLookup returns a Lookup backed by m.
func MapLookup(m map[string]string) Lookup {
	return func(name string) string { return m[name] }
}

// Expand substitutes every property reference in src using lookup and
// returns the result. A source with no '$' is returned unchanged. A lone
// '$' at the end of src is dropped.
//
// The bare $name form is deprecated: it has no terminator and consumes the
// rest of src as the property name.
//
// On error the returned string is empty; expansion is all or nothing.
func Expand(src string, lookup Lookup) (string, error) {
	var dst strings.Builder
	rest := src
	for len(rest) > 0 {
		dollar := strings.IndexByte(rest, '$')
		if dollar < 0 {
			dst.WriteString(rest)
			break
		}
		dst.WriteString(rest[:dollar])
		rest = rest[dollar+1:]
		if rest == "" {
			break
		}
		if rest[0] == '$' {
			dst.WriteByte('$')
			rest = rest[1:]
			continue
		}
		var name, def string
		if rest[0] == '{' {
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return "", fmt.Errorf("%w in %q, looking for }", ErrUnterminatedReference, src)
			}
			name = rest[1:end]
			rest = rest[end+1:]
			if i := strings.Index(name, ":-"); i >= 0 {
				def = name[i+2:]
				name = name[:i]
			}
		} else {
			name = rest
			rest = ""
			log.Warnf("using deprecated syntax for specifying property %q, use ${name} instead", name)
		}
		if name == "" {
			return "", fmt.Errorf("%w in %q", ErrEmptyPropertyName, src)
		}
		val := lookup(name)
		if val == "" {
			if def == "" {
				return "", fmt.Errorf("%w: property %q doesn't exist while expanding %q", ErrUnresolvedProperty, name, src)
			}
			val = def
		}
		dst.WriteString(val)
	}
	return dst.String(), nil
}
