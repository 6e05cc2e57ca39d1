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

package linuxboot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFile(t *testing.T) {
	c := &Client{}
	name := filepath.Join(t.TempDir(), "prop")
	if err := os.WriteFile(name, []byte("value\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := c.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile(%q) returned error %v, want nil", name, err)
	}
	if !bytes.Equal(got, []byte("value\n")) {
		t.Errorf("ReadFile(%q) = %q, want %q", name, got, "value\n")
	}
}

func TestReadFileRejectsInsecure(t *testing.T) {
	c := &Client{}
	tcs := []struct {
		name string
		mode os.FileMode
	}{
		{name: "group writable", mode: 0o620},
		{name: "other writable", mode: 0o602},
		{name: "world writable", mode: 0o666},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			name := filepath.Join(t.TempDir(), "prop")
			if err := os.WriteFile(name, []byte("x"), 0o600); err != nil {
				t.Fatal(err)
			}
			if err := os.Chmod(name, tc.mode); err != nil {
				t.Fatal(err)
			}
			if _, err := c.ReadFile(name); err == nil || !strings.Contains(err.Error(), "insecure") {
				t.Errorf("ReadFile(%q) with mode %v returned error %v, want insecure file rejection",
					name, tc.mode, err)
			}
		})
	}
}

func TestReadFileRejectsSymlink(t *testing.T) {
	c := &Client{}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	if err := os.WriteFile(target, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ReadFile(link); err == nil {
		t.Errorf("ReadFile(%q) through a symlink succeeded, want error", link)
	}
}

func TestWriteFile(t *testing.T) {
	c := &Client{}
	name := filepath.Join(t.TempDir(), "prop")
	if err := c.WriteFile(name, []byte("42\n")); err != nil {
		t.Fatalf("WriteFile(%q) returned error %v, want nil", name, err)
	}
	info, err := os.Stat(name)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("WriteFile(%q) created mode %v, want 0600", name, perm)
	}
	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("42\n")) {
		t.Errorf("written content = %q, want %q", got, "42\n")
	}
	// Rewriting truncates.
	if err := c.WriteFile(name, []byte("7\n")); err != nil {
		t.Fatalf("second WriteFile(%q) returned error %v, want nil", name, err)
	}
	got, err = os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("7\n")) {
		t.Errorf("rewritten content = %q, want %q", got, "7\n")
	}
}

func TestMkdirAll(t *testing.T) {
	c := &Client{}
	name := filepath.Join(t.TempDir(), "a/b/c")
	if err := c.MkdirAll(name); err != nil {
		t.Fatalf("MkdirAll(%q) returned error %v, want nil", name, err)
	}
	if !c.IsDir(name) {
		t.Errorf("IsDir(%q) = false after MkdirAll, want true", name)
	}
	// Idempotent on existing directories.
	if err := c.MkdirAll(name); err != nil {
		t.Errorf("repeated MkdirAll(%q) returned error %v, want nil", name, err)
	}
}

func TestIsDir(t *testing.T) {
	c := &Client{}
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !c.IsDir(dir) {
		t.Errorf("IsDir(%q) = false, want true", dir)
	}
	if c.IsDir(file) {
		t.Errorf("IsDir(%q) = true for a regular file, want false", file)
	}
	if c.IsDir(filepath.Join(dir, "missing")) {
		t.Error("IsDir reported a missing path as a directory")
	}
}

type recordingLabeler struct {
	paths []string
}

func (l *recordingLabeler) Label(path string) error {
	l.paths = append(l.paths, path)
	return nil
}

func TestLabeler(t *testing.T) {
	labeler := &recordingLabeler{}
	c := &Client{Labeler: labeler}
	dir := t.TempDir()
	sub := filepath.Join(dir, "x/y")
	if err := c.MkdirAll(sub); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "prop")
	if err := c.WriteFile(file, []byte("1\n")); err != nil {
		t.Fatal(err)
	}
	var sawX, sawY, sawFile bool
	for _, p := range labeler.paths {
		switch p {
		case filepath.Join(dir, "x"):
			sawX = true
		case sub:
			sawY = true
		case file:
			sawFile = true
		}
	}
	if !sawX || !sawY || !sawFile {
		t.Errorf("labeler saw %v, want the two created directories and the file", labeler.paths)
	}
}
