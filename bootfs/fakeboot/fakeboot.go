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

// Package fakeboot defines an in-memory bootfsi.Client for faking the boot
// filesystems in tests.
package fakeboot

import (
	"fmt"
	"os"
	"path"
)

// Client is an in-memory bootfsi.Client. Paths are cleaned before use, so
// "/proc/cmdline" and "/proc//cmdline" name the same file.
type Client struct {
	// OnRead, if non-nil, is consulted before every ReadFile and may
	// inject an error.
	OnRead func(name string) error
	// OnWrite, if non-nil, is consulted before every WriteFile and may
	// inject an error.
	OnWrite func(name string) error
	// OnMkdir, if non-nil, is consulted before every MkdirAll and may
	// inject an error.
	OnMkdir func(name string) error

	files map[string][]byte
	dirs  map[string]bool
}

// NewClient returns an empty fake filesystem.
func NewClient() *Client {
	return &Client{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
}

// SetFile seeds the named file with contents, creating parent directories.
func (c *Client) SetFile(name string, contents []byte) {
	name = path.Clean(name)
	c.mkdirs(path.Dir(name))
	c.files[name] = contents
}

// RemoveAll deletes the named path and everything under it.
func (c *Client) RemoveAll(name string) {
	name = path.Clean(name)
	delete(c.files, name)
	delete(c.dirs, name)
	prefix := name + "/"
	for f := range c.files {
		if len(f) > len(prefix) && f[:len(prefix)] == prefix {
			delete(c.files, f)
		}
	}
	for d := range c.dirs {
		if len(d) > len(prefix) && d[:len(prefix)] == prefix {
			delete(c.dirs, d)
		}
	}
}

func (c *Client) mkdirs(name string) {
	for name != "/" && name != "." {
		c.dirs[name] = true
		name = path.Dir(name)
	}
}

// ReadFile implements bootfsi.Client.
func (c *Client) ReadFile(name string) ([]byte, error) {
	name = path.Clean(name)
	if c.OnRead != nil {
		if err := c.OnRead(name); err != nil {
			return nil, err
		}
	}
	data, ok := c.files[name]
	if !ok {
		return nil, fmt.Errorf("unable to open %q: %w", name, os.ErrNotExist)
	}
	return data, nil
}

// WriteFile implements bootfsi.Client. Writing into a directory that does
// not exist fails, as it would on a real filesystem.
func (c *Client) WriteFile(name string, contents []byte) error {
	name = path.Clean(name)
	if c.OnWrite != nil {
		if err := c.OnWrite(name); err != nil {
			return err
		}
	}
	if dir := path.Dir(name); dir != "/" && dir != "." && !c.dirs[dir] {
		return fmt.Errorf("unable to open %q: %w", name, os.ErrNotExist)
	}
	c.files[name] = contents
	return nil
}

// MkdirAll implements bootfsi.Client.
func (c *Client) MkdirAll(name string) error {
	name = path.Clean(name)
	if c.OnMkdir != nil {
		if err := c.OnMkdir(name); err != nil {
			return err
		}
	}
	c.mkdirs(name)
	return nil
}

// IsDir implements bootfsi.Client.
func (c *Client) IsDir(name string) bool {
	return c.dirs[path.Clean(name)]
}
