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

// Package linuxboot defines a bootfsi.Client for Linux OS operations on the
// boot filesystems, with the permission semantics early init requires.
package linuxboot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/google/go-bootenv/bootfs/bootfsi"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// Client provides bootfsi.Client for procfs, sysfs and ramdisk file
// operations in Linux. The zero value applies no security labels.
type Client struct {
	// Labeler is applied before each file or directory creation.
	// Nil means no labeling.
	Labeler bootfsi.Labeler
}

func (c *Client) label(path string) error {
	if c.Labeler == nil {
		return nil
	}
	return c.Labeler.Label(path)
}

// ReadFile reads the named file and returns the contents. Files writable by
// group or other are rejected, as is anything reached through a symlink.
func (c *Client) ReadFile(name string) ([]byte, error) {
	f, err := os.OpenFile(name, os.O_RDONLY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to open %q: %v", name, err)
	}
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return nil, multierr.Combine(f.Close(), fmt.Errorf("fstat failed for %q: %v", name, err))
	}
	if st.Mode&(unix.S_IWGRP|unix.S_IWOTH) != 0 {
		return nil, multierr.Combine(f.Close(), fmt.Errorf("skipping insecure file %q", name))
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, multierr.Combine(f.Close(), fmt.Errorf("unable to read %q: %v", name, err))
	}
	return data, f.Close()
}

// WriteFile writes data to the named file, creating or truncating it with
// owner-only permissions.
func (c *Client) WriteFile(name string, contents []byte) error {
	if err := c.label(name); err != nil {
		return fmt.Errorf("unable to label %q: %v", name, err)
	}
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|unix.O_NOFOLLOW|unix.O_CLOEXEC, fileMode)
	if err != nil {
		return fmt.Errorf("unable to open %q: %v", name, err)
	}
	_, err = f.Write(contents)
	if err != nil {
		err = fmt.Errorf("unable to write to %q: %v", name, err)
	}
	return multierr.Combine(err, f.Close())
}

// MkdirAll creates the named directory and any missing parents, labeling
// each directory it creates. Already existing directories are not an error.
func (c *Client) MkdirAll(name string) error {
	var partial string
	for _, component := range strings.Split(name, "/") {
		if component == "" {
			partial += "/"
			continue
		}
		partial += component
		if err := c.mkdir(partial); err != nil {
			return err
		}
		partial += "/"
	}
	return nil
}

func (c *Client) mkdir(path string) error {
	if err := c.label(path); err != nil {
		return fmt.Errorf("unable to label %q: %v", path, err)
	}
	if err := os.Mkdir(path, dirMode); err != nil && !os.IsExist(err) {
		return fmt.Errorf("unable to create %q: %v", path, err)
	}
	return nil
}

// IsDir reports whether the named path exists and is a directory.
func (c *Client) IsDir(name string) bool {
	var st unix.Stat_t
	if err := unix.Stat(name, &st); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFDIR
}
