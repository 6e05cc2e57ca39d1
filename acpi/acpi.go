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

// Package acpi imports key=value hardware description entries from the ACPI
// firmware pseudo-files under sysfs.
package acpi

import (
	"fmt"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/google/go-bootenv/bootfs/bootfsi"
	"github.com/google/go-bootenv/cmdline"
)

const (
	// DefaultConfigRoot is the sysfs firmware node read when the kernel
	// command line does not override it.
	DefaultConfigRoot = "/sys/devices/system/container/ACPI0004:00/firmware_node"

	// ConfigRootKey is the kernel command line key that overrides
	// DefaultConfigRoot.
	ConfigRootKey = "android.acpi.cfg.root"

	// deviceSentinel must appear in <root>/path for the description
	// device to be considered present.
	deviceSentinel = "CFG0"
)

// ConfigRoot returns the config root named by cmdlineText, or
// DefaultConfigRoot when the override key is not set.
func ConfigRoot(cmdlineText string) string {
	if root, ok := cmdline.Value(cmdlineText, ConfigRootKey); ok {
		return root
	}
	return DefaultConfigRoot
}

// Importer reads the description entries of one ACPI config device.
type Importer struct {
	Client bootfsi.Client
	// Present, if non-nil, replaces the default presence predicate applied
	// to the contents of <root>/path. The default checks for the "CFG0"
	// device name.
	Present func(pathContents string) bool
	// OnSkip, if non-nil, observes malformed description tokens.
	OnSkip func(token string)
}

func (im *Importer) present(pathContents string) bool {
	if im.Present != nil {
		return im.Present(pathContents)
	}
	return strings.Contains(pathContents, deviceSentinel)
}

// Import reads <root>/path and, when the presence predicate accepts it,
// tokenizes <root>/description into entries. present is false when the
// device is absent; that is a legitimate negative result, not an error. An
// unreadable path file also means absent. An error is returned only when
// the device is present but its description cannot be read.
func (im *Importer) Import(root string) (entries []cmdline.Entry, present bool, err error) {
	name, err := im.Client.ReadFile(path.Join(root, "path"))
	if err != nil || !im.present(string(name)) {
		log.Debugf("no acpi config device under %q", root)
		return nil, false, nil
	}
	desc, err := im.Client.ReadFile(path.Join(root, "description"))
	if err != nil {
		return nil, true, fmt.Errorf("unable to read acpi description under %q: %v", root, err)
	}
	t := &cmdline.Tokenizer{OnSkip: im.OnSkip}
	t.Tokenize(strings.ReplaceAll(string(desc), "\n", " "), func(key, value string) {
		entries = append(entries, cmdline.Entry{Key: key, Value: value})
	})
	return entries, true, nil
}
