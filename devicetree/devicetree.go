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

// Package devicetree resolves the Android device-tree directory once per
// process and reads hardware description properties out of it.
package devicetree

import (
	"path"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/google/go-bootenv/acpi"
	"github.com/google/go-bootenv/bootfs/bootfsi"
	"github.com/google/go-bootenv/cmdline"
)

const (
	// DefaultDir is the standard procfs device-tree directory.
	DefaultDir = "/proc/device-tree/firmware/android/"
	// FallbackDir is the ramdisk directory used when the kernel exposes no
	// tree and the command line names no other.
	FallbackDir = "/dev/device-tree/firmware/android/"
	// DirKey is the kernel command line key naming a custom directory.
	DirKey = "androidboot.android_dt_dir"
	// KernelCmdline is the pseudo-file holding the boot parameters.
	KernelCmdline = "/proc/cmdline"
)

// Source tags where a resolved directory came from.
type Source int

const (
	// SourceProcfsDefault means the kernel exposes the tree at DefaultDir.
	SourceProcfsDefault Source = iota
	// SourceCmdlineOverride means the command line named an existing
	// directory.
	SourceCmdlineOverride
	// SourceSynthesizedFallback means the directory is (or was) built from
	// the ACPI description rather than exposed by the kernel.
	SourceSynthesizedFallback
)

// String returns the source tag name.
func (s Source) String() string {
	switch s {
	case SourceProcfsDefault:
		return "procfs-default"
	case SourceCmdlineOverride:
		return "cmdline-override"
	case SourceSynthesizedFallback:
		return "synthesized-fallback"
	}
	return "unknown"
}

// Resolver decides once per process lifetime where the device-tree nodes
// live. The decision is cached on first use and never revisited, even if
// the filesystem changes afterward; construct one Resolver per boot
// environment and share it.
//
// Concurrent first calls serialize through the internal initializer; all
// later calls read the cached result without locking.
type Resolver struct {
	Client bootfsi.Client
	// ProcfsDir, Fallback and CmdlinePath override DefaultDir, FallbackDir
	// and KernelCmdline when non-empty.
	ProcfsDir   string
	Fallback    string
	CmdlinePath string
	// Importer, if non-nil, replaces the default ACPI importer over Client.
	Importer *acpi.Importer

	once   sync.Once
	dir    string
	source Source
}

// Dir returns the resolved device-tree directory and its source.
func (r *Resolver) Dir() (string, Source) {
	r.once.Do(r.resolve)
	return r.dir, r.source
}

func (r *Resolver) resolve() {
	procfs := r.ProcfsDir
	if procfs == "" {
		procfs = DefaultDir
	}
	// An exposed kernel tree wins over any other configuration.
	if r.Client.IsDir(procfs) {
		r.dir, r.source = procfs, SourceProcfsDefault
		log.Infof("using Android DT directory %s", r.dir)
		return
	}
	text := r.cmdlineText()
	candidate := r.Fallback
	if candidate == "" {
		candidate = FallbackDir
	}
	source := SourceSynthesizedFallback
	if dir, ok := cmdline.Value(text, DirKey); ok {
		candidate, source = dir, SourceCmdlineOverride
	}
	if !r.Client.IsDir(candidate) {
		r.synthesize(text, candidate)
		source = SourceSynthesizedFallback
	}
	r.dir, r.source = candidate, source
	log.Infof("using Android DT directory %s", r.dir)
}

func (r *Resolver) cmdlineText() string {
	name := r.CmdlinePath
	if name == "" {
		name = KernelCmdline
	}
	data, err := r.Client.ReadFile(name)
	if err != nil {
		log.Debugf("unable to read kernel command line: %v", err)
		return ""
	}
	return string(data)
}

// synthesize builds the fallback tree under root from the ACPI description.
// Best-effort: a partial or absent tree only means later reads under root
// fail individually.
func (r *Resolver) synthesize(cmdlineText, root string) {
	im := r.Importer
	if im == nil {
		im = &acpi.Importer{Client: r.Client}
	}
	configRoot := acpi.ConfigRoot(cmdlineText)
	log.Infof("acpi cfg root: %s", configRoot)
	entries, present, err := im.Import(configRoot)
	if err != nil {
		log.Debugf("unable to import acpi description: %v", err)
		return
	}
	if !present {
		return
	}
	var errs error
	for _, entry := range entries {
		errs = multierr.Append(errs, Synthesize(r.Client, entry, root))
	}
	if errs != nil {
		log.Debugf("device tree synthesis under %q was incomplete: %v", root, errs)
	}
}

// Synthesize writes the device-tree file for one description entry under
// root. Entries without FirmwareKeyPrefix are ignored. The returned error
// is informational only; synthesis is best-effort and callers log and
// continue.
func Synthesize(client bootfsi.Client, entry cmdline.Entry, root string) error {
	name, ok := SyntheticPath(root, entry.Key)
	if !ok {
		return nil
	}
	if err := client.MkdirAll(path.Dir(name)); err != nil {
		return err
	}
	return client.WriteFile(name, []byte(entry.Value+"\n"))
}

// ReadFile reads subPath under the resolved directory. Empty content is
// treated as absence. A single trailing NUL, if present, is trimmed.
func (r *Resolver) ReadFile(subPath string) (string, bool) {
	dir, _ := r.Dir()
	data, err := r.Client.ReadFile(dir + subPath)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return strings.TrimSuffix(string(data), "\x00"), true
}

// IsValueExpected reports whether subPath under the resolved directory
// reads back exactly expected.
func (r *Resolver) IsValueExpected(subPath, expected string) bool {
	content, ok := r.ReadFile(subPath)
	return ok && content == expected
}
