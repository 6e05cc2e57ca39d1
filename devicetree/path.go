package devicetree

import (
	"path"
	"strings"
)

// FirmwareKeyPrefix marks a description entry as a device-tree property.
// The dotted suffix after the prefix names the property file: dots become
// path separators, so "android.fw.foo.bar" is foo/bar under the tree root.
const FirmwareKeyPrefix = "android.fw."

// SyntheticPath returns the file path for the property named by key under
// root. ok is false when key does not carry FirmwareKeyPrefix or names
// nothing after it.
func SyntheticPath(root, key string) (p string, ok bool) {
	if !strings.HasPrefix(key, FirmwareKeyPrefix) {
		return "", false
	}
	suffix := strings.TrimPrefix(key, FirmwareKeyPrefix)
	if suffix == "" {
		return "", false
	}
	return path.Join(root, strings.ReplaceAll(suffix, ".", "/")), true
}
