package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"eodingest/pkg/contracts/domain"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// VendorFile is an input file together with the vendor that wrote it.
type VendorFile struct {
	FileInfo
	Vendor domain.Vendor
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindVendorFiles lists the files under dir whose vendor can be inferred,
// sorted by path. Files with unrecognized names are returned separately.
// Hidden files and directories are skipped.
func (d *Discovery) FindVendorFiles(dir string, recursive bool) ([]VendorFile, []FileInfo, error) {
	root := d.resolve(dir)

	var (
		found   []VendorFile
		ignored []FileInfo
	)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(entry.Name(), ".") && path != root
		if entry.IsDir() {
			if path != root && (hidden || !recursive) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		fi := FileInfo{Path: path, Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()}
		if vendor, ok := InferVendor(entry.Name()); ok {
			found = append(found, VendorFile{FileInfo: fi, Vendor: vendor})
		} else {
			ignored = append(ignored, fi)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, ignored, nil
}

// FindFilesByPattern finds files matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(d.resolve(dir), pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// FilterVendor keeps the files written by vendor.
func FilterVendor(files []VendorFile, vendor domain.Vendor) []VendorFile {
	var out []VendorFile
	for _, f := range files {
		if f.Vendor == vendor {
			out = append(out, f)
		}
	}
	return out
}
