package fsops

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FS is an abstract filesystem used across the app and tests.
type FS interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (fs.FileInfo, error)
	Rename(oldpath, newpath string) error
	MkdirAll(path string, perm os.FileMode) error
	WalkDir(root string, fn fs.WalkDirFunc) error

	Join(elem ...string) string
	Base(name string) string
	Dir(name string) string
	Ext(name string) string
	Clean(name string) string
}

// ---------- OS-backed implementation ----------

type OS struct{}

func NewOS() OS { return OS{} }

func (OS) ReadFile(name string) ([]byte, error) { return os.ReadFile(filepath.Clean(name)) }
func (OS) WriteFile(name string, b []byte, p os.FileMode) error {
	return os.WriteFile(filepath.Clean(name), b, p)
}
func (OS) Stat(name string) (fs.FileInfo, error)     { return os.Stat(filepath.Clean(name)) }
func (OS) Rename(a, b string) error                  { return os.Rename(a, b) }
func (OS) MkdirAll(path string, p os.FileMode) error { return os.MkdirAll(filepath.Clean(path), p) }
func (OS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(filepath.Clean(root), fn)
}
func (OS) Join(elem ...string) string { return filepath.Join(elem...) }
func (OS) Base(name string) string    { return filepath.Base(name) }
func (OS) Dir(name string) string     { return filepath.Dir(name) }
func (OS) Ext(name string) string     { return filepath.Ext(name) }
func (OS) Clean(name string) string   { return filepath.Clean(name) }

// ---------- In-memory implementation (for tests/integration) ----------

type Mem struct{ Fs afero.Fs }

func NewMem() Mem { return Mem{Fs: afero.NewMemMapFs()} }

func (m Mem) ReadFile(name string) ([]byte, error) { return afero.ReadFile(m.Fs, filepath.Clean(name)) }
func (m Mem) WriteFile(name string, b []byte, p os.FileMode) error {
	return afero.WriteFile(m.Fs, filepath.Clean(name), b, p)
}
func (m Mem) Stat(name string) (fs.FileInfo, error) { return m.Fs.Stat(filepath.Clean(name)) }
func (m Mem) Rename(a, b string) error              { return m.Fs.Rename(a, b) }
func (m Mem) MkdirAll(path string, p os.FileMode) error {
	return m.Fs.MkdirAll(filepath.Clean(path), p)
}
func (m Mem) WalkDir(root string, fn fs.WalkDirFunc) error {
	root = filepath.Clean(root)
	return afero.Walk(m.Fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		de := memDirEntry{info}
		return fn(p, de, nil)
	})
}

type memDirEntry struct{ os.FileInfo }

func (d memDirEntry) Type() fs.FileMode          { return d.Mode().Type() }
func (d memDirEntry) Info() (fs.FileInfo, error) { return d.FileInfo, nil }

func (Mem) Join(elem ...string) string { return filepath.Join(elem...) }
func (Mem) Base(name string) string    { return filepath.Base(name) }
func (Mem) Dir(name string) string     { return filepath.Dir(name) }
func (Mem) Ext(name string) string     { return filepath.Ext(name) }
func (Mem) Clean(name string) string   { return filepath.Clean(name) }

// ---------- High-level façade used by the batch driver ----------

type Ops struct{ FS FS }

func NewOps(fs FS) Ops { return Ops{FS: fs} }

// ImageFile is one discovered dataset image plus its optional JSON sidecar.
type ImageFile struct {
	ImagePath   string
	SidecarPath string
	BaseName    string
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ListImages walks a dataset directory and returns its images in sorted path
// order. A sidecar path is filled in when a JSON file with the same stem sits
// next to the image. Dot-directories are skipped.
func (o Ops) ListImages(root string) ([]ImageFile, error) {
	var images []ImageFile
	err := o.FS.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return fs.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(o.FS.Ext(p))
		if !imageExtensions[ext] {
			return nil
		}
		stem := strings.TrimSuffix(p, o.FS.Ext(p))
		sidecar := stem + ".json"
		if !o.FileExists(sidecar) {
			sidecar = ""
		}
		images = append(images, ImageFile{
			ImagePath:   p,
			SidecarPath: sidecar,
			BaseName:    strings.TrimSuffix(o.FS.Base(p), o.FS.Ext(p)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(images, func(i, j int) bool { return images[i].ImagePath < images[j].ImagePath })
	return images, nil
}

func (o Ops) EnsureDir(path string) error { return o.FS.MkdirAll(path, 0o755) }
func (o Ops) FileExists(p string) bool    { _, err := o.FS.Stat(p); return err == nil }
