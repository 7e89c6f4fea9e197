// Package platform maps a packager platform tag to the conventions used to
// find and recognize locale resources inside a built application.
package platform

import (
	"path/filepath"
	"strings"

	"langprune/internal/fsops"
)

// ID is a packager platform tag such as "darwin" or "win32"
type ID string

const (
	Darwin ID = "darwin"
	MAS    ID = "mas"
	Win32  ID = "win32"
	Linux  ID = "linux"
	Other  ID = ""
)

// Kind groups platforms that share a locale resource convention
type Kind int

const (
	KindOther Kind = iota
	// KindBundle: one <lang>.lproj directory per language next to the app dir
	KindBundle
	// KindPack: one <lang>.pak file per language under ../../locales
	KindPack
)

func (k Kind) String() string {
	switch k {
	case KindBundle:
		return "bundle"
	case KindPack:
		return "pack"
	default:
		return "other"
	}
}

// Strategy is the resolved behavior for one platform. Path, extension and
// enumeration rules all hang off the same value so they cannot disagree.
type Strategy struct {
	ID   ID
	Kind Kind
	ext  string
}

var strategies = map[ID]Strategy{
	Darwin: {ID: Darwin, Kind: KindBundle, ext: "lproj"},
	MAS:    {ID: MAS, Kind: KindBundle, ext: "lproj"},
	Win32:  {ID: Win32, Kind: KindPack, ext: "pak"},
	Linux:  {ID: Linux, Kind: KindPack, ext: "pak"},
}

// Lookup returns the strategy for a platform tag. Unknown tags get the
// KindOther strategy rather than an error.
func Lookup(tag string) Strategy {
	if s, ok := strategies[ID(tag)]; ok {
		return s
	}
	return Strategy{ID: ID(tag), Kind: KindOther}
}

// Known lists the recognized platform tags in a stable order
func Known() []ID {
	return []ID{Darwin, MAS, Win32, Linux}
}

// Extension returns the locale unit suffix without the leading dot
func (s Strategy) Extension() string {
	return s.ext
}

// ResourceDir computes where locale units live for a build path. Pure path
// arithmetic; the directory need not exist.
func (s Strategy) ResourceDir(buildPath string) string {
	base, err := filepath.Abs(buildPath)
	if err != nil {
		base = filepath.Clean(buildPath)
	}
	switch s.Kind {
	case KindBundle:
		return filepath.Dir(base)
	case KindPack:
		return filepath.Join(base, "..", "..", "locales")
	default:
		return base
	}
}

// Enumerate lists the immediate entries of dir that are locale units.
//
// Bundle platforms filter here (directory with a .lproj suffix). Pack
// platforms return every child unfiltered; the .pak suffix is checked
// later when names are compared against the whitelist. Other platforms
// return nothing and do not touch the filesystem.
func (s Strategy) Enumerate(fsys fsops.FS, dir string) ([]string, error) {
	if s.Kind == KindOther {
		return nil, nil
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if s.Kind == KindPack {
			names = append(names, name)
			continue
		}
		if !strings.HasSuffix(name, "."+s.ext) {
			continue
		}
		info, err := fsys.Stat(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			names = append(names, name)
		}
	}
	return names, nil
}
