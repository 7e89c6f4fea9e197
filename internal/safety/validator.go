package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrProtectedPath = errors.New("protected path")
	ErrOutsideRoot   = errors.New("outside resource directory")
	ErrTraversal     = errors.New("path traversal detected")
)

// IsViolation reports whether err came from a validator refusal
func IsViolation(err error) bool {
	return errors.Is(err, ErrInvalidPath) ||
		errors.Is(err, ErrProtectedPath) ||
		errors.Is(err, ErrOutsideRoot) ||
		errors.Is(err, ErrTraversal)
}

// Validator authorizes deletions beneath a single resource directory
type Validator struct {
	Root           string
	ProtectedPaths []string
}

// NewValidator creates a validator rooted at the resource directory with
// optional additional protected paths
func NewValidator(root string, extraProtected []string) *Validator {
	r, err := NormalizePath(root)
	if err != nil {
		r = ""
	}
	return &Validator{
		Root:           r,
		ProtectedPaths: defaultProtected(extraProtected),
	}
}

// ValidateRoot rejects resource directories that resolve onto system paths
func (v *Validator) ValidateRoot() error {
	if v.Root == "" {
		return ErrInvalidPath
	}
	if IsProtectedPath(v.Root, v.ProtectedPaths) {
		return ErrProtectedPath
	}
	return nil
}

// ValidateEntry checks that root/entry is a direct child of the root.
// Returns the absolute target path on success.
func (v *Validator) ValidateEntry(entry string) (string, error) {
	if err := v.ValidateRoot(); err != nil {
		return "", err
	}
	if strings.TrimSpace(entry) == "" || entry == "." {
		return "", ErrInvalidPath
	}
	if DetectTraversal(entry) {
		return "", ErrTraversal
	}

	target := filepath.Join(v.Root, entry)
	if filepath.Dir(target) != v.Root {
		return "", ErrOutsideRoot
	}
	return target, nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// DetectTraversal blocks any ".." segment in raw input
func DetectTraversal(raw string) bool {
	for _, p := range strings.Split(filepath.ToSlash(raw), "/") {
		if p == ".." {
			return true
		}
	}
	return false
}

// IsProtectedPath reports whether path is exactly one of the protected
// system directories. Children are allowed: an app unpacked under /usr/lib
// is still prunable, /usr/lib itself is not.
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)
	if p == string(os.PathSeparator) {
		return true
	}
	for _, prot := range protected {
		if p == filepath.Clean(prot) {
			return true
		}
	}
	return false
}

// defaultProtected returns the base set of protected paths plus any extras
func defaultProtected(extra []string) []string {
	base := []string{
		"/",
		"/etc",
		"/bin",
		"/usr",
		"/usr/lib",
		"/usr/share",
		"/boot",
		"/lib",
		"/lib64",
		"/sbin",
		"/home",
		"/tmp",
		"/var",
		"/Applications",
		"/System",
		"/Library",
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		base = append(base, home)
	}
	return append(base, extra...)
}
