package prune

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRefuseRemoveAll is matched by every *ConfigurationError
var ErrRefuseRemoveAll = errors.New("refusing to remove all languages from the packaged app")

// ConfigurationError reports a whitelist that would remove every
// discovered language without AllowRemovingAll being set
type ConfigurationError struct {
	Excluded int
	Total    int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v (%d of %d would be removed); double check the supplied locale identifiers or set allow_removing_all",
		ErrRefuseRemoveAll, e.Excluded, e.Total)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrRefuseRemoveAll
}

// DeletionError reports the entry whose removal failed and the entries
// already removed earlier in the same run. Removals are not rolled back.
type DeletionError struct {
	Entry   string
	Removed []string
	Err     error
}

func (e *DeletionError) Error() string {
	removed := "none"
	if len(e.Removed) > 0 {
		removed = strings.Join(e.Removed, ", ")
	}
	return fmt.Sprintf("remove %s: %v (already removed: %s)", e.Entry, e.Err, removed)
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}
