package fsops

// FakeFS reads through to the real filesystem but records removals
// instead of performing them. Paths listed in Fail return the mapped error.
type FakeFS struct {
	OSFS
	Calls []string
	Fail  map[string]error
}

func (f *FakeFS) RemoveAll(path string) error {
	if err, ok := f.Fail[path]; ok {
		return err
	}
	f.Calls = append(f.Calls, "rmall:"+path)
	return nil
}
