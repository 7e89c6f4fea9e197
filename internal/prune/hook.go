package prune

import "context"

// HookFunc has the argument order a packager's after-copy hook receives.
// A nil return signals completion.
type HookFunc func(buildPath, electronVersion, platform, arch string) error

// Hook configures a whitelist once and returns a function the packager
// calls for every platform/arch build it produces
func Hook(languages []string, opts Options) HookFunc {
	langs := append([]string(nil), languages...)
	return func(buildPath, electronVersion, platform, arch string) error {
		_, err := New(opts, nil).Prune(context.Background(), Request{
			Languages:       langs,
			BuildPath:       buildPath,
			ElectronVersion: electronVersion,
			Platform:        platform,
			Arch:            arch,
		})
		return err
	}
}
