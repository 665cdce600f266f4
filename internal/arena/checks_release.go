//go:build !memkitdebug

package arena

// checkLink is compiled out of release builds. Build with -tags memkitdebug
// to bounds-check every link access.
func (a *Arena) checkLink(uint64) {}
