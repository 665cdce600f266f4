//go:build !memkitdebug

package heap

// assertBlock is compiled out of release builds. Build with -tags memkitdebug
// to verify every freed block against the region and its class alignment.
func (h *Heap) assertBlock(uint64, int) {}
