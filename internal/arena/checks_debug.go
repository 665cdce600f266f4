//go:build memkitdebug

package arena

import "fmt"

// checkLink panics when a link access would fall outside the arena.
func (a *Arena) checkLink(addr uint64) {
	if !a.Contains(addr, linkSize) {
		panic(fmt.Sprintf("arena: link access at 0x%x outside region [0x%x, 0x%x)", addr, a.Base(), a.End()))
	}
}
