package tac

import "fmt"

// Space identifies the address space of a Location.
type Space uint8

const (
	MemoryWord  Space = iota // 32-byte memory cell
	MemoryByte               // single memory byte
	StorageWord              // 32-byte persistent storage slot
)

var spaceInfo = [...]struct {
	name string
	size int
}{
	MemoryWord:  {"M", 32},
	MemoryByte:  {"M8", 1},
	StorageWord: {"S", 32},
}

func (s Space) String() string {
	if int(s) < len(spaceInfo) {
		return spaceInfo[s].name
	}
	return fmt.Sprintf("space(%d)", s)
}

// Size returns the width in bytes of a cell in this space.
func (s Space) Size() int {
	if int(s) < len(spaceInfo) {
		return spaceInfo[s].size
	}
	return 0
}

// Location is a storage cell operand. Its size is implied by its space.
type Location struct {
	space   Space
	address Value
}

// NewMemoryLocation returns the 32-byte memory word at address.
func NewMemoryLocation(address Value) Location {
	return Location{space: MemoryWord, address: address}
}

// NewMemoryByteLocation returns the memory byte at address.
func NewMemoryByteLocation(address Value) Location {
	return Location{space: MemoryByte, address: address}
}

// NewStorageLocation returns the storage slot at address.
func NewStorageLocation(address Value) Location {
	return Location{space: StorageWord, address: address}
}

func (l Location) Space() Space   { return l.space }
func (l Location) Size() int      { return l.space.Size() }
func (l Location) Address() Value { return l.address }
func (l Location) Kind() Kind     { return KindLocation }

func (l Location) String() string {
	return fmt.Sprintf("%s[%s]", l.space, l.address)
}

func (l Location) Copy() Operand {
	return Location{space: l.space, address: l.address.Copy().(Value)}
}

// Equal reports whether both locations name the same cell expression. An
// address held in a variable never equals a constant address.
func (l Location) Equal(o Location) bool {
	if l.space != o.space {
		return false
	}
	eq, err := Equal(l.address, o.address)
	return err == nil && eq
}

func (l Location) Hash() uint64 {
	return hashWithTag(byte(l.space), l.address.Hash())
}

func (Location) operand() {}
