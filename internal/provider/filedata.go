package provider

import (
	"errors"
	"fmt"

	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

// ReadFileData returns up to length bytes of the leaf's payload
// starting at offset. The payload is re-read from the store on every
// call; no handle is held between reads.
//
// A short read near the end of the payload is success. An offset at
// or past the payload length fails with types.ErrOutOfRange, and a
// leaf that no longer exists fails with types.ErrValueNotFound; both
// are expected, recoverable conditions.
func (p *Provider) ReadFileData(leaf store.LeafRef, offset, length uint64) ([]byte, error) {
	payload, err := p.store.ReadValueBytes(leaf)
	if err != nil {
		if errors.Is(err, types.ErrValueNotFound) {
			return nil, &types.ReadError{Offset: offset, Err: types.ErrValueNotFound}
		}
		return nil, fmt.Errorf("read value bytes: %w", err)
	}

	size := uint64(len(payload))
	if offset >= size {
		return nil, &types.ReadError{Offset: offset, Size: size, Err: types.ErrOutOfRange}
	}
	n := length
	if remaining := size - offset; n > remaining {
		n = remaining
	}
	return payload[offset : offset+n], nil
}
