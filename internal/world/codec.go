package world

import (
	"fmt"
	"unsafe"

	"github.com/klauspost/compress/zstd"
)

// Voxel buffers cross the worker boundary compressed. EncodeAll/DecodeAll are
// safe for concurrent use, so one encoder and decoder serve every worker.
var (
	voxelEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	voxelDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// EncodeVoxels serializes a chunk voxel buffer.
func EncodeVoxels(v []BlockType) []byte {
	return voxelEncoder.EncodeAll(asBytes(v), make([]byte, 0, len(v)/16))
}

// DecodeVoxels restores a buffer produced by EncodeVoxels.
func DecodeVoxels(data []byte) ([]BlockType, error) {
	raw, err := voxelDecoder.DecodeAll(data, make([]byte, 0, ChunkVolume))
	if err != nil {
		return nil, fmt.Errorf("decode voxels: %w", err)
	}
	if len(raw) != ChunkVolume {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", ErrBufferSize, len(raw), ChunkVolume)
	}
	return asBlocks(raw), nil
}

func asBytes(v []BlockType) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v))
}

func asBlocks(b []byte) []BlockType {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*BlockType)(unsafe.Pointer(&b[0])), len(b))
}
