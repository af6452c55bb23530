package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// ImageMagic identifies serialized Cinder program images.
const ImageMagic = "CNIM"

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ProgramImage is the serialized form of a compiled program: the chunk
// plus enough metadata to reject images from incompatible builds.
type ProgramImage struct {
	Magic   string `cbor:"magic"`
	Version uint16 `cbor:"version"`
	BuildID string `cbor:"build_id"`
	Chunk   *Chunk `cbor:"chunk"`
}

// NewProgramImage wraps a chunk in an image with a fresh build ID.
func NewProgramImage(chunk *Chunk) *ProgramImage {
	return &ProgramImage{
		Magic:   ImageMagic,
		Version: BytecodeVersion,
		BuildID: uuid.NewString(),
		Chunk:   chunk,
	}
}

// MarshalImage serializes a program image to CBOR bytes.
func MarshalImage(img *ProgramImage) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes a program image from CBOR bytes, rejecting
// wrong magic or an incompatible bytecode version.
func UnmarshalImage(data []byte) (*ProgramImage, error) {
	var img ProgramImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	if img.Magic != ImageMagic {
		return nil, fmt.Errorf("bytecode: not a Cinder program image (magic %q)", img.Magic)
	}
	if img.Version != BytecodeVersion {
		return nil, fmt.Errorf("bytecode: image version %d, want %d", img.Version, BytecodeVersion)
	}
	if img.Chunk == nil {
		return nil, fmt.Errorf("bytecode: image has no chunk")
	}
	return &img, nil
}
