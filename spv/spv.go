// Package spv persists SPIR-V bytecode as the raw little-endian 32-bit
// words the pipeline layer consumes, under the conventional
// <prefix>.comp.spv / <prefix>.vert.spv / <prefix>.frag.spv names. It also
// declares the external shader-compiler surface; compilation itself lives
// outside this module.
package spv

import (
	"encoding/binary"
	"os"

	"github.com/cockroachdb/errors"
)

// ComputeArtifact is compiled compute-stage bytecode.
type ComputeArtifact struct {
	CompSPV []uint32
}

// GraphicsArtifact is compiled vertex- and fragment-stage bytecode.
type GraphicsArtifact struct {
	VertSPV []uint32
	FragSPV []uint32
}

// Compiler turns shader source text into bytecode. Implementations wrap an
// external compiler toolchain.
type Compiler interface {
	CompileCompute(source, entry string) (ComputeArtifact, error)
	CompileGraphics(vertSource, vertEntry, fragSource, fragEntry string) (GraphicsArtifact, error)
}

// WordsFromBytes reassembles little-endian bytes into SPIR-V words. The
// byte count must be a multiple of four.
func WordsFromBytes(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, errors.Newf("bytecode length %d is not a whole number of words", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// BytesFromWords flattens SPIR-V words to little-endian bytes.
func BytesFromWords(words []uint32) []byte {
	data := make([]byte, len(words)*4)
	for i, word := range words {
		binary.LittleEndian.PutUint32(data[i*4:], word)
	}
	return data
}

func loadWords(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading '%s'", path)
	}
	return WordsFromBytes(data)
}

func saveWords(path string, words []uint32) error {
	err := os.WriteFile(path, BytesFromWords(words), 0o644)
	return errors.Wrapf(err, "saving '%s'", path)
}

// LoadCompute reads <prefix>.comp.spv.
func LoadCompute(prefix string) (ComputeArtifact, error) {
	words, err := loadWords(prefix + ".comp.spv")
	return ComputeArtifact{CompSPV: words}, err
}

// SaveCompute writes <prefix>.comp.spv.
func SaveCompute(prefix string, art ComputeArtifact) error {
	return saveWords(prefix+".comp.spv", art.CompSPV)
}

// LoadGraphics reads <prefix>.vert.spv and <prefix>.frag.spv.
func LoadGraphics(prefix string) (GraphicsArtifact, error) {
	vert, err := loadWords(prefix + ".vert.spv")
	if err != nil {
		return GraphicsArtifact{}, err
	}
	frag, err := loadWords(prefix + ".frag.spv")
	if err != nil {
		return GraphicsArtifact{}, err
	}
	return GraphicsArtifact{VertSPV: vert, FragSPV: frag}, nil
}

// SaveGraphics writes <prefix>.vert.spv and <prefix>.frag.spv.
func SaveGraphics(prefix string, art GraphicsArtifact) error {
	err := saveWords(prefix+".vert.spv", art.VertSPV)
	if err != nil {
		return err
	}
	return saveWords(prefix+".frag.spv", art.FragSPV)
}
