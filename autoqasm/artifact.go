package autoqasm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Artifact is the serialized form of a built program.
type Artifact struct {
	BuildID      string   `cbor:"1,keyasint"`
	Name         string   `cbor:"2,keyasint,omitempty"`
	IR           string   `cbor:"3,keyasint"`
	NumQubits    int      `cbor:"4,keyasint"`
	PulseControl bool     `cbor:"5,keyasint,omitempty"`
	Subroutines  []string `cbor:"6,keyasint,omitempty"`
	Gates        []string `cbor:"7,keyasint,omitempty"`
}

// canonical encoding keeps artifacts of identical programs byte-identical
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("autoqasm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Artifact describes the program under the given name.
func (p *Program) Artifact(name string) *Artifact {
	return &Artifact{
		BuildID:      p.buildID,
		Name:         name,
		IR:           p.ToIR(),
		NumQubits:    p.numQubits,
		PulseControl: p.hasPulseControl,
		Subroutines:  p.SubroutineNames(),
		Gates:        p.GateNames(),
	}
}

// MarshalBinary encodes the program as a CBOR artifact.
func (p *Program) MarshalBinary() ([]byte, error) {
	return MarshalArtifact(p.Artifact(""))
}

func MarshalArtifact(a *Artifact) ([]byte, error) {
	return cborEncMode.Marshal(a)
}

// MarshalArtifacts encodes several artifacts as one CBOR array.
func MarshalArtifacts(as []*Artifact) ([]byte, error) {
	return cborEncMode.Marshal(as)
}

// UnmarshalArtifact decodes an artifact produced by MarshalArtifact.
func UnmarshalArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := cbor.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("autoqasm: unmarshal artifact: %w", err)
	}
	return &a, nil
}

func UnmarshalArtifacts(data []byte) ([]*Artifact, error) {
	var as []*Artifact
	if err := cbor.Unmarshal(data, &as); err != nil {
		return nil, fmt.Errorf("autoqasm: unmarshal artifacts: %w", err)
	}
	return as, nil
}
