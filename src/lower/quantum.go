package lower

import (
	"strings"

	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/registry"
)

// quantum.go lowers `quantum.*` builtin calls (and their bare-identifier
// aliases, e.g. `hadamard(q0)`) into QuantumGate/QuantumMeasure nodes
// carrying resolved qubit and rotation-parameter metadata (SPEC §4.4.4.2).

var gateNameTable = map[string]qtjir.GateType{
	"hadamard":  qtjir.GateHadamard,
	"pauli_x":   qtjir.GatePauliX,
	"pauli_y":   qtjir.GatePauliY,
	"pauli_z":   qtjir.GatePauliZ,
	"rx":        qtjir.GateRX,
	"ry":        qtjir.GateRY,
	"rz":        qtjir.GateRZ,
	"cnot":      qtjir.GateCNOT,
	"cz":        qtjir.GateCZ,
	"swap":      qtjir.GateSWAP,
	"toffoli":   qtjir.GateToffoli,
	"fredkin":   qtjir.GateFredkin,
}

// lowerQuantumCall lowers one quantum builtin call.
func (c *Context) lowerQuantumCall(entry registry.BuiltinEntry, argIDs []int, warn func(string)) (uint32, error) {
	b := c.Builder
	prev := b.SetTenancy(qtjir.QPUQuantum)
	defer b.SetTenancy(prev)

	shortName := entry.SourceName
	if i := strings.LastIndexByte(shortName, '.'); i >= 0 {
		shortName = shortName[i+1:]
	}

	if shortName == "measure" {
		var qubitVals []uint32
		var qubits []int
		for _, a := range argIDs {
			v, err := c.lowerExpression(a, warn)
			if err != nil {
				return 0, err
			}
			qubitVals = append(qubitVals, v)
			if idx, ok := c.resolveIntConst(a); ok {
				qubits = append(qubits, int(idx))
			} else {
				warn("quantum.measure: qubit operand is not a compile-time constant index")
			}
		}
		meta := &qtjir.QuantumMetadata{GateType: qtjir.GateUnknown, Qubits: qubits}
		return b.CreateQuantumMeasure(meta, qubitVals...), nil
	}

	gate, ok := gateNameTable[shortName]
	if !ok {
		warn("unrecognised quantum gate name " + shortName)
		gate = qtjir.GateUnknown
	}

	isRotation := gate == qtjir.GateRX || gate == qtjir.GateRY || gate == qtjir.GateRZ
	var qubitArgIDs []int
	var params []float64
	if isRotation && len(argIDs) >= 2 {
		qubitArgIDs = argIDs[:1]
		if f, ok := c.resolveFloatConst(argIDs[1]); ok {
			params = append(params, f)
		} else {
			warn("quantum." + shortName + ": angle operand is not a compile-time constant")
			params = append(params, 0)
		}
	} else {
		qubitArgIDs = argIDs
	}

	var qubitVals []uint32
	var qubits []int
	for _, a := range qubitArgIDs {
		v, err := c.lowerExpression(a, warn)
		if err != nil {
			return 0, err
		}
		qubitVals = append(qubitVals, v)
		if idx, ok := c.resolveIntConst(a); ok {
			qubits = append(qubits, int(idx))
		} else {
			warn("quantum." + shortName + ": qubit operand is not a compile-time constant index")
		}
	}

	meta := &qtjir.QuantumMetadata{GateType: gate, Qubits: qubits, Parameters: params}
	return b.CreateQuantumGate(meta, qubitVals...), nil
}

// resolveIntConst reports the compile-time integer value of astID if it is
// an integer literal, for qubit-index resolution.
func (c *Context) resolveIntConst(astID int) (int64, bool) {
	n := c.node(astID)
	if n.Kind != astsnap.KindIntegerLit {
		return 0, false
	}
	v, err := parseIntegerLiteral(c.lexeme(c.Snapshot.GetToken(n.FirstToken)))
	if err != nil {
		return 0, false
	}
	return v, true
}

// resolveFloatConst reports the compile-time float value of astID if it is
// a float or integer literal, for rotation-angle resolution.
func (c *Context) resolveFloatConst(astID int) (float64, bool) {
	n := c.node(astID)
	switch n.Kind {
	case astsnap.KindFloatLit:
		v, err := parseFloatLiteral(c.lexeme(c.Snapshot.GetToken(n.FirstToken)))
		if err != nil {
			return 0, false
		}
		return v, true
	case astsnap.KindIntegerLit:
		v, ok := c.resolveIntConst(astID)
		if !ok {
			return 0, false
		}
		return float64(v), true
	default:
		return 0, false
	}
}
