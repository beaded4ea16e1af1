package qtjir

// Builder appends nodes to a Graph it owns. current_tenancy is a builder
// field (SPEC §4.1): newly created nodes inherit it until the lowerer
// explicitly switches it around tensor/quantum constructs.
type Builder struct {
	Graph          *Graph
	CurrentTenancy Tenancy
	CurrentLevel   Level
}

// NewBuilder returns a Builder appending to g.
func NewBuilder(g *Graph) *Builder {
	return &Builder{Graph: g, CurrentTenancy: CPUSerial, CurrentLevel: High}
}

// SetTenancy switches the tenancy newly created nodes inherit, returning
// the previous value so callers can restore it.
func (b *Builder) SetTenancy(t Tenancy) Tenancy {
	prev := b.CurrentTenancy
	b.CurrentTenancy = t
	return prev
}

// append is the sole place a Node is added to the graph: every public
// helper funnels through it so the "returned ID is monotonically
// increasing" and "current_tenancy inherited" contracts hold in one place.
func (b *Builder) append(n Node) uint32 {
	n.ID = uint32(len(b.Graph.Nodes))
	if n.Level == 0 && b.CurrentLevel != High {
		n.Level = b.CurrentLevel
	}
	n.Tenancy = b.CurrentTenancy
	if n.ASTNode == 0 {
		n.ASTNode = -1
	}
	b.Graph.Nodes = append(b.Graph.Nodes, n)
	return n.ID
}

// CreateNode appends a bare node of the given opcode with no inputs and no
// payload. Most typed helpers below are thin wrappers around it.
func (b *Builder) CreateNode(op Opcode) uint32 {
	return b.append(Node{Op: op})
}

// CreateConstant appends a Constant node. v must be int64, float64, bool or
// string; the string, if any, is copied so the graph never borrows it.
func (b *Builder) CreateConstant(v interface{}) uint32 {
	d := Data{}
	switch x := v.(type) {
	case int64:
		d.Kind, d.Int = DataInt, x
	case int:
		d.Kind, d.Int = DataInt, int64(x)
	case float64:
		d.Kind, d.Flt = DataFloat, x
	case bool:
		d.Kind, d.Bool = DataBool, x
	case string:
		d.Kind, d.Str = DataString, string([]byte(x)) // force a fresh copy
	default:
		panic("qtjir: CreateConstant: unsupported payload type")
	}
	return b.append(Node{Op: Constant, Data: d})
}

// CreateArgument appends an Argument(index) node.
func (b *Builder) CreateArgument(index int) uint32 {
	return b.append(Node{Op: Argument, Data: Data{Kind: DataInt, Int: int64(index)}})
}

// BuildAlloca appends an Alloca(name) node. name is copied into the graph.
func (b *Builder) BuildAlloca(name string) uint32 {
	return b.append(Node{Op: Alloca, Data: Data{Kind: DataString, Str: string([]byte(name))}})
}

// BuildStructAlloca appends a StructAlloca(name) node; name is copied into
// Data.Str. Field names are not recorded on this node: they travel on the
// Struct_Construct node that initialises it (SPEC §4.4.6).
func (b *Builder) BuildStructAlloca(name string) uint32 {
	return b.append(Node{Op: StructAlloca, Data: Data{Kind: DataString, Str: string([]byte(name))}})
}

// BuildStore appends a Store(value, ptr) node; inputs are (value, ptr) in
// that order per SPEC §4.1's builder helper signature.
func (b *Builder) BuildStore(value, ptr uint32) uint32 {
	return b.append(Node{Op: Store, Inputs: []uint32{value, ptr}})
}

// BuildLoad appends a Load(ptr) node.
func (b *Builder) BuildLoad(ptr uint32) uint32 {
	return b.append(Node{Op: Load, Inputs: []uint32{ptr}})
}

// CreateCall appends a Call node with data.string = runtimeOrCalleeName and
// args as inputs, in order.
func (b *Builder) CreateCall(name string, args ...uint32) uint32 {
	return b.append(Node{Op: Call, Inputs: append([]uint32(nil), args...), Data: Data{Kind: DataString, Str: string([]byte(name))}})
}

// CreateReturn appends a Return(value) node. value may be the zero id only
// if the graph genuinely has a node 0 to return; callers that need a
// valueless return emit a Constant(0) first.
func (b *Builder) CreateReturn(value uint32) uint32 {
	return b.append(Node{Op: Return, Inputs: []uint32{value}})
}

// CreateBinary appends a two-operand arithmetic/compare/bitwise node.
func (b *Builder) CreateBinary(op Opcode, lhs, rhs uint32) uint32 {
	return b.append(Node{Op: op, Inputs: []uint32{lhs, rhs}})
}

// CreateUnary appends a one-operand node (e.g. BitNot).
func (b *Builder) CreateUnary(op Opcode, operand uint32) uint32 {
	return b.append(Node{Op: op, Inputs: []uint32{operand}})
}

// CreateBranch appends a Branch(cond, trueTarget, falseTarget) node. Targets
// are Label node IDs and may be the sentinel 0 pending backpatching.
func (b *Builder) CreateBranch(cond, trueTarget, falseTarget uint32) uint32 {
	return b.append(Node{Op: Branch, Inputs: []uint32{cond, trueTarget, falseTarget}})
}

// CreateJump appends a Jump(target) node. target may be the sentinel 0
// pending backpatching.
func (b *Builder) CreateJump(target uint32) uint32 {
	return b.append(Node{Op: Jump, Inputs: []uint32{target}})
}

// CreateLabel appends a Label node with no inputs.
func (b *Builder) CreateLabel() uint32 {
	return b.append(Node{Op: Label})
}

// PatchJumpTarget rewrites the single input of a Jump node in place, for
// forward-jump backpatching (SPEC §4.4.6).
func (b *Builder) PatchJumpTarget(jumpID, target uint32) {
	b.Graph.Nodes[jumpID].Inputs[0] = target
}

// PatchBranchTargets rewrites the true/false targets of a Branch node.
func (b *Builder) PatchBranchTargets(branchID, trueTarget, falseTarget uint32) {
	n := &b.Graph.Nodes[branchID]
	n.Inputs[1] = trueTarget
	n.Inputs[2] = falseTarget
}

// CreatePhi appends a Phi node with the given incoming value IDs, in
// predecessor order.
func (b *Builder) CreatePhi(incoming ...uint32) uint32 {
	return b.append(Node{Op: Phi, Inputs: append([]uint32(nil), incoming...)})
}

// AppendPhiIncoming appends one more incoming value to an existing Phi
// node, used when the second operand (the loop latch value) is only known
// after the latch block is materialised (SPEC §4.4.6 "for" lowering).
func (b *Builder) AppendPhiIncoming(phiID, value uint32) {
	n := &b.Graph.Nodes[phiID]
	n.Inputs = append(n.Inputs, value)
}

// CreateIndex appends an Index(arr, i) address-producing node.
func (b *Builder) CreateIndex(arr, i uint32) uint32 {
	return b.append(Node{Op: Index, Inputs: []uint32{arr, i}})
}

// CreateSlice appends a Slice(arr, start, end) node; inclusive controls
// data.integer per SPEC §4.4.4.
func (b *Builder) CreateSlice(arr, start, end uint32, inclusive bool) uint32 {
	v := int64(0)
	if inclusive {
		v = 1
	}
	return b.append(Node{Op: Slice, Inputs: []uint32{arr, start, end}, Data: Data{Kind: DataInt, Int: v}})
}

// CreateSliceIndex appends a SliceIndex(slice, i) value-producing node.
func (b *Builder) CreateSliceIndex(slice, i uint32) uint32 {
	return b.append(Node{Op: SliceIndex, Inputs: []uint32{slice, i}})
}

// CreateSliceLen appends a SliceLen(slice) node.
func (b *Builder) CreateSliceLen(slice uint32) uint32 {
	return b.append(Node{Op: SliceLen, Inputs: []uint32{slice}})
}

// CreateRange appends a Range(start, end) node with data.boolean =
// inclusive.
func (b *Builder) CreateRange(start, end uint32, inclusive bool) uint32 {
	return b.append(Node{Op: Range, Inputs: []uint32{start, end}, Data: Data{Kind: DataBool, Bool: inclusive}})
}

// CreateArrayConstruct appends an ArrayConstruct node over elems, in order.
func (b *Builder) CreateArrayConstruct(elems ...uint32) uint32 {
	return b.append(Node{Op: ArrayConstruct, Inputs: append([]uint32(nil), elems...)})
}

// CreateStructConstruct appends a StructConstruct node with data.string set
// to the comma-joined field names, positionally matching values.
func (b *Builder) CreateStructConstruct(fieldNamesCSV string, values ...uint32) uint32 {
	return b.append(Node{Op: StructConstruct, Inputs: append([]uint32(nil), values...), Data: Data{Kind: DataString, Str: string([]byte(fieldNamesCSV))}})
}

// CreateFieldAccess appends a FieldAccess(structVal, fieldName) node.
func (b *Builder) CreateFieldAccess(structVal uint32, fieldName string) uint32 {
	return b.append(Node{Op: FieldAccess, Inputs: []uint32{structVal}, Data: Data{Kind: DataString, Str: string([]byte(fieldName))}})
}

// CreateFieldStore appends a FieldStore(structAddr, value) node whose
// data.string names the field; the address is input 0 per SPEC §4.4.4.4.
func (b *Builder) CreateFieldStore(structAddr, value uint32, fieldName string) uint32 {
	return b.append(Node{Op: FieldStore, Inputs: []uint32{structAddr, value}, Data: Data{Kind: DataString, Str: string([]byte(fieldName))}})
}

// ---- optionals ----

func (b *Builder) CreateOptionalNone() uint32 { return b.append(Node{Op: OptionalNone}) }
func (b *Builder) CreateOptionalSome(value uint32) uint32 {
	return b.append(Node{Op: OptionalSome, Inputs: []uint32{value}})
}
func (b *Builder) CreateOptionalUnwrap(opt uint32) uint32 {
	return b.append(Node{Op: OptionalUnwrap, Inputs: []uint32{opt}})
}
func (b *Builder) CreateOptionalIsSome(opt uint32) uint32 {
	return b.append(Node{Op: OptionalIsSome, Inputs: []uint32{opt}})
}

// ---- error unions ----

func (b *Builder) CreateErrorUnionConstruct(ok uint32) uint32 {
	return b.append(Node{Op: ErrorUnionConstruct, Inputs: []uint32{ok}})
}
func (b *Builder) CreateErrorFailConstruct(errVal uint32) uint32 {
	return b.append(Node{Op: ErrorFailConstruct, Inputs: []uint32{errVal}})
}
func (b *Builder) CreateErrorUnionIsError(eu uint32) uint32 {
	return b.append(Node{Op: ErrorUnionIsError, Inputs: []uint32{eu}})
}
func (b *Builder) CreateErrorUnionUnwrap(eu uint32) uint32 {
	return b.append(Node{Op: ErrorUnionUnwrap, Inputs: []uint32{eu}})
}
func (b *Builder) CreateErrorUnionGetError(eu uint32) uint32 {
	return b.append(Node{Op: ErrorUnionGetError, Inputs: []uint32{eu}})
}

// ---- tagged unions & closures (stubbed per SPEC_FULL.md §D.3) ----

func (b *Builder) CreateUnionConstruct(tag int64, payload uint32) uint32 {
	return b.append(Node{Op: UnionConstruct, Inputs: []uint32{payload}, Data: Data{Kind: DataInt, Int: tag}})
}
func (b *Builder) CreateUnionTagCheck(u uint32, tag int64) uint32 {
	return b.append(Node{Op: UnionTagCheck, Inputs: []uint32{u}, Data: Data{Kind: DataInt, Int: tag}})
}
func (b *Builder) CreateUnionPayloadExtract(u uint32) uint32 {
	return b.append(Node{Op: UnionPayloadExtract, Inputs: []uint32{u}})
}
func (b *Builder) CreateFnRef(name string) uint32 {
	return b.append(Node{Op: FnRef, Data: Data{Kind: DataString, Str: string([]byte(name))}})
}
func (b *Builder) CreateClosureCreate(fn uint32, env ...uint32) uint32 {
	return b.append(Node{Op: ClosureCreate, Inputs: append([]uint32{fn}, env...)})
}
func (b *Builder) CreateClosureCall(closure uint32, args ...uint32) uint32 {
	return b.append(Node{Op: ClosureCall, Inputs: append([]uint32{closure}, args...)})
}

// ---- tensor ----

func (b *Builder) CreateTensorOp(op Opcode, meta *TensorMetadata, inputs ...uint32) uint32 {
	id := b.append(Node{Op: op, Inputs: append([]uint32(nil), inputs...)})
	b.Graph.Nodes[id].Tensor = meta
	return id
}

// ---- quantum ----

func (b *Builder) CreateQuantumGate(meta *QuantumMetadata, inputs ...uint32) uint32 {
	id := b.append(Node{Op: QuantumGate, Inputs: append([]uint32(nil), inputs...)})
	b.Graph.Nodes[id].Quantum = meta
	return id
}

func (b *Builder) CreateQuantumMeasure(meta *QuantumMetadata, qubitValues ...uint32) uint32 {
	id := b.append(Node{Op: QuantumMeasure, Inputs: append([]uint32(nil), qubitValues...)})
	b.Graph.Nodes[id].Quantum = meta
	return id
}

// ---- concurrency ----

func (b *Builder) CreateAwait(target uint32) uint32 {
	return b.append(Node{Op: Await, Inputs: []uint32{target}})
}
func (b *Builder) CreateSpawn(fnRef uint32, args ...uint32) uint32 {
	return b.append(Node{Op: Spawn, Inputs: append([]uint32{fnRef}, args...)})
}
func (b *Builder) CreateNurseryBegin() uint32 { return b.append(Node{Op: NurseryBegin}) }
func (b *Builder) CreateNurseryEnd(nursery uint32) uint32 {
	return b.append(Node{Op: NurseryEnd, Inputs: []uint32{nursery}})
}
func (b *Builder) CreateAsyncCall(name string, args ...uint32) uint32 {
	return b.append(Node{Op: AsyncCall, Inputs: append([]uint32(nil), args...), Data: Data{Kind: DataString, Str: string([]byte(name))}})
}

// ---- dispatch ----

func (b *Builder) CreateTraitMethodCall(vtable, method uint32, args ...uint32) uint32 {
	return b.append(Node{Op: TraitMethodCall, Inputs: append([]uint32{vtable, method}, args...)})
}
