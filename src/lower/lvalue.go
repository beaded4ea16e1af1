package lower

import "github.com/janus-lang/janus-sub005/src/astsnap"

// LValueKind classifies the shape an L-value lowers to (SPEC §4.4.4.4): a
// plain address to Store into, or a struct-field target requiring
// Field_Store's (struct_addr, field_name) pair instead of a generic Store.
type LValueKind int

const (
	LVAddress LValueKind = iota
	LVField
)

// LValue is the result of lowerLValue.
type LValue struct {
	Kind       LValueKind
	AddrID     uint32 // meaningful when Kind == LVAddress
	StructAddr uint32 // meaningful when Kind == LVField
	FieldName  string // meaningful when Kind == LVField
}

// lowerLValue lowers ast as an address-producing L-value (SPEC §4.4.4.4).
func (c *Context) lowerLValue(astID int, warn func(string)) (LValue, error) {
	n := c.node(astID)
	switch n.Kind {
	case astsnap.KindIdentifier:
		name := c.identifierName(astID)
		id, ok := c.Lookup(name)
		if !ok {
			return LValue{}, errf("undefined variable %q used as an l-value", name)
		}
		return LValue{Kind: LVAddress, AddrID: id}, nil

	case astsnap.KindIndexExpr:
		kids := c.children(astID)
		if len(kids) != 2 {
			return LValue{}, errf("index_expr l-value expects 2 children, got %d", len(kids))
		}
		arr, err := c.lowerExpression(kids[0], warn)
		if err != nil {
			return LValue{}, err
		}
		idx, err := c.lowerExpression(kids[1], warn)
		if err != nil {
			return LValue{}, err
		}
		return LValue{Kind: LVAddress, AddrID: c.Builder.CreateIndex(arr, idx)}, nil

	case astsnap.KindFieldExpr:
		kids := c.children(astID)
		if len(kids) != 2 {
			return LValue{}, errf("field_expr l-value expects 2 children, got %d", len(kids))
		}
		structAddr, err := c.lowerLValueAddress(kids[0], warn)
		if err != nil {
			return LValue{}, err
		}
		field := c.identifierName(kids[1])
		return LValue{Kind: LVField, StructAddr: structAddr, FieldName: field}, nil

	default:
		return LValue{}, errf("AST kind %v is not a valid l-value", n.Kind)
	}
}

// lowerLValueAddress is a convenience wrapper returning only the address
// id, collapsing LVField into its StructAddr (used when a struct l-value
// is itself the base of a further field/index access).
func (c *Context) lowerLValueAddress(astID int, warn func(string)) (uint32, error) {
	lv, err := c.lowerLValue(astID, warn)
	if err != nil {
		return 0, err
	}
	if lv.Kind == LVField {
		return lv.StructAddr, nil
	}
	return lv.AddrID, nil
}

// storeLValue emits the appropriate store instruction for lv.
func (c *Context) storeLValue(lv LValue, value uint32) {
	if lv.Kind == LVField {
		c.Builder.CreateFieldStore(lv.StructAddr, value, lv.FieldName)
		return
	}
	c.Builder.BuildStore(value, lv.AddrID)
}
