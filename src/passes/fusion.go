package passes

import "github.com/janus-lang/janus-sub005/src/qtjir"

// MatmulReluFusion rewrites the pattern Tensor_Relu(Tensor_Matmul(A,B)),
// with both nodes on NPU-tensor tenancy, into a single
// Tensor_FusedMatmulRelu(A,B) node. Tensor metadata is deep-copied so the
// fused node never aliases the Matmul node's shape buffer (SPEC §4.3).
type MatmulReluFusion struct{}

func (MatmulReluFusion) Name() string { return "matmul-relu-fusion" }

func (MatmulReluFusion) Run(g *qtjir.Graph) bool {
	changed := false
	for i := range g.Nodes {
		relu := &g.Nodes[i]
		if relu.Op != qtjir.TensorRelu || relu.Tenancy != qtjir.NPUTensor {
			continue
		}
		if len(relu.Inputs) != 1 {
			continue
		}
		matmul := g.Node(relu.Inputs[0])
		if matmul.Op != qtjir.TensorMatmul || matmul.Tenancy != qtjir.NPUTensor {
			continue
		}
		if len(matmul.Inputs) != 2 {
			continue
		}
		a, b := matmul.Inputs[0], matmul.Inputs[1]
		relu.Op = qtjir.TensorFusedMatmulRelu
		relu.Inputs = []uint32{a, b}
		if relu.Tensor == nil {
			relu.Tensor = matmul.Tensor.Clone()
		}
		changed = true
	}
	return changed
}
