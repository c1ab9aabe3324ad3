package optimize

import "minic/ir"

type instrSet map[*ir.Instr]struct{}

func newSet(items ...*ir.Instr) instrSet {
	s := make(instrSet, len(items))
	for _, i := range items {
		s[i] = struct{}{}
	}
	return s
}

func (s instrSet) clone() instrSet {
	out := make(instrSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s instrSet) add(i *ir.Instr)    { s[i] = struct{}{} }
func (s instrSet) remove(i *ir.Instr) { delete(s, i) }
func (s instrSet) has(i *ir.Instr) bool {
	_, ok := s[i]
	return ok
}

func (s instrSet) union(other instrSet) instrSet {
	out := s.clone()
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

func (s instrSet) minus(other instrSet) instrSet {
	out := make(instrSet, len(s))
	for k := range s {
		if !other.has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s instrSet) intersect(other instrSet) instrSet {
	out := instrSet{}
	for k := range s {
		if other.has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// equal is order-independent, as required for fixpoint detection over a
// set-valued lattice.
func (s instrSet) equal(other instrSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.has(k) {
			return false
		}
	}
	return true
}

// storeMap maps each allocate-slot (the pointer value) to every store
// instruction anywhere in the function that writes through it.
func buildStoreMap(fn *ir.Function) map[*ir.Instr][]*ir.Instr {
	m := map[*ir.Instr][]*ir.Instr{}
	for _, in := range fn.AllInstrs() {
		if in.Op != ir.Store {
			continue
		}
		ptr := in.Operands[1]
		if ptr.Kind != ir.OperandInstr {
			continue
		}
		m[ptr.Instr] = append(m[ptr.Instr], in)
	}
	return m
}

func buildGenKill(fn *ir.Function, storeMap map[*ir.Instr][]*ir.Instr) (gen, kill map[*ir.BasicBlock]instrSet) {
	gen = map[*ir.BasicBlock]instrSet{}
	kill = map[*ir.BasicBlock]instrSet{}
	for _, b := range fn.Blocks {
		g := instrSet{}
		k := instrSet{}
		lastForPtr := map[*ir.Instr]*ir.Instr{}
		for _, in := range b.Instrs {
			if in.Op != ir.Store {
				continue
			}
			ptr := in.Operands[1]
			if ptr.Kind != ir.OperandInstr {
				continue
			}
			if prev, ok := lastForPtr[ptr.Instr]; ok {
				g.remove(prev)
			}
			g.add(in)
			lastForPtr[ptr.Instr] = in
			for _, other := range storeMap[ptr.Instr] {
				if other != in {
					k.add(other)
				}
			}
		}
		k = k.minus(g)
		gen[b] = g
		kill[b] = k
	}
	return gen, kill
}

func computePreds(fn *ir.Function) map[*ir.BasicBlock][]*ir.BasicBlock {
	preds := map[*ir.BasicBlock][]*ir.BasicBlock{}
	for _, b := range fn.Blocks {
		for _, succ := range b.Successors() {
			preds[succ] = append(preds[succ], b)
		}
	}
	return preds
}

// solveReachingStores runs the GEN/KILL IN/OUT fixpoint described for
// constant propagation and returns IN[B] for every block.
func solveReachingStores(fn *ir.Function) map[*ir.BasicBlock]instrSet {
	storeMap := buildStoreMap(fn)
	gen, kill := buildGenKill(fn, storeMap)
	preds := computePreds(fn)

	in := map[*ir.BasicBlock]instrSet{}
	out := map[*ir.BasicBlock]instrSet{}
	for _, b := range fn.Blocks {
		in[b] = instrSet{}
		out[b] = gen[b].clone()
	}

	for {
		changed := false
		for _, b := range fn.Blocks {
			newIn := instrSet{}
			for _, p := range preds[b] {
				newIn = newIn.union(out[p])
			}
			if !newIn.equal(in[b]) {
				in[b] = newIn
				changed = true
			}
			newOut := newIn.minus(kill[b]).union(gen[b])
			if !newOut.equal(out[b]) {
				out[b] = newOut
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return in
}

// constPropFunc replaces every load proven to read a single reaching
// constant. Returns whether any load was replaced.
func constPropFunc(fn *ir.Function) bool {
	storeMap := buildStoreMap(fn)
	inSets := solveReachingStores(fn)
	changed := false

	for _, b := range fn.Blocks {
		r := inSets[b].clone()
		var dead []*ir.Instr
		for _, in := range b.Instrs {
			switch in.Op {
			case ir.Store:
				ptr := in.Operands[1]
				if ptr.Kind != ir.OperandInstr {
					continue
				}
				for _, s := range storeMap[ptr.Instr] {
					r.remove(s)
				}
				r.add(in)
			case ir.Load:
				ptr := in.Operands[0]
				if ptr.Kind != ir.OperandInstr {
					continue
				}
				c := r.intersect(newSet(storeMap[ptr.Instr]...))
				if len(c) == 0 {
					continue
				}
				val, ok := sameConstant(c)
				if !ok {
					continue
				}
				in.ReplaceAllUsesWith(ir.ConstOperand(val))
				dead = append(dead, in)
				changed = true
			}
		}
		for _, in := range dead {
			in.EraseFromParent()
		}
	}
	return changed
}

// sameConstant reports whether every store in c writes the identical
// integer constant.
func sameConstant(c instrSet) (int32, bool) {
	var val int32
	first := true
	for s := range c {
		v := s.Operands[0]
		if !v.IsConst() {
			return 0, false
		}
		if first {
			val = v.Const
			first = false
			continue
		}
		if v.Const != val {
			return 0, false
		}
	}
	return val, true
}
