package backend

import (
	"fmt"
	"regexp"

	"github.com/udonc/udonc/internal/tac"
	"github.com/udonc/udonc/internal/udontype"
)

// temporaryBucket and externBucket are the two reserved heap-budget
// buckets spec.md §4.5 names alongside per-class buckets.
const (
	temporaryBucket = "<temporary>"
	externBucket    = "<extern>"
)

// inlineInstanceName recognizes the `__inst_<Class>_<N>` prefix
// internal/lower assigns a helper-class instance (and the
// `__inst_<Class>_<N>_<field>` names its fields get), so the backend
// can charge the instance's own class rather than the entry class that
// happens to hold it (spec.md §4.5: "Inline instances... are charged to
// Foo"). Ambiguous only when a field name itself ends in `_<digits>`,
// in which case the rightmost run is taken as the counter; a
// mis-attribution here only skews the diagnostic heap-budget tree, never
// the compiled program's behavior.
var inlineInstanceName = regexp.MustCompile(`^__inst_(.+)_\d+(?:_.*)?$`)

// heap assigns every name the backend needs a heap slot to one
// deterministic address, in the order names are first encountered
// (spec.md §4.5, "a monotonic nextAddress is bumped as new names are
// encountered"). Every distinct name becomes one `.data_start` row
// (spec.md §6); only constants, interned extern signatures, interned
// literal strings and the reflection entries carry a literal Value;
// locals/parameters/temporaries are zero-initialized
// storage the VM allocates space for but this backend never seeds.
type heap struct {
	nextAddress int
	entryClass  string

	seen         map[string]bool // every name already allocated a slot
	constNames   map[string]string
	externNames  map[string]string
	literalNames map[string]string
	nextExtern   int
	nextLiteral  int

	data   []DataEntry
	budget map[string]int
}

func newHeap(entryClass string) *heap {
	return &heap{
		entryClass:   entryClass,
		seen:         make(map[string]bool),
		constNames:   make(map[string]string),
		externNames:  make(map[string]string),
		literalNames: make(map[string]string),
		budget:       make(map[string]int),
	}
}

// nameForVariable returns the heap slot name for a local, parameter, or
// field variable, rewriting the reserved receiver name per spec.md §3.
func (h *heap) nameForVariable(v *tac.Variable) string {
	name := v.Name
	if name == "this" {
		name = "__this"
	}
	h.allocate(name, udontype.UdonTypeName(v.Typ), "", h.classFor(name))
	return name
}

// classFor attributes a variable's heap-budget bucket: an inlined
// instance (and its fields) charge the instance's own class, and
// everything else — __this, bare fields, locals, parameters — charges
// the entry class being compiled.
func (h *heap) classFor(name string) string {
	if m := inlineInstanceName.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return h.entryClass
}

func (h *heap) nameForTemporary(t *tac.Temporary) string {
	name := fmt.Sprintf("__t%d", t.ID)
	h.allocate(name, udontype.UdonTypeName(t.Typ), "", temporaryBucket)
	return name
}

// nameForConstant interns a constant by its structural key (spec.md
// §3), returning the existing slot name on a repeat and allocating a
// fresh `__const_<addr>_System<Type>` slot the first time a given
// (type, value) pair is seen.
func (h *heap) nameForConstant(c *tac.Constant) string {
	key := c.Key()
	if name, ok := h.constNames[key]; ok {
		return name
	}
	typeName := udontype.UdonTypeName(c.Typ)
	name := fmt.Sprintf("__const_%d_%s", h.nextAddress, typeName)
	h.constNames[key] = name
	h.allocate(name, typeName, c.Value, temporaryBucket)
	return name
}

// nameForExtern interns an extern signature string into an
// `__extern_<n>` data-section slot, deduplicated by the signature text
// itself so two call sites resolving to the same symbol share one slot.
func (h *heap) nameForExtern(signature string) string {
	if name, ok := h.externNames[signature]; ok {
		return name
	}
	name := fmt.Sprintf("__extern_%d", h.nextExtern)
	h.nextExtern++
	h.externNames[signature] = name
	h.allocate(name, "SystemString", signature, externBucket)
	return name
}

// nameForLiteralString interns an arbitrary compile-time string value —
// a SetProgramVariable/SendCustomEvent/GetProgramVariable argument name,
// say — as its own `.data_start` row, deduplicated by value the same
// way constants are, but kept in its own namespace since it has no
// surface-language constant expression behind it.
func (h *heap) nameForLiteralString(value string) string {
	if name, ok := h.literalNames[value]; ok {
		return name
	}
	name := fmt.Sprintf("__str_%d", h.nextLiteral)
	h.nextLiteral++
	h.literalNames[value] = name
	h.allocate(name, "SystemString", value, temporaryBucket)
	return name
}

// nameForSynthetic allocates a fresh, uniquely numbered heap slot for a
// value the backend itself introduces mid-lowering (a cast chain's
// intermediate, say) that has no counterpart TAC operand of its own.
func (h *heap) nameForSynthetic(prefix string) string {
	name := fmt.Sprintf("__%s_%d", prefix, h.nextAddress)
	h.allocate(name, "SystemObject", "", temporaryBucket)
	return name
}

// nameForReturnSlot allocates (or reuses) the dedicated return-value
// variable a Return instruction writes through before jumping to the
// reserved return address. It always charges the entry class: the slot
// belongs to whichever export surface the layout builder assigned it to.
func (h *heap) nameForReturnSlot(name string, typ *udontype.Type) string {
	h.allocate(name, udontype.UdonTypeName(typ), "", h.entryClass)
	return name
}

func (h *heap) allocate(name, typeName, value, class string) {
	if h.seen[name] {
		return
	}
	h.seen[name] = true
	h.data = append(h.data, DataEntry{Name: name, Type: typeName, Value: value})
	h.nextAddress++
	h.budget[class]++
}

// totalSlots is the left side of the heap-budget conservation invariant
// (spec.md §8): the sum of every class's, and every reserved bucket's,
// charged slot count.
func (h *heap) totalSlots() int {
	total := 0
	for _, n := range h.budget {
		total += n
	}
	return total
}
