// Package bytecode holds the intermediate representation produced by the
// compiler and consumed by the optimizer, linker and VM.
//
// # Key Types
//
//   - [Operand]: a compile-time reference to a register, variable slot,
//     literal, or null
//   - [Instruction]: an opcode plus up to three operands and the extra
//     fields used by labels, branches and scope management
//   - [Program]: the ordered, mutable instruction list
//
// # Lifecycle
//
// A Program moves through three states:
//
//	Building -> Optimized -> Ready
//	Building -----------------^
//
// Instructions may only be appended, patched or removed while Building or
// by the optimizer. Once Ready, labels are gone and every branch field holds
// an absolute instruction index. Marking a Ready program Ready again is a
// no-op.
package bytecode
