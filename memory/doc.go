// Package memory implements the memory-mapped bus of an emulated machine.
//
// Each device declares one or more address spaces (program, data, I/O,
// opcodes). An address space resolves byte, word, dword and qword accesses
// to RAM, ROM, switchable banks or handler callbacks through dispatch tables
// indexed by native-width cell. Accesses narrower, wider or misaligned with
// respect to the native bus width are split into native accesses with
// byte-enable masks, for any data width, endianness and address shift.
//
// The Manager owns regions, shares, banks and backing blocks, and boots the
// spaces of every device: allocate engines, populate address maps, allocate
// and locate backing memory.
//
// Contract violations (malformed install ranges, unsupported widths,
// duplicate region names) panic with a *FatalError. Manager.Initialize
// converts such a panic into a returned error.
package memory
