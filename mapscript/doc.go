// Package mapscript loads machine memory maps written in Starlark.
//
// A script declares regions, devices with their address spaces, and the
// map entries of every space:
//
//	region("maincpu", 0x10000, fill=0xff)
//	port("DSW0", 0xff)
//
//	cpu = device("maincpu")
//	program = cpu.space(AS_PROGRAM, "program", "little", 8, 16, unmap=0xff)
//	program.ram(0x0000, 0x03ff, mirror=0x0c00)
//	program.rom(0x8000, 0xffff)
//	program.bank(0x4000, 0x5fff, "bank1", rw="read")
//	program.port(0x5100, 0x5100, read="DSW0")
//	program.handler(0x5200, 0x520f, read="latch", write="latch")
//
//	bank_entries("bank1", "maincpu", offset=0x4000, count=2, stride=0x2000)
//
// Named handlers resolve against a Registry of handler constructors.
package mapscript
