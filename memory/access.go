package memory

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

func bytesOf[T constraints.Unsigned]() uint32 {
	return uint32(bits.Len64(uint64(^T(0)))) / 8
}

// readDirect reads a T wide value at address through native N wide
// accesses. An aligned read must not straddle native cells.
func readDirect[N, T constraints.Unsigned](e *engine[N], address uint32, mask T, aligned bool) T {
	nativeBytes := e.nativeBytes
	nativeBits := e.nativeBits
	targetBytes := bytesOf[T]()
	targetBits := uint(targetBytes * 8)

	// Same width and aligned: one native access.
	if nativeBytes == targetBytes && (aligned || address&e.nativeMask == 0) {
		return T(e.readNative(address&^e.nativeMask, N(mask)))
	}

	// Narrower, fitting in one native cell.
	if nativeBytes > targetBytes {
		lanes := nativeBytes - 1
		if aligned {
			lanes = nativeBytes - targetBytes
		}
		offsbits := uint(8 * (e.config.AddrToByte(address) & lanes))
		if aligned || offsbits+targetBits <= nativeBits {
			if e.big {
				offsbits = nativeBits - targetBits - offsbits
			}
			return T(e.readNative(address&^e.nativeMask, N(mask)<<offsbits) >> offsbits)
		}
	}

	offsbits := uint(8 * (e.config.AddrToByte(address) & (nativeBytes - 1)))
	address &^= e.nativeMask

	// Straddling two native cells.
	if nativeBytes >= targetBytes {
		if !e.big {
			var result T
			curmask := N(mask) << offsbits
			if curmask != 0 {
				result = T(e.readNative(address, curmask) >> offsbits)
			}

			offsbits = nativeBits - offsbits
			curmask = N(mask >> offsbits)
			if curmask != 0 {
				result |= T(e.readNative(address+e.nativeStep, curmask) << offsbits)
			}
			return result
		}

		justify := nativeBits - targetBits
		ljmask := N(mask) << justify

		var result N
		curmask := ljmask >> offsbits
		if curmask != 0 {
			result = e.readNative(address, curmask) << offsbits
		}

		offsbits = nativeBits - offsbits
		curmask = ljmask << offsbits
		if curmask != 0 {
			result |= e.readNative(address+e.nativeStep, curmask) >> offsbits
		}
		return T(result >> justify)
	}

	// Wider than native: one access per cell, plus one if unaligned.
	splits := targetBytes/nativeBytes - 1

	var result T
	if !e.big {
		curmask := N(mask << offsbits)
		if curmask != 0 {
			result = T(e.readNative(address, curmask) >> offsbits)
		}

		offsbits = nativeBits - offsbits
		for range splits {
			address += e.nativeStep
			curmask = N(mask >> offsbits)
			if curmask != 0 {
				result |= T(e.readNative(address, curmask)) << offsbits
			}
			offsbits += nativeBits
		}

		if !aligned && offsbits < targetBits {
			curmask = N(mask >> offsbits)
			if curmask != 0 {
				result |= T(e.readNative(address+e.nativeStep, curmask)) << offsbits
			}
		}
		return result
	}

	offsbits = targetBits - (nativeBits - offsbits)
	curmask := N(mask >> offsbits)
	if curmask != 0 {
		result = T(e.readNative(address, curmask)) << offsbits
	}

	for range splits {
		offsbits -= nativeBits
		address += e.nativeStep
		curmask = N(mask >> offsbits)
		if curmask != 0 {
			result |= T(e.readNative(address, curmask)) << offsbits
		}
	}

	if !aligned && offsbits != 0 {
		offsbits = nativeBits - offsbits
		curmask = N(mask << offsbits)
		if curmask != 0 {
			result |= T(e.readNative(address+e.nativeStep, curmask) >> offsbits)
		}
	}
	return result
}

// writeDirect writes a T wide value at address through native N wide
// accesses, leaving bits outside mask untouched.
func writeDirect[N, T constraints.Unsigned](e *engine[N], address uint32, data T, mask T, aligned bool) {
	nativeBytes := e.nativeBytes
	nativeBits := e.nativeBits
	targetBytes := bytesOf[T]()
	targetBits := uint(targetBytes * 8)

	if nativeBytes == targetBytes && (aligned || address&e.nativeMask == 0) {
		e.writeNative(address&^e.nativeMask, N(data), N(mask))
		return
	}

	if nativeBytes > targetBytes {
		lanes := nativeBytes - 1
		if aligned {
			lanes = nativeBytes - targetBytes
		}
		offsbits := uint(8 * (e.config.AddrToByte(address) & lanes))
		if aligned || offsbits+targetBits <= nativeBits {
			if e.big {
				offsbits = nativeBits - targetBits - offsbits
			}
			e.writeNative(address&^e.nativeMask, N(data)<<offsbits, N(mask)<<offsbits)
			return
		}
	}

	offsbits := uint(8 * (e.config.AddrToByte(address) & (nativeBytes - 1)))
	address &^= e.nativeMask

	if nativeBytes >= targetBytes {
		if !e.big {
			curmask := N(mask) << offsbits
			if curmask != 0 {
				e.writeNative(address, N(data)<<offsbits, curmask)
			}

			offsbits = nativeBits - offsbits
			curmask = N(mask >> offsbits)
			if curmask != 0 {
				e.writeNative(address+e.nativeStep, N(data>>offsbits), curmask)
			}
			return
		}

		justify := nativeBits - targetBits
		ljdata := N(data) << justify
		ljmask := N(mask) << justify

		curmask := ljmask >> offsbits
		if curmask != 0 {
			e.writeNative(address, ljdata>>offsbits, curmask)
		}

		offsbits = nativeBits - offsbits
		curmask = ljmask << offsbits
		if curmask != 0 {
			e.writeNative(address+e.nativeStep, ljdata<<offsbits, curmask)
		}
		return
	}

	splits := targetBytes/nativeBytes - 1

	if !e.big {
		curmask := N(mask << offsbits)
		if curmask != 0 {
			e.writeNative(address, N(data<<offsbits), curmask)
		}

		offsbits = nativeBits - offsbits
		for range splits {
			address += e.nativeStep
			curmask = N(mask >> offsbits)
			if curmask != 0 {
				e.writeNative(address, N(data>>offsbits), curmask)
			}
			offsbits += nativeBits
		}

		if !aligned && offsbits < targetBits {
			curmask = N(mask >> offsbits)
			if curmask != 0 {
				e.writeNative(address+e.nativeStep, N(data>>offsbits), curmask)
			}
		}
		return
	}

	offsbits = targetBits - (nativeBits - offsbits)
	curmask := N(mask >> offsbits)
	if curmask != 0 {
		e.writeNative(address, N(data>>offsbits), curmask)
	}

	for range splits {
		offsbits -= nativeBits
		address += e.nativeStep
		curmask = N(mask >> offsbits)
		if curmask != 0 {
			e.writeNative(address, N(data>>offsbits), curmask)
		}
	}

	if !aligned && offsbits != 0 {
		offsbits = nativeBits - offsbits
		curmask = N(mask << offsbits)
		if curmask != 0 {
			e.writeNative(address+e.nativeStep, N(data<<offsbits), curmask)
		}
	}
}
