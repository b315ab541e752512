// This file is part of Fused.
//
// Fused is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Fused is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Fused.  If not, see <https://www.gnu.org/licenses/>.

// Package curated is a helper package for the plain Go error type. Curated
// errors implement the error interface and are identified by the pattern they
// were created with rather than by their formatted message.
//
// Curated errors are created with the Errorf() function, which takes a
// formatting pattern and placeholder values in the same way as fmt.Errorf().
// Packages in the simulator export their patterns as string constants so that
// callers can check for specific failures:
//
//	const UnroutedAddress = "bus: address %#08x is not routed"
//
//	err := curated.Errorf(UnroutedAddress, addr)
//	if curated.Is(err, UnroutedAddress) {
//		...
//	}
//
// The Has() function checks whether the pattern occurs anywhere in the chain
// of curated errors:
//
//	e := curated.Errorf(UnroutedAddress, 0xffff)
//	f := curated.Errorf("msp430: %v", e)
//
//	curated.Has(f, UnroutedAddress) // true
//	curated.Is(f, UnroutedAddress)  // false
//
// IsAny() answers whether an error was created by Errorf() at all. Errors that
// are not curated are 'unexpected' and are normally fatal to the program.
//
// The Error() implementation normalises the message so that adjacent
// duplicate parts of the chain are only printed once. This means that each
// level of the simulator can wrap the error it receives with its own prefix
// without the final message becoming repetitive.
//
// Curated errors also take part in the standard library's errors.Is() and
// errors.As() functions. Any error placeholder value is returned by Unwrap().
package curated
