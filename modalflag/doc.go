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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It handles program modes (and sub-modes) and allows different flags
// for each mode.
//
// Unlike flag.FlagSet, the argument list is given to NewArgs() and Parse() is
// called with no arguments:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "DEBUG", "SCRIPT")
//	trace := md.AddBool("trace", false, "log every instruction")
//	_, _ = md.Parse()
//
// A mode is a command line argument that selects a different mode of
// operation, each with its own flags and arguments. After Parse(), the Mode()
// function returns the selected mode, or the default mode (the first to be
// added) if the first argument after the flags is not a mode. Sub-mode
// comparisons are case insensitive.
//
// The flags of the selected mode are then parsed after a call to NewMode():
//
//	switch md.Mode() {
//	case "DEBUG":
//		md.NewMode()
//		romStart := md.AddAddress("rom", 0, "base address of the vector table")
//		switch r, err := md.Parse(); r {
//		case modalflag.ParseHelp:
//			return nil
//		case modalflag.ParseError:
//			return err
//		}
//		debug(*romStart, md.RemainingArgs())
//	}
//
// The Path() function returns every mode selected so far, for example
// "DEBUG/CONSOLE". A request for help with the -help flag prints the flags and
// sub-modes of the current mode, along with any text given to
// AdditionalHelp().
package modalflag
