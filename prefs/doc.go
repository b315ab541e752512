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

// Package prefs facilitates the storage of simulator preferences. Preference
// values are typed (Bool, Int, Float, String, Duration) and can be bound to a
// key in a Disk instance, which loads and saves them to a plain text file.
//
// The file format is one preference per line, with the key and value separated
// by the " :: " string. Lines that are not recognised by a Disk instance are
// preserved when the file is saved, so that several Disk instances can share
// the same file.
//
// Values can be overridden from the command line by pushing a group of
// key/value pairs with PushCommandLineStack(). Overrides are consumed the next
// time the key is loaded by a Disk instance and are never saved to the file.
package prefs
