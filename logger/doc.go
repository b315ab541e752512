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

// Package logger is the central log repository for the simulator. Log entries
// are kept in a ring of fixed size and are collapsed when the same entry is
// logged several times in a row.
//
// The package level functions operate on the central logger. Independent
// loggers can be created with NewLogger(), which is useful for testing.
//
// Every call to Log() or Logf() takes a Permission argument. Packages that log
// frequently, such as the instruction trace in the CPU models, should pass a
// Permission that can be toggled at runtime. Everything else should use
// logger.Allow.
//
// When a TimeSource is attached with SetTimeSource(), each entry is stamped
// with the simulated time at which it was logged.
package logger
