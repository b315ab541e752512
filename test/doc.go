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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions report a failure with t.Errorf() and allow the test
// to continue. The Demand*() functions report with t.Fatalf() and stop the
// test immediately. Both families accept optional tags which are prefixed to
// any failure message, useful when the test is in a loop.
//
// The nil type is considered a success value. ExpectFailure(t, nil) fails and
// ExpectSuccess(t, nil) succeeds. This follows from how errors usually work in
// Go, nil indicating the absence of an error.
//
// The writer types implement io.Writer and should be used to capture output.
// CompareWriter collects everything, RingWriter keeps the most recent bytes
// and CappedWriter keeps the earliest bytes.
package test
