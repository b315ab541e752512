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

//go:build !release

package paths_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fusedsim/fused/paths"
	"github.com/fusedsim/fused/test"
)

func TestResourcePath(t *testing.T) {
	t.Chdir(t.TempDir())

	pth, err := paths.ResourcePath("foo/bar", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".fused", "foo", "bar", "baz"))

	_, err = os.Stat(filepath.Join(".fused", "foo", "bar"))
	test.ExpectSuccess(t, err)

	pth, err = paths.ResourcePath("", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".fused", "baz"))

	pth, err = paths.ResourcePath("", "")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".fused")
}

func TestUniqueFilename(t *testing.T) {
	fn := paths.UniqueFilename("wav", "msp430")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "wav_msp430_"))

	fn = paths.UniqueFilename("profile", " ")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "profile_"))
	test.ExpectEquality(t, strings.Count(fn, "_"), 2)
}
