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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fusedsim/fused/prefs"
	"github.com/fusedsim/fused/test"
)

func tmpPrefsFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "fused_prefs_test")
}

func cmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)
	test.ExpectEquality(t, string(data), expected)
}

func TestBool(t *testing.T) {
	fn := tmpPrefsFile(t)
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v, w, x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))
	test.ExpectSuccess(t, dsk.Add("testC", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("TRUE"))
	test.ExpectFailure(t, x.Set(10))

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "test :: true\ntestB :: false\ntestC :: true\n")

	// AllowLogging() follows the value
	test.ExpectSuccess(t, v.AllowLogging())
	test.ExpectFailure(t, w.AllowLogging())
}

func TestInt(t *testing.T) {
	fn := tmpPrefsFile(t)
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v, w prefs.Int
	test.ExpectSuccess(t, dsk.Add("number", &v))
	test.ExpectSuccess(t, dsk.Add("numberB", &w))

	test.ExpectSuccess(t, v.Set(10))
	test.ExpectSuccess(t, w.Set("0x63"))

	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "number :: 10\nnumberB :: 99\n")

	test.ExpectFailure(t, v.Set("---"))
	test.ExpectFailure(t, v.Set(1.0))
	test.ExpectEquality(t, v.Get().(int), 10)
}

func TestString(t *testing.T) {
	fn := tmpPrefsFile(t)
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.String
	test.ExpectSuccess(t, dsk.Add("foo", &v))
	test.ExpectSuccess(t, v.Set("bar"))
	test.DemandSuccess(t, dsk.Save())
	cmpFile(t, fn, "foo :: bar\n")

	v.SetMaxLen(2)
	test.ExpectEquality(t, v.String(), "ba")
}

func TestDuration(t *testing.T) {
	var v prefs.Duration
	test.ExpectSuccess(t, v.Set("125ns"))
	test.ExpectEquality(t, v.Get().(time.Duration), 125*time.Nanosecond)
	test.ExpectFailure(t, v.Set("-1s"))
	test.ExpectFailure(t, v.Set("foo"))
}

func TestLoad(t *testing.T) {
	fn := tmpPrefsFile(t)

	// save with one disk
	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)
	var a prefs.Int
	var b prefs.Float
	test.ExpectSuccess(t, dsk.Add("a", &a))
	test.ExpectSuccess(t, a.Set(5))
	test.DemandSuccess(t, dsk.Save())

	// a second disk sharing the file preserves the first disk's entries
	dsk2, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, dsk2.Add("b", &b))
	test.ExpectSuccess(t, b.Set(0.5))
	test.DemandSuccess(t, dsk2.Save())
	cmpFile(t, fn, "a :: 5\nb :: 0.5\n")

	// load into fresh values
	dsk3, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)
	var c prefs.Int
	test.ExpectSuccess(t, dsk3.Add("a", &c))
	test.DemandSuccess(t, dsk3.Load())
	test.ExpectEquality(t, c.Get().(int), 5)

	// missing file is not an error
	dsk4, err := prefs.NewDisk(filepath.Join(t.TempDir(), "missing"))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, dsk4.Load())
}

func TestHooks(t *testing.T) {
	var v prefs.Int
	var seen int
	v.SetHookPost(func(nv prefs.Value) error {
		seen = int(nv.(int64))
		return nil
	})
	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(int64) < 0 {
			return fmt.Errorf("negative")
		}
		return nil
	})

	test.ExpectSuccess(t, v.Set(3))
	test.ExpectEquality(t, seen, 3)
	test.ExpectFailure(t, v.Set(-1))
	test.ExpectEquality(t, v.Get().(int), 3)
}

func TestIllegalKeys(t *testing.T) {
	dsk, err := prefs.NewDisk(tmpPrefsFile(t))
	test.DemandSuccess(t, err)

	var v prefs.Bool
	test.ExpectFailure(t, dsk.Add("foo bar", &v))
	test.ExpectFailure(t, dsk.Add("foo::bar", &v))
	test.ExpectSuccess(t, dsk.Add("foo", &v))
	test.ExpectFailure(t, dsk.Add("foo", &v))
}
