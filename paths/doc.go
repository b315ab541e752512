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

// Package paths contains functions to prepare paths to simulator resources,
// such as the preferences file.
//
// The ResourcePath() function prepends the supplied resource path with the
// config directory. For example, the following returns the path to the
// preferences file:
//
//	pth, err := paths.ResourcePath("", "preferences")
//
// In development builds the config directory is ".fused" in the current
// working directory. In release builds (built with the release tag) the
// directory is "fused" in the directory returned by os.UserConfigDir().
//
// Directories are created as required.
package paths
