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

// Package hardware is the base package for the microcontroller simulation.
// Its sub-packages contain everything required for a headless simulation.
//
// The sim package is the discrete event kernel that every other component
// advances against. The bus package models timed transactions between an
// initiator and the targets wired to a router. Memory, peripherals and the
// interrupt arbiter are bus targets or interrupt sources. The core package
// runs an instruction set model from the cpu package and provides the
// run-control and debug surface.
//
// The mcu package wires all of this together into a Board, which is the
// normal entry point.
package hardware
