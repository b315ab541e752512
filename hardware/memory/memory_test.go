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

package memory_test

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/test"
)

func transport(t *memory.Target, cmd bus.Command, address uint32, data []byte) (bus.Status, sim.Time) {
	tr := bus.Transaction{Address: address, Data: data, Command: cmd}
	d := t.Transport(&tr)
	return tr.Status, d
}

func TestReadWrite(t *testing.T) {
	m := memory.NewTarget("ram", 0x100, 0x1ff, memory.WithDelay(5*sim.Nanosecond))
	test.ExpectEquality(t, m.Size(), 0x100)

	var reads, writes int
	m.ReadEvent().Subscribe(func() { reads++ })
	m.WriteEvent().Subscribe(func() { writes++ })

	st, d := transport(m, bus.Write, 0x10, []byte{1, 2, 3, 4})
	test.ExpectEquality(t, st, bus.OK)
	test.ExpectEquality(t, d, 5*sim.Nanosecond)

	b := make([]byte, 4)
	st, _ = transport(m, bus.Read, 0x10, b)
	test.ExpectEquality(t, st, bus.OK)
	test.ExpectSuccess(t, bytes.Equal(b, []byte{1, 2, 3, 4}))

	test.ExpectEquality(t, reads, 1)
	test.ExpectEquality(t, writes, 1)

	// debug access does not notify
	tr := bus.Transaction{Address: 0x10, Data: make([]byte, 2), Command: bus.Read}
	test.ExpectEquality(t, m.TransportDebug(&tr), 2)
	test.ExpectEquality(t, reads, 1)

	// out of range
	st, _ = transport(m, bus.Read, 0xfe, make([]byte, 4))
	test.ExpectEquality(t, st, bus.AddressError)

	// debug access is truncated at the end of the store
	tr = bus.Transaction{Address: 0xfe, Data: make([]byte, 4), Command: bus.Read}
	test.ExpectEquality(t, m.TransportDebug(&tr), 2)
}

func TestPower(t *testing.T) {
	power := sim.NewWire("power", false)
	m := memory.NewTarget("fram", 0, 0xff, memory.WithPower(power))

	st, _ := transport(m, bus.Write, 0, []byte{0xaa})
	test.ExpectEquality(t, st, bus.PowerError)

	// debug access bypasses the power gate
	tr := bus.Transaction{Address: 0, Data: []byte{0xbb}, Command: bus.Write}
	test.ExpectEquality(t, m.TransportDebug(&tr), 1)

	power.Write(true)
	b := make([]byte, 1)
	st, _ = transport(m, bus.Read, 0, b)
	test.ExpectEquality(t, st, bus.OK)
	test.ExpectEquality(t, b[0], uint8(0xbb))

	// non-volatile contents survive a power cycle
	power.Write(false)
	power.Write(true)
	test.ExpectEquality(t, m.Peek(0, 1)[0], uint8(0xbb))
}

func TestVolatile(t *testing.T) {
	power := sim.NewWire("power", true)
	m := memory.NewTarget("sram", 0, 0xff, memory.WithPower(power), memory.Volatile())

	test.ExpectSuccess(t, m.Poke(0x20, []byte{1, 2}))
	power.Write(false)
	test.ExpectSuccess(t, bytes.Equal(m.Peek(0x20, 2), []byte{0, 0}))

	test.ExpectSuccess(t, m.Poke(0x20, []byte{1, 2}))
	m.Reset()
	test.ExpectSuccess(t, bytes.Equal(m.Peek(0x20, 2), []byte{0, 0}))

	test.ExpectFailure(t, m.Poke(0xff, []byte{1, 2}))
	test.ExpectEquality(t, len(m.Peek(0xff, 2)), 0)
}

// counter is a peripheral register that counts reads and rejects writes of
// zero.
type counter struct {
	m     *memory.Target
	count uint16
	last  []byte
}

func (c *counter) BeforeRead(offset uint32, length int) bus.Status {
	c.count++
	c.m.SetRegister16(0, c.count)
	return bus.OK
}

func (c *counter) AfterWrite(offset uint32, data []byte) bus.Status {
	c.last = data
	if data[0] == 0 {
		return bus.GenericError
	}
	return bus.OK
}

func TestHooks(t *testing.T) {
	c := &counter{}
	c.m = memory.NewTarget("counter", 0, 3, memory.WithHooks(c))

	b := make([]byte, 2)
	transport(c.m, bus.Read, 0, b)
	test.ExpectEquality(t, binary.LittleEndian.Uint16(b), uint16(1))
	transport(c.m, bus.Read, 0, b)
	test.ExpectEquality(t, binary.LittleEndian.Uint16(b), uint16(2))

	st, _ := transport(c.m, bus.Write, 2, []byte{0x5})
	test.ExpectEquality(t, st, bus.OK)
	test.ExpectEquality(t, c.last[0], uint8(5))

	st, _ = transport(c.m, bus.Write, 2, []byte{0x0})
	test.ExpectEquality(t, st, bus.GenericError)

	// hooks are not called for debug access
	tr := bus.Transaction{Address: 0, Data: b, Command: bus.Read}
	c.m.TransportDebug(&tr)
	test.ExpectEquality(t, c.count, uint16(2))
}

func TestRegisters(t *testing.T) {
	m := memory.NewTarget("regs", 0, 7)
	m.SetRegister16(0, 0x1234)
	m.SetRegister32(4, 0xdeadbeef)
	test.ExpectEquality(t, m.Register16(0), uint16(0x1234))
	test.ExpectEquality(t, m.Register32(4), uint32(0xdeadbeef))
	test.ExpectEquality(t, m.Peek(0, 1)[0], uint8(0x34))
	test.ExpectEquality(t, m.Register32(6), uint32(0))
}

func newInitiator(t *testing.T, targets ...bus.Target) *bus.Initiator {
	t.Helper()
	r, err := bus.NewRouter(0, targets...)
	test.DemandSuccess(t, err)
	return bus.NewInitiator("loader", sim.NewKernel(), r)
}

func TestLoadImage(t *testing.T) {
	m := memory.NewTarget("rom", 0x4000, 0x40ff)
	in := newInitiator(t, m)

	test.ExpectSuccess(t, memory.LoadImage(in, 0x4010, []byte{0xde, 0xad}))
	test.ExpectEquality(t, m.Register16(0x10), uint16(0xadde))

	test.ExpectFailure(t, memory.LoadImage(in, 0x40fe, []byte{1, 2, 3}))
	test.ExpectFailure(t, memory.LoadImage(in, 0x8000, []byte{1}))

	// images continue into the next target
	lo := memory.NewTarget("lo", 0x1000, 0x10ff)
	hi := memory.NewTarget("hi", 0x1100, 0x11ff)
	in = newInitiator(t, lo, hi)
	test.ExpectSuccess(t, memory.LoadImage(in, 0x10ff, []byte{1, 2, 3}))
	test.ExpectEquality(t, lo.Peek(0xff, 1)[0], uint8(1))
	test.ExpectEquality(t, hi.Register16(0), uint16(0x0302))
}

func TestLoadELF(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}

	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	hdr := elf.Header32{
		Ident:     ident,
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_ARM),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     0x101,
		Phoff:     52,
		Ehsize:    52,
		Phentsize: 32,
		Phnum:     1,
	}
	prog := elf.Prog32{
		Type:   uint32(elf.PT_LOAD),
		Off:    84,
		Vaddr:  0x100,
		Paddr:  0x100,
		Filesz: uint32(len(payload)),
		Memsz:  uint32(len(payload)),
		Flags:  uint32(elf.PF_R | elf.PF_X),
	}

	var f bytes.Buffer
	test.DemandSuccess(t, binary.Write(&f, binary.LittleEndian, hdr))
	test.DemandSuccess(t, binary.Write(&f, binary.LittleEndian, prog))
	f.Write(payload)

	m := memory.NewTarget("rom", 0, 0x1ff)
	in := newInitiator(t, m)

	entry, err := memory.LoadELF(in, bytes.NewReader(f.Bytes()))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, entry, uint32(0x101))
	test.ExpectEquality(t, m.Register32(0x100), uint32(0x04030201))

	_, err = memory.LoadELF(in, bytes.NewReader([]byte("not an elf file")))
	test.ExpectFailure(t, err)
}
