package chip8

// Operand fields of an instruction word.
func opX(op uint16) uint16    { return (op & 0x0F00) >> 8 }
func opY(op uint16) uint16    { return (op & 0x00F0) >> 4 }
func opN(op uint16) uint16    { return op & 0x000F }
func opNN(op uint16) byte     { return byte(op & 0x00FF) }
func opNNN(op uint16) uint16  { return op & 0x0FFF }
func opKind(op uint16) uint16 { return (op & 0xF000) >> 12 }

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

// execute applies one decoded instruction. VF is written last by every
// instruction that uses it as a flag, so the flag wins when X is F.
func (m *Machine) execute(op uint16) error {
	x, y, n := opX(op), opY(op), opN(op)
	nn, nnn := opNN(op), opNNN(op)

	switch opKind(op) {
	case 0x0:
		switch op {
		case 0x00E0:
			m.Display.clear()
			m.publishFrame()
		case 0x00EE:
			if len(m.Stack) == 0 {
				return ErrStackUnderflow
			}
			top := len(m.Stack) - 1
			m.PC = m.Stack[top]
			m.Stack = m.Stack[:top]
		default:
			return ErrUnknownOpcode
		}

	case 0x1:
		m.PC = nnn

	case 0x2:
		m.Stack = append(m.Stack, m.PC)
		m.PC = nnn

	case 0x3:
		m.skipIf(m.V[x] == nn)

	case 0x4:
		m.skipIf(m.V[x] != nn)

	case 0x5:
		if n != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.V[x] == m.V[y])

	case 0x6:
		m.V[x] = nn

	case 0x7:
		m.V[x] += nn

	case 0x8:
		return m.executeALU(x, y, n)

	case 0x9:
		if n != 0 {
			return ErrUnknownOpcode
		}
		m.skipIf(m.V[x] != m.V[y])

	case 0xA:
		m.I = nnn

	case 0xB:
		m.PC = nnn + uint16(m.V[0])

	case 0xC:
		m.V[x] = nn & byte(m.rng.Uint32())

	case 0xD:
		var sprite [15]byte
		rows := sprite[:n]
		for i := range rows {
			rows[i] = m.read(m.I + uint16(i))
		}
		collision := m.Display.drawSprite(m.V[x], m.V[y], rows)
		m.V[0xF] = boolByte(collision)
		m.publishFrame()

	case 0xE:
		switch nn {
		case 0x9E:
			m.skipIf(m.Keys.Pressed(m.V[x]))
		case 0xA1:
			m.skipIf(!m.Keys.Pressed(m.V[x]))
		default:
			return ErrUnknownOpcode
		}

	case 0xF:
		return m.executeMisc(x, nn)
	}
	return nil
}

// executeALU handles the 8XYN register-to-register group.
func (m *Machine) executeALU(x, y, n uint16) error {
	switch n {
	case 0x0:
		m.V[x] = m.V[y]
	case 0x1:
		m.V[x] |= m.V[y]
	case 0x2:
		m.V[x] &= m.V[y]
	case 0x3:
		m.V[x] ^= m.V[y]
	case 0x4:
		sum := uint16(m.V[x]) + uint16(m.V[y])
		m.V[x] = byte(sum)
		m.V[0xF] = boolByte(sum > 0xFF)
	case 0x5:
		noBorrow := m.V[x] >= m.V[y]
		m.V[x] -= m.V[y]
		m.V[0xF] = boolByte(noBorrow)
	case 0x6:
		src := m.shiftSource(x, y)
		m.V[x] = src >> 1
		m.V[0xF] = src & 0x01
	case 0x7:
		noBorrow := m.V[y] >= m.V[x]
		m.V[x] = m.V[y] - m.V[x]
		m.V[0xF] = boolByte(noBorrow)
	case 0xE:
		src := m.shiftSource(x, y)
		m.V[x] = src << 1
		m.V[0xF] = src >> 7
	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (m *Machine) shiftSource(x, y uint16) byte {
	if m.quirks.Shift == ShiftFromVX {
		return m.V[x]
	}
	return m.V[y]
}

// executeMisc handles the FXNN group.
func (m *Machine) executeMisc(x uint16, nn byte) error {
	switch nn {
	case 0x07:
		m.V[x] = m.Timers.Delay()

	case 0x0A:
		key, ok := m.Keys.captureKey()
		if !ok {
			// retry this instruction next cycle
			m.PC -= 2
			return nil
		}
		m.V[x] = key

	case 0x15:
		m.Timers.SetDelay(m.V[x])

	case 0x18:
		m.Timers.SetSound(m.V[x])

	case 0x1E:
		m.I += uint16(m.V[x])

	case 0x29:
		m.I = GlyphAddress(m.V[x])

	case 0x33:
		v := m.V[x]
		m.write(m.I, v/100)
		m.write(m.I+1, v/10%10)
		m.write(m.I+2, v%10)

	case 0x55:
		for i := uint16(0); i <= x; i++ {
			m.write(m.I+i, m.V[i])
		}
		m.I += x + 1

	case 0x65:
		for i := uint16(0); i <= x; i++ {
			m.V[i] = m.read(m.I + i)
		}
		m.I += x + 1

	default:
		return ErrUnknownOpcode
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
