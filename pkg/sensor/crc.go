package sensor

import "errors"

// ErrCRC is returned when a sensor word fails its checksum.
var ErrCRC = errors.New("sensor: crc mismatch")

// crc8 computes the Sensirion CRC-8 (polynomial 0x31, init 0xFF) protecting
// every 16-bit word the SHT31 and SGP30 transmit.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// word validates the CRC trailing a big-endian 16-bit word and returns the
// word's value.
func word(buf []byte) (uint16, error) {
	if crc8(buf[:2]) != buf[2] {
		return 0, ErrCRC
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}
