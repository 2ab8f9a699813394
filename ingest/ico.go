package ingest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
)

// icoMagic is the ICONDIR header of an icon file: reserved 0, type 1.
const icoMagic = "\x00\x00\x01\x00"

const (
	icoDirSize   = 6
	icoEntrySize = 16
	dibInfoSize  = 40
	bmpFileSize  = 14
	pngSignature = "\x89PNG\r\n\x1a\n"
)

func init() {
	image.RegisterFormat("ico", icoMagic, DecodeICO, DecodeICOConfig)
}

type icoEntry struct {
	width, height int
	bitCount      int
	size, offset  uint32
}

// DecodeICO decodes the largest image in an ICO container. Entries may be
// PNG streams or headerless DIBs with 1, 4, 8, 24 or 32 bits per pixel; DIB
// entries honour the AND transparency mask.
func DecodeICO(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	e, err := bestEntry(data)
	if err != nil {
		return nil, err
	}
	payload := data[e.offset : e.offset+e.size]
	if bytes.HasPrefix(payload, []byte(pngSignature)) {
		img, err := png.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: png entry: %v", ErrMalformedICO, err)
		}
		return img, nil
	}
	return decodeDIB(payload)
}

// DecodeICOConfig returns the size of the image DecodeICO would pick.
func DecodeICOConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	e, err := bestEntry(data)
	if err != nil {
		return image.Config{}, err
	}
	payload := data[e.offset : e.offset+e.size]
	if bytes.HasPrefix(payload, []byte(pngSignature)) {
		return png.DecodeConfig(bytes.NewReader(payload))
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: e.width, Height: e.height}, nil
}

func bestEntry(data []byte) (icoEntry, error) {
	if len(data) < icoDirSize || string(data[:4]) != icoMagic {
		return icoEntry{}, fmt.Errorf("%w: bad header", ErrMalformedICO)
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 {
		return icoEntry{}, fmt.Errorf("%w: no images", ErrMalformedICO)
	}
	if len(data) < icoDirSize+count*icoEntrySize {
		return icoEntry{}, fmt.Errorf("%w: truncated directory", ErrMalformedICO)
	}

	var best icoEntry
	found := false
	for i := range count {
		b := data[icoDirSize+i*icoEntrySize:]
		e := icoEntry{
			width:    dimension(b[0]),
			height:   dimension(b[1]),
			bitCount: int(binary.LittleEndian.Uint16(b[6:8])),
			size:     binary.LittleEndian.Uint32(b[8:12]),
			offset:   binary.LittleEndian.Uint32(b[12:16]),
		}
		if uint64(e.offset)+uint64(e.size) > uint64(len(data)) || e.size == 0 {
			continue
		}
		if !found || better(e, best) {
			best, found = e, true
		}
	}
	if !found {
		return icoEntry{}, fmt.Errorf("%w: entries out of range", ErrMalformedICO)
	}
	return best, nil
}

// dimension decodes a directory width or height; 0 means 256.
func dimension(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

func better(a, b icoEntry) bool {
	if pa, pb := a.width*a.height, b.width*b.height; pa != pb {
		return pa > pb
	}
	return a.bitCount > b.bitCount
}

// decodeDIB decodes a BITMAPINFOHEADER followed by the colour table, the XOR
// bitmap and the 1 bit AND mask, all stored bottom-up.
func decodeDIB(p []byte) (image.Image, error) {
	if len(p) < dibInfoSize {
		return nil, fmt.Errorf("%w: truncated bitmap header", ErrMalformedICO)
	}
	hdrSize := int(binary.LittleEndian.Uint32(p[0:4]))
	w := int(int32(binary.LittleEndian.Uint32(p[4:8])))
	h := int(int32(binary.LittleEndian.Uint32(p[8:12]))) / 2 // XOR + AND
	bpp := int(binary.LittleEndian.Uint16(p[14:16]))
	compression := binary.LittleEndian.Uint32(p[16:20])
	colorsUsed := int(binary.LittleEndian.Uint32(p[32:36]))
	if hdrSize < dibInfoSize || hdrSize > len(p) || w <= 0 || h <= 0 || w > 1<<12 || h > 1<<12 {
		return nil, fmt.Errorf("%w: bad bitmap header", ErrMalformedICO)
	}
	if compression != 0 {
		return nil, fmt.Errorf("%w: compressed bitmap", ErrMalformedICO)
	}

	paletteLen := 0
	if bpp <= 8 {
		paletteLen = 1 << bpp
		if colorsUsed > 0 && colorsUsed < paletteLen {
			paletteLen = colorsUsed
		}
	}
	xorOff := hdrSize + paletteLen*4
	xorStride := ((w*bpp + 31) / 32) * 4
	andOff := xorOff + xorStride*h
	andStride := ((w + 31) / 32) * 4
	if andOff > len(p) {
		return nil, fmt.Errorf("%w: truncated bitmap", ErrMalformedICO)
	}
	var mask []byte
	if andOff+andStride*h <= len(p) {
		mask = p[andOff : andOff+andStride*h]
	}

	var img *image.NRGBA
	var err error
	switch bpp {
	case 1, 4, 8:
		img = decodePaletted(p[hdrSize:xorOff], p[xorOff:andOff], w, h, bpp, xorStride)
	case 24:
		img, err = decodeRGB(p[:dibInfoSize], p[xorOff:andOff], w, h)
	case 32:
		img = decodeBGRA(p[xorOff:andOff], w, h, xorStride)
		switch {
		case hasAlpha(img):
			mask = nil // the alpha channel wins over the mask
		case mask == nil:
			setOpaque(img)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported depth %d", ErrMalformedICO, bpp)
	}
	if err != nil {
		return nil, err
	}
	if mask != nil {
		applyMask(img, mask, andStride)
	}
	return img, nil
}

func decodePaletted(pal, pix []byte, w, h, bpp, stride int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	perByte := 8 / bpp
	valueMask := 1<<bpp - 1
	for y := range h {
		row := pix[(h-1-y)*stride:]
		for x := range w {
			shift := uint(8 - bpp*(x%perByte+1))
			idx := int(row[x/perByte]>>shift) & valueMask
			if idx*4+2 >= len(pal) {
				continue
			}
			o := img.PixOffset(x, y)
			img.Pix[o+0] = pal[idx*4+2]
			img.Pix[o+1] = pal[idx*4+1]
			img.Pix[o+2] = pal[idx*4+0]
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

// decodeRGB wraps a 24 bit DIB in a BMP file header and hands it to the
// bmp decoder.
func decodeRGB(info, pix []byte, w, h int) (*image.NRGBA, error) {
	var buf bytes.Buffer
	buf.Grow(bmpFileSize + dibInfoSize + len(pix))
	buf.WriteString("BM")
	le := binary.LittleEndian
	buf.Write(le.AppendUint32(nil, uint32(bmpFileSize+dibInfoSize+len(pix))))
	buf.Write(make([]byte, 4))
	buf.Write(le.AppendUint32(nil, bmpFileSize+dibInfoSize))

	hdr := bytes.Clone(info)
	le.PutUint32(hdr[0:4], dibInfoSize)
	le.PutUint32(hdr[8:12], uint32(h))
	le.PutUint16(hdr[12:14], 1)
	le.PutUint32(hdr[20:24], uint32(len(pix)))
	buf.Write(hdr)
	buf.Write(pix)

	src, err := bmp.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedICO, err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			r, g, b, _ := src.At(x, y).RGBA()
			img.SetNRGBA(x, y, color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xff})
		}
	}
	return img, nil
}

func decodeBGRA(pix []byte, w, h, stride int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		row := pix[(h-1-y)*stride:]
		for x := range w {
			o := img.PixOffset(x, y)
			img.Pix[o+0] = row[x*4+2]
			img.Pix[o+1] = row[x*4+1]
			img.Pix[o+2] = row[x*4+0]
			img.Pix[o+3] = row[x*4+3]
		}
	}
	return img
}

func hasAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return true
		}
	}
	return false
}

func setOpaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}

// applyMask makes pixels transparent where the AND mask bit is set and
// opaque elsewhere.
func applyMask(img *image.NRGBA, mask []byte, stride int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := range h {
		row := mask[(h-1-y)*stride:]
		for x := range w {
			o := img.PixOffset(x, y)
			if row[x/8]&(0x80>>uint(x%8)) != 0 {
				img.Pix[o+3] = 0
			} else {
				img.Pix[o+3] = 0xff
			}
		}
	}
}
