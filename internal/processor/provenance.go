package processor

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// PNG tEXt keywords written into every output file.
const (
	TextSoftware = "Software"
	TextProfile  = "oniazusa.profile"
	TextParams   = "oniazusa.params"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// TextEntry is one PNG tEXt keyword/value pair.
type TextEntry struct {
	Key   string
	Value string
}

// annotatePNG copies a PNG stream from r to w, inserting the given tEXt
// chunks just before IEND. Existing text chunks with the same keywords
// are dropped so repeated annotation does not accumulate duplicates.
func annotatePNG(r io.Reader, w io.Writer, entries []TextEntry) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return err
	}
	if !bytes.Equal(sig, pngSignature) {
		return fmt.Errorf("invalid PNG signature")
	}
	if _, err := bw.Write(sig); err != nil {
		return err
	}

	replaced := make(map[string]bool, len(entries))
	for _, e := range entries {
		replaced[e.Key] = true
	}

	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		typeBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, typeBuf); err != nil {
			return err
		}
		chunkName := string(typeBuf)

		if chunkName == "IEND" {
			for _, e := range entries {
				if _, err := bw.Write(buildPNGChunk("tEXt", []byte(e.Key+"\x00"+e.Value))); err != nil {
					return err
				}
			}
		}

		data := make([]byte, int(length)+4)
		if _, err := io.ReadFull(br, data); err != nil {
			return err
		}
		if chunkName == "tEXt" && replaced[extractPNGTextKey(data[:length])] {
			continue
		}

		if _, err := bw.Write(lenBuf); err != nil {
			return err
		}
		if _, err := bw.Write(typeBuf); err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}

		if chunkName == "IEND" {
			break
		}
	}

	return bw.Flush()
}

// readPNGText returns the tEXt keyword/value pairs of a PNG stream.
func readPNGText(r io.Reader) (map[string]string, error) {
	br := bufio.NewReader(r)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, errors.New("invalid PNG signature")
	}

	text := make(map[string]string)
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				return text, nil
			}
			return text, err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		chunkType := make([]byte, 4)
		if _, err := io.ReadFull(br, chunkType); err != nil {
			return text, err
		}
		chunkName := string(chunkType)

		switch chunkName {
		case "tEXt":
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return text, err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return text, err
			}
			if key := extractPNGTextKey(data); key != "" {
				text[key] = string(data[len(key)+1:])
			}
		default:
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return text, err
			}
		}

		if chunkName == "IEND" {
			return text, nil
		}
	}
}

// readPNGTextFile is readPNGText on a file path.
func readPNGTextFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPNGText(f)
}

func extractPNGTextKey(data []byte) string {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return ""
	}
	return string(data[:idx])
}

func buildPNGChunk(chunkType string, data []byte) []byte {
	chunkTypeBytes := []byte(chunkType)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	crc := crc32.ChecksumIEEE(append(chunkTypeBytes, data...))
	crcBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(crcBuf, crc)

	chunk := make([]byte, 0, 12+len(data))
	chunk = append(chunk, lenBuf...)
	chunk = append(chunk, chunkTypeBytes...)
	chunk = append(chunk, data...)
	chunk = append(chunk, crcBuf...)
	return chunk
}
