package sink

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
	"time"
)

const (
	fileRecordVersion    uint16 = 1
	fileRecordHeaderSize        = 20
	fileChecksumSize            = 4

	defaultFilePrefix     = "stream"
	defaultMaxSegmentSize = 128 << 20
	defaultBufferSize     = 64 << 10
)

var (
	fileMagic    = [4]byte{'M', 'S', 'G', '1'}
	fileCRCTable = crc32.MakeTable(crc32.Castagnoli)
)

var (
	ErrFileClosed           = errors.New("file sink closed")
	ErrTopicTooLarge        = errors.New("file sink topic too large")
	ErrPayloadTooLarge      = errors.New("file sink payload too large")
	ErrInvalidMagic         = errors.New("file sink invalid magic")
	ErrUnsupportedVersion   = errors.New("file sink unsupported record version")
	ErrChecksumMismatch     = errors.New("file sink checksum mismatch")
	ErrTruncatedRecord      = errors.New("file sink truncated record")
	ErrInvalidRecordPayload = errors.New("file sink invalid record lengths")
)

// FileConfig controls the append-only file sink.
type FileConfig struct {
	Dir            string
	FilePrefix     string
	MaxSegmentSize int64
	BufferSize     int
}

func (cfg FileConfig) withDefaults() FileConfig {
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = defaultFilePrefix
	}
	if cfg.MaxSegmentSize <= 0 {
		cfg.MaxSegmentSize = defaultMaxSegmentSize
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	return cfg
}

// File appends length-prefixed, checksummed records to rotating segment
// files. Writes are synchronous: the bus dispatches from a single thread.
type File struct {
	cfg    FileConfig
	file   *os.File
	buf    *bufio.Writer
	segID  uint64
	size   int64
	closed bool
}

// NewFile creates the sink and ensures the target directory exists.
func NewFile(cfg FileConfig) (*File, error) {
	cfg = cfg.withDefaults()
	if cfg.Dir == "" {
		return nil, fmt.Errorf("file sink dir is empty")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	return &File{cfg: cfg}, nil
}

// Publish appends one record, rotating the segment when it is full.
func (s *File) Publish(topic string, payload []byte) error {
	if s.closed {
		return ErrFileClosed
	}
	if len(topic) > math.MaxUint16 {
		return ErrTopicTooLarge
	}
	if uint64(len(payload)) > uint64(math.MaxUint32) {
		return ErrPayloadTooLarge
	}

	recordSize := int64(fileRecordHeaderSize + len(topic) + len(payload) + fileChecksumSize)
	if s.file != nil && s.size+recordSize > s.cfg.MaxSegmentSize {
		if err := s.closeSegment(); err != nil {
			return err
		}
	}
	if s.file == nil {
		if err := s.openSegment(); err != nil {
			return err
		}
	}

	var header [fileRecordHeaderSize]byte
	copy(header[0:4], fileMagic[:])
	binary.LittleEndian.PutUint16(header[4:6], fileRecordVersion)
	binary.LittleEndian.PutUint16(header[6:8], uint16(len(topic)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint64(header[12:20], uint64(time.Now().UTC().UnixNano()))

	crc := crc32.Update(0, fileCRCTable, header[:])
	crc = crc32.Update(crc, fileCRCTable, []byte(topic))
	crc = crc32.Update(crc, fileCRCTable, payload)

	if _, err := s.buf.Write(header[:]); err != nil {
		return err
	}
	if _, err := s.buf.WriteString(topic); err != nil {
		return err
	}
	if _, err := s.buf.Write(payload); err != nil {
		return err
	}
	var checksum [fileChecksumSize]byte
	binary.LittleEndian.PutUint32(checksum[:], crc)
	if _, err := s.buf.Write(checksum[:]); err != nil {
		return err
	}

	s.size += recordSize
	return nil
}

// Close flushes and closes the current segment.
func (s *File) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeSegment()
}

func (s *File) openSegment() error {
	s.segID++
	name := fmt.Sprintf("%s-%06d.log", s.cfg.FilePrefix, s.segID)
	file, err := os.OpenFile(filepath.Join(s.cfg.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	s.file = file
	s.buf = bufio.NewWriterSize(file, s.cfg.BufferSize)
	s.size = 0
	return nil
}

func (s *File) closeSegment() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	s.file = nil
	s.buf = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// FileRecord is one decoded record from a segment file.
type FileRecord struct {
	Topic   string
	Payload []byte
	TsInit  int64
}

// ReadSegment decodes all records from one segment file.
func ReadSegment(path string) ([]FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []FileRecord
	for len(data) > 0 {
		if len(data) < fileRecordHeaderSize {
			return records, ErrTruncatedRecord
		}
		header := data[:fileRecordHeaderSize]
		if !bytes.Equal(header[0:4], fileMagic[:]) {
			return records, ErrInvalidMagic
		}
		if ver := binary.LittleEndian.Uint16(header[4:6]); ver != fileRecordVersion {
			return records, ErrUnsupportedVersion
		}
		topicLen := int(binary.LittleEndian.Uint16(header[6:8]))
		payloadLen := int(binary.LittleEndian.Uint32(header[8:12]))
		tsInit := int64(binary.LittleEndian.Uint64(header[12:20]))

		total := fileRecordHeaderSize + topicLen + payloadLen + fileChecksumSize
		if total < fileRecordHeaderSize {
			return records, ErrInvalidRecordPayload
		}
		if len(data) < total {
			return records, ErrTruncatedRecord
		}

		topic := data[fileRecordHeaderSize : fileRecordHeaderSize+topicLen]
		payload := data[fileRecordHeaderSize+topicLen : total-fileChecksumSize]
		stored := binary.LittleEndian.Uint32(data[total-fileChecksumSize : total])

		crc := crc32.Update(0, fileCRCTable, header)
		crc = crc32.Update(crc, fileCRCTable, topic)
		crc = crc32.Update(crc, fileCRCTable, payload)
		if crc != stored {
			return records, ErrChecksumMismatch
		}

		records = append(records, FileRecord{
			Topic:   string(topic),
			Payload: append([]byte(nil), payload...),
			TsInit:  tsInit,
		})
		data = data[total:]
	}
	return records, nil
}
