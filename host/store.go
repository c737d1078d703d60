// Copyright 2019 by Thorsten von Eicken, see LICENSE file

package host

import (
	"fmt"
	"os"
)

// Persistent is byte-addressed non-volatile storage, the host analog of the
// EEPROM the packet counter lives in on a microcontroller. Unwritten bytes
// read as 0xFF, matching erased EEPROM.
type Persistent interface {
	Load(offset, n int) ([]byte, error)
	Store(offset int, data []byte) error
}

// FileStore implements Persistent on a plain file.
type FileStore struct {
	Path string
}

// NewFileStore returns a Persistent backed by the file at path. The file is
// created on the first Store.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns n bytes at offset. Bytes beyond the end of the file (or a
// missing file) read as 0xFF.
func (f *FileStore) Load(offset, n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = 0xFF
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return buf, nil
		}
		return nil, fmt.Errorf("host: cannot read %s: %v", f.Path, err)
	}
	if offset < len(data) {
		copy(buf, data[offset:])
	}
	return buf, nil
}

// Store writes data at offset, extending the file with 0xFF as needed.
func (f *FileStore) Store(offset int, data []byte) error {
	old, err := os.ReadFile(f.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("host: cannot read %s: %v", f.Path, err)
	}
	n := offset + len(data)
	if len(old) > n {
		n = len(old)
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = 0xFF
	}
	copy(buf, old)
	copy(buf[offset:], data)
	if err := os.WriteFile(f.Path, buf, 0644); err != nil {
		return fmt.Errorf("host: cannot write %s: %v", f.Path, err)
	}
	return nil
}
