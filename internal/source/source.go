// Package source provides uniform byte access to plain files and archive members.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrIO marks a plain file that could not be opened or read.
	ErrIO = errors.New("io error")
	// ErrArchive marks a corrupt archive or a member that cannot be found or read.
	ErrArchive = errors.New("archive error")
)

// Source is a byte-producing unit of work. Implementations are immutable.
type Source interface {
	// Bytes reads the whole unit into memory.
	Bytes() ([]byte, error)
	// Label is the human-readable identifier used in reports.
	Label() string
	// Filename is the name used to select a decoder.
	Filename() string
}

// PlainFile is a document on disk.
type PlainFile struct {
	Path     string
	MaxBytes int64 // 0 means unlimited
}

func (f PlainFile) Bytes() ([]byte, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrIO, f.Path)
	}
	if f.MaxBytes > 0 && info.Size() > f.MaxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrIO, f.Path, info.Size(), f.MaxBytes)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return data, nil
}

func (f PlainFile) Label() string    { return f.Path }
func (f PlainFile) Filename() string { return filepath.Base(f.Path) }

// ArchiveMember is a named entry inside a zip archive.
type ArchiveMember struct {
	Archive  string
	Member   string
	MaxBytes int64 // 0 means unlimited
}

func (m ArchiveMember) Bytes() ([]byte, error) {
	return ReadMember(m.Archive, m.Member, m.MaxBytes)
}

func (m ArchiveMember) Label() string {
	return fmt.Sprintf("member %s in %s", m.Member, m.Archive)
}

func (m ArchiveMember) Filename() string { return m.Member }
