package source

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// ListMembers returns, in archive order, the members of the zip at
// archivePath whose names end with one of suffixes. Directory entries and
// names containing junk (when non-empty) are skipped. Suffixes match
// case-insensitively.
func ListMembers(archivePath string, suffixes []string, junk string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrArchive, archivePath, err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		name := f.Name
		if strings.HasSuffix(name, "/") {
			continue
		}
		if junk != "" && strings.Contains(name, junk) {
			continue
		}
		if HasSuffix(name, suffixes) {
			names = append(names, name)
		}
	}
	return names, nil
}

// ReadMember decompresses the member named exactly member. A member larger
// than maxBytes (when positive) is rejected before decompression.
func ReadMember(archivePath, member string, maxBytes int64) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrArchive, archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != member {
			continue
		}
		if maxBytes > 0 && f.UncompressedSize64 > uint64(maxBytes) {
			return nil, fmt.Errorf("%w: member %s is %d bytes, limit %d", ErrArchive, member, f.UncompressedSize64, maxBytes)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open member %s: %v", ErrArchive, member, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read member %s: %v", ErrArchive, member, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: member %s not found in %s", ErrArchive, member, archivePath)
}

// Members lists an archive and wraps each matching member as a Source.
func Members(archivePath string, suffixes []string, junk string, maxBytes int64) ([]Source, error) {
	names, err := ListMembers(archivePath, suffixes, junk)
	if err != nil {
		return nil, err
	}
	out := make([]Source, 0, len(names))
	for _, name := range names {
		out = append(out, ArchiveMember{Archive: archivePath, Member: name, MaxBytes: maxBytes})
	}
	return out, nil
}

// HasSuffix reports whether name ends with one of suffixes, ignoring case.
// Empty suffixes never match.
func HasSuffix(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
