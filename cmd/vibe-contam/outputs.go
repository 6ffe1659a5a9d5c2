package main

import (
	"fmt"
	"io"
	"os"
)

// stagedOutputs holds output files written next to their destination
// and moves them into place together.
type stagedOutputs struct {
	files []stagedFile
}

type stagedFile struct {
	tmpPath  string
	destPath string
}

// stage writes an output to destPath + ".tmp".
func (s *stagedOutputs) stage(destPath string, write func(io.Writer) error) error {
	for _, f := range s.files {
		if f.destPath == destPath {
			return &usageError{fmt.Errorf("output file %s given more than once", destPath)}
		}
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", destPath, err)
	}

	s.files = append(s.files, stagedFile{tmpPath: tmpPath, destPath: destPath})
	return nil
}

// commit renames every staged file to its destination. When a rename fails
// the files already moved are removed again along with the rest.
func (s *stagedOutputs) commit() error {
	for i, f := range s.files {
		if err := os.Rename(f.tmpPath, f.destPath); err != nil {
			for _, done := range s.files[:i] {
				os.Remove(done.destPath)
			}
			s.files = s.files[i:]
			s.discard()
			return fmt.Errorf("rename output file: %w", err)
		}
	}
	s.files = nil
	return nil
}

// discard removes staged files that were never committed.
func (s *stagedOutputs) discard() {
	for _, f := range s.files {
		os.Remove(f.tmpPath)
	}
	s.files = nil
}
